// notify.go

// Package notify delivers the current product listing to live observers after
// catalog mutations. Delivery is best effort.
package notify

import (
	"context"
	"errors"

	"shop-backend/internal/models"
)

type Notifier interface {
	Publish(ctx context.Context, products []models.Product) error
}

// Nop discards every listing.
type Nop struct{}

func (Nop) Publish(context.Context, []models.Product) error { return nil }

// Multi fans a listing out to several notifiers, attempting all of them.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, products []models.Product) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, products); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
