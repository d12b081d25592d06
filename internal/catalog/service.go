// service.go

// Package catalog implements product CRUD and the paginated product listing.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/logging"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
	"shop-backend/internal/notify"
	"shop-backend/internal/store"
)

const notifyTimeout = 5 * time.Second

type Service struct {
	products store.ProductStore
	notifier notify.Notifier
	rec      *metrics.Recorder
	inflight sync.WaitGroup
}

func NewService(products store.ProductStore, notifier notify.Notifier, rec *metrics.Recorder) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{products: products, notifier: notifier, rec: rec}
}

// CreateInput is the body of a product creation. Pointer fields distinguish
// absent values from zero values.
type CreateInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Code        *string  `json:"code"`
	Price       *float64 `json:"price"`
	Status      *bool    `json:"status"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// Validate reports every missing required field at once, then the first invalid value.
func (in CreateInput) Validate() error {
	var missing []string
	blank := func(s *string) bool { return s == nil || *s == "" }
	if blank(in.Title) {
		missing = append(missing, "title")
	}
	if blank(in.Description) {
		missing = append(missing, "description")
	}
	if blank(in.Code) {
		missing = append(missing, "code")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	if blank(in.Category) {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return apperr.Missing(missing...)
	}
	if *in.Price < 0 {
		return apperr.Invalid("price", "must be a number >= 0")
	}
	if *in.Stock < 0 {
		return apperr.Invalid("stock", "must be a number >= 0")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (models.Product, error) {
	if err := in.Validate(); err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		Title:       *in.Title,
		Description: *in.Description,
		Code:        *in.Code,
		Price:       *in.Price,
		Status:      true,
		Stock:       *in.Stock,
		Category:    *in.Category,
		Thumbnails:  in.Thumbnails,
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.publishListing(ctx)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return s.products.Get(ctx, id)
}

// ListAll returns the unpaginated catalog; limit <= 0 means everything.
func (s *Service) ListAll(ctx context.Context, limit int) ([]models.Product, error) {
	return s.products.List(ctx, limit)
}

// Update applies the recognized fields of raw. The id is never mutable.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, raw map[string]any) (models.Product, error) {
	patch, err := ParsePatch(raw)
	if err != nil {
		return models.Product{}, err
	}
	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return models.Product{}, err
	}
	s.publishListing(ctx)
	return updated, nil
}

func (s *Service) Remove(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	s.publishListing(ctx)
	return deleted, nil
}

// Wait blocks until in-flight listing notifications have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// publishListing sends the full listing to the notifier in the background.
// Failures are logged and never reach the caller.
func (s *Service) publishListing(ctx context.Context) {
	logger := logging.FromContext(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		list, err := s.products.List(ctx, 0)
		if err != nil {
			s.rec.Notification("catalog", "error")
			logger.Warn("catalog_listing_failed", zap.Error(err))
			return
		}
		if err := s.notifier.Publish(ctx, list); err != nil {
			s.rec.Notification("catalog", "error")
			logger.Warn("catalog_notify_failed", zap.Error(err))
			return
		}
		s.rec.Notification("catalog", "ok")
	}()
}
