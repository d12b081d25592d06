// purchase.go

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/logging"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

// PurchaseResult is returned by Purchase. Ticket is nil when nothing could be bought.
type PurchaseResult struct {
	Ticket         *models.Ticket       `json:"ticket"`
	UnprocessedIDs []primitive.ObjectID `json:"unprocessedIds"`
	Cart           models.CartView      `json:"cart"`
}

// Purchase buys every line of the cart that has enough stock, line by line.
// Lines without stock stay in the cart and are reported as unprocessed; lines
// whose product no longer exists are dropped. A ticket is issued only for a
// positive total.
func (e *Engine) Purchase(ctx context.Context, cartID primitive.ObjectID, purchaser string) (res PurchaseResult, err error) {
	ctx, span := e.tracer.Start(ctx, "cart.Purchase")
	span.SetAttributes(attribute.String("cart.id", cartID.Hex()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	logger := logging.FromContext(ctx).With(zap.String("cart_id", cartID.Hex()))

	c, err := e.carts.Get(ctx, cartID)
	if err != nil {
		return PurchaseResult{}, err
	}
	ids := make([]primitive.ObjectID, len(c.Products))
	for i, item := range c.Products {
		ids[i] = item.Product
	}
	live, err := e.products.GetMany(ctx, ids)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("resolve cart products: %w", err)
	}

	total := decimal.Zero
	remaining := []models.CartItem{}
	unprocessed := []primitive.ObjectID{}
	bought := []models.CartItem{}
	skipped := 0

	for _, item := range c.Products {
		if _, ok := live[item.Product]; !ok {
			skipped++
			e.rec.PurchaseLine(metrics.OutcomeSkipped)
			continue
		}

		// The store checks and decrements in one conditional update.
		p, derr := e.products.DecrementStock(ctx, item.Product, item.Quantity)
		switch {
		case derr == nil:
			line := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(line)
			bought = append(bought, item)
			e.rec.PurchaseLine(metrics.OutcomePurchased)
		case apperr.IsNotFound(derr):
			skipped++
			e.rec.PurchaseLine(metrics.OutcomeSkipped)
		default:
			if !errors.Is(derr, store.ErrInsufficientStock) {
				logger.Error("purchase_line_failed",
					zap.String("product_id", item.Product.Hex()),
					zap.Error(derr),
				)
			}
			remaining = append(remaining, item)
			unprocessed = append(unprocessed, item.Product)
			e.rec.PurchaseLine(metrics.OutcomeUnprocessed)
		}
	}
	if skipped > 0 {
		e.rec.UnresolvedItems("purchase", skipped)
		logger.Warn("purchase_skipped_unresolved_items", zap.Int("skipped", skipped))
	}

	// Cart first: a ticket is only written once the cart holds the unprocessed lines.
	updated, err := e.carts.ReplaceItems(ctx, cartID, remaining)
	if err != nil {
		e.restoreStock(ctx, logger, bought)
		return PurchaseResult{}, fmt.Errorf("rewrite cart: %w", err)
	}

	if total.IsPositive() {
		amount := total.InexactFloat64()
		t, terr := e.tickets.Create(ctx, models.Ticket{
			Code:             e.newCode(),
			PurchaseDatetime: e.now(),
			Amount:           amount,
			Purchaser:        purchaser,
		})
		if terr != nil {
			e.restoreStock(ctx, logger, bought)
			e.restoreCart(ctx, logger, cartID, c.Products)
			return PurchaseResult{}, fmt.Errorf("create ticket: %w", terr)
		}
		e.rec.TicketCreated(amount)
		res.Ticket = &t
		span.SetAttributes(attribute.String("ticket.code", t.Code))
	}

	res.Cart, err = e.view(ctx, updated)
	if err != nil {
		return PurchaseResult{}, err
	}
	res.UnprocessedIDs = unprocessed

	span.SetAttributes(
		attribute.Int("purchase.unprocessed", len(unprocessed)),
		attribute.Int("purchase.skipped", skipped),
	)
	logger.Info("purchase_completed",
		zap.String("amount", total.String()),
		zap.Int("unprocessed", len(unprocessed)),
		zap.Bool("ticket", res.Ticket != nil),
	)
	return res, nil
}

// restoreStock gives back the units taken for lines whose purchase is being
// abandoned. It runs detached from ctx so a cancelled request still restores.
func (e *Engine) restoreStock(ctx context.Context, logger *zap.Logger, lines []models.CartItem) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range lines {
		if err := e.products.IncrementStock(ctx, item.Product, item.Quantity); err != nil {
			logger.Error("purchase_restore_stock_failed",
				zap.String("product_id", item.Product.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (e *Engine) restoreCart(ctx context.Context, logger *zap.Logger, cartID primitive.ObjectID, items []models.CartItem) {
	if _, err := e.carts.ReplaceItems(context.WithoutCancel(ctx), cartID, items); err != nil {
		logger.Error("purchase_restore_cart_failed", zap.Error(err))
	}
}

// Tickets lists tickets newest first. An empty purchaser lists every ticket.
func (e *Engine) Tickets(ctx context.Context, purchaser string) ([]models.Ticket, error) {
	tickets, err := e.tickets.List(ctx, purchaser)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}
