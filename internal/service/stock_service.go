package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/ws"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MaxAdjustQuantity bounds a single adjustment. It is an input sanity check.
const MaxAdjustQuantity = 999_999

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// RawQuantity is the quantity as typed by the user. JSON numbers and strings are
// both accepted and kept verbatim for ParseQuantity.
type RawQuantity string

func (q *RawQuantity) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = RawQuantity(s)
		return nil
	}
	if string(b) == "null" {
		*q = ""
		return nil
	}
	*q = RawQuantity(b)
	return nil
}

type AdjustRequest struct {
	ProductID      string      `json:"product_id"`
	BranchID       string      `json:"branch_id"`
	Direction      Direction   `json:"direction"`
	Quantity       RawQuantity `json:"quantity"`
	Notes          string      `json:"notes"`
	IdempotencyKey string      `json:"idempotency_key"`
}

type AdjustResult struct {
	Direction        Direction              `json:"direction"`
	PreviousQuantity int                    `json:"previous_quantity"`
	Product          model.Product          `json:"product"`
	Transaction      model.StockTransaction `json:"transaction"`
	Replayed         bool                   `json:"replayed"`
}

// Actor is the authenticated user behind a mutation and their active branch.
type Actor struct {
	UserID   string
	Name     string
	Email    string
	BranchID model.ID
}

// Invalidator drops cached catalog pages of a branch.
type Invalidator interface {
	Invalidate(branchID model.ID)
}

// Publisher pushes change events to realtime subscribers.
type Publisher interface {
	Publish(ev ws.Event)
}

type StockService interface {
	Adjust(ctx context.Context, req AdjustRequest, actor Actor) (*AdjustResult, error)
}

type stockService struct {
	stock     repository.StockRepository
	cache     Invalidator
	publisher Publisher
	tracer    trace.Tracer
	log       *zap.Logger
	now       func() time.Time
}

func NewStockService(stock repository.StockRepository, cache Invalidator, publisher Publisher, tracer trace.Tracer, log *zap.Logger) StockService {
	return &stockService{
		stock:     stock,
		cache:     cache,
		publisher: publisher,
		tracer:    tracer,
		log:       log,
		now:       time.Now,
	}
}

// ParseQuantity accepts a positive base-10 integer no larger than MaxAdjustQuantity.
func ParseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-") {
			return 0, ErrQuantityTooLarge
		}
		return 0, ErrInvalidQuantity
	}
	if n <= 0 {
		return 0, ErrInvalidQuantity
	}
	if n > MaxAdjustQuantity {
		return 0, ErrQuantityTooLarge
	}
	return int(n), nil
}

// ApplyDirection computes the stock after moving qty units.
func ApplyDirection(current int, dir Direction, qty int) (int, error) {
	switch dir {
	case DirectionIn:
		return current + qty, nil
	case DirectionOut:
		if current-qty < 0 {
			return current, &InsufficientStockError{Available: current, Requested: qty}
		}
		return current - qty, nil
	default:
		return current, ErrInvalidDirection
	}
}

func (s *stockService) Adjust(ctx context.Context, req AdjustRequest, actor Actor) (*AdjustResult, error) {
	ctx, span := s.tracer.Start(ctx, "stock.adjust", trace.WithAttributes(
		attribute.String("direction", string(req.Direction)),
		attribute.String("product_id", req.ProductID),
	))
	defer span.End()

	// 1. Validasi input, tanpa akses database
	qty, err := ParseQuantity(string(req.Quantity))
	if err != nil {
		return nil, s.fail(span, err)
	}
	productID, err := model.ParseID(req.ProductID)
	if err != nil {
		return nil, s.fail(span, ErrInvalidReference)
	}
	branchRaw := req.BranchID
	if strings.TrimSpace(branchRaw) == "" {
		branchRaw = actor.BranchID.String()
	}
	branchID, err := model.ParseID(branchRaw)
	if err != nil {
		return nil, s.fail(span, ErrInvalidReference)
	}
	if req.Direction != DirectionIn && req.Direction != DirectionOut {
		return nil, s.fail(span, ErrInvalidDirection)
	}
	key := strings.TrimSpace(req.IdempotencyKey)

	// 2. Movement + balance dalam satu transaksi database
	var result AdjustResult
	err = s.stock.WithinTx(ctx, func(tx repository.StockTx) error {
		product, err := tx.LockProduct(ctx, branchID, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if key != "" {
			existing, err := tx.FindByIdempotencyKey(ctx, branchID, key)
			switch {
			case err == nil:
				// Key yang sama hanya sah untuk movement yang persis sama
				if existing.ProductID != product.ID ||
					existing.TransactionType != transactionTypeOf(req.Direction) ||
					existing.Quantity != qty {
					return ErrIdempotencyConflict
				}
				result = AdjustResult{
					Direction:        directionOf(existing.TransactionType),
					PreviousQuantity: existing.BalanceBefore(),
					Product:          *product,
					Transaction:      *existing,
					Replayed:         true,
				}
				return nil
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}

		variants, err := tx.CountVariants(ctx, branchID, product.ID)
		if err != nil {
			return err
		}
		if variants > 0 {
			return ErrNotStockable
		}

		newQty, err := ApplyDirection(product.QuantityInStock, req.Direction, qty)
		if err != nil {
			return err
		}

		now := s.now()
		record := &model.StockTransaction{
			ProductID:       product.ID,
			ProductName:     product.DisplayName(),
			TransactionType: transactionTypeOf(req.Direction),
			Quantity:        qty,
			BalanceAfter:    newQty,
			UnitPrice:       product.PurchasePrice,
			ReferenceNumber: referenceNumber(req.Direction, now),
			Notes:           req.Notes,
			BranchID:        branchID,
			CreatedBy:       actor.UserID,
			CreatedAt:       now,
		}
		if req.Direction == DirectionOut {
			record.UnitPrice = product.SalePrice
		}
		if key != "" {
			record.IdempotencyKey = &key
		}

		if err := tx.AppendTransaction(ctx, record); err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionWrite, err)
		}
		if err := tx.SetQuantity(ctx, product.ID, newQty, actor.UserID, now); err != nil {
			return fmt.Errorf("%w: %v", ErrQuantityWrite, err)
		}

		previous := product.QuantityInStock
		product.QuantityInStock = newQty
		product.UpdatedAt = now
		product.UpdatedBy = actor.UserID
		result = AdjustResult{
			Direction:        req.Direction,
			PreviousQuantity: previous,
			Product:          *product,
			Transaction:      *record,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	if result.Replayed {
		s.log.Info("stock adjustment replayed",
			zap.String("idempotency_key", key),
			zap.String("transaction_id", result.Transaction.ID.String()))
		return &result, nil
	}

	s.cache.Invalidate(branchID)
	s.publishAdjustment(&result, actor)

	s.log.Info("stock adjusted",
		zap.String("branch_id", branchID.String()),
		zap.String("product_id", result.Product.ID.String()),
		zap.String("direction", string(result.Direction)),
		zap.Int("quantity", qty),
		zap.Int("previous", result.PreviousQuantity),
		zap.Int("current", result.Product.QuantityInStock),
		zap.String("reference", result.Transaction.ReferenceNumber))

	return &result, nil
}

func (s *stockService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *stockService) publishAdjustment(res *AdjustResult, actor Actor) {
	verb := "added"
	if res.Direction == DirectionOut {
		verb = "removed"
	}
	s.publisher.Publish(ws.Event{
		Action:   "transaction_created",
		Table:    ws.TableTransactions,
		BranchID: res.Transaction.BranchID,
		Data: map[string]any{
			"transaction_id":   res.Transaction.ID,
			"transaction_type": res.Transaction.TransactionType,
			"quantity":         res.Transaction.Quantity,
			"product_id":       res.Product.ID,
			"product_name":     res.Transaction.ProductName,
			"new_stock":        res.Product.QuantityInStock,
		},
		User:    actorPayload(actor),
		Message: fmt.Sprintf("%s %s %d units of '%s'", actor.Name, verb, res.Transaction.Quantity, res.Transaction.ProductName),
	})
}

func actorPayload(actor Actor) map[string]any {
	return map[string]any{
		"id":    actor.UserID,
		"name":  actor.Name,
		"email": actor.Email,
	}
}

func referenceNumber(dir Direction, at time.Time) string {
	return fmt.Sprintf("STK-%s-%s-%s",
		strings.ToUpper(string(dir)),
		at.UTC().Format("20060102T150405.000"),
		uuid.NewString()[:6])
}

func transactionTypeOf(dir Direction) model.TransactionType {
	if dir == DirectionOut {
		return model.TxOutgoing
	}
	return model.TxIncoming
}

func directionOf(t model.TransactionType) Direction {
	if t == model.TxOutgoing {
		return DirectionOut
	}
	return DirectionIn
}
