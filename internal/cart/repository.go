package cart

import (
	"context"
	"errors"
	"sync"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/records"

	"go.uber.org/zap"
)

const collectionName = "cart_items"

type Repository interface {
	ListLines(ctx context.Context, userID string) ([]*Line, error)
	AddLine(ctx context.Context, params AddLineParams) (*Line, error)
	SetQuantity(ctx context.Context, lineID string, quantity int) (*Line, error)
	SetSelected(ctx context.Context, lineID string, selected bool) (*Line, error)
	Remove(ctx context.Context, lineID string) error
	ClearAll(ctx context.Context, userID string) error
}

type AddLineParams struct {
	UserID    string
	ProductID string
	Quantity  int
	SKUID     string
	Specs     map[string]string
}

type repository struct {
	client *records.Client
}

func NewRepository(client *records.Client) Repository {
	return &repository{client: client}
}

func (r *repository) collection() *records.Collection {
	return r.client.Collection(collectionName)
}

// ListLines fetches every line for the user with product and SKU
// detail resolved inline. A user with no lines yields an empty slice.
func (r *repository) ListLines(ctx context.Context, userID string) ([]*Line, error) {
	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.Eq("user", userID),
		Expand: "product,sku",
		Sort:   "-created",
	})
	if err != nil {
		return nil, err
	}

	lines := make([]*Line, 0, len(recs))
	for _, rec := range recs {
		// Lines whose product no longer resolves are unusable.
		if rec.Expand("product") == nil {
			continue
		}
		lines = append(lines, mapLine(rec))
	}
	return lines, nil
}

// AddLine merges into an existing line for the same (user, product,
// SKU) key, creating one otherwise. The lookup-then-write pair is not
// atomic against concurrent callers for the same key; the last write
// wins.
func (r *repository) AddLine(ctx context.Context, params AddLineParams) (*Line, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddLine"),
		zap.String("user_id", params.UserID),
		zap.String("product_id", params.ProductID),
	)

	// An absent SKU is its own key: sku = "".
	filter := records.And(
		records.Eq("user", params.UserID),
		records.Eq("product", params.ProductID),
		records.Eq("sku", params.SKUID),
	)

	existing, err := r.collection().GetFullList(ctx, records.Query{Filter: filter})
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		item := existing[0]
		rec, err := r.collection().Update(ctx, item.ID(), map[string]any{
			"quantity": item.GetInt("quantity") + params.Quantity,
		})
		if err != nil {
			log.Error("failed to merge cart line", zap.Error(err))
			return nil, err
		}
		return mapLine(rec), nil
	}

	specs := params.Specs
	if specs == nil {
		specs = map[string]string{}
	}

	rec, err := r.collection().Create(ctx, map[string]any{
		"user":     params.UserID,
		"product":  params.ProductID,
		"sku":      params.SKUID,
		"specs":    specs,
		"quantity": params.Quantity,
		"selected": true,
	})
	if err != nil {
		log.Error("failed to create cart line", zap.Error(err))
		return nil, err
	}

	log.Info("cart line created", zap.String("line_id", rec.ID()))
	return mapLine(rec), nil
}

// SetQuantity writes an absolute quantity. Callers route quantity <= 0
// to Remove instead.
func (r *repository) SetQuantity(ctx context.Context, lineID string, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	rec, err := r.collection().Update(ctx, lineID, map[string]any{
		"quantity": quantity,
	})
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}
	return mapLine(rec), nil
}

func (r *repository) SetSelected(ctx context.Context, lineID string, selected bool) (*Line, error) {
	rec, err := r.collection().Update(ctx, lineID, map[string]any{
		"selected": selected,
	})
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}
	return mapLine(rec), nil
}

// Remove is idempotent: deleting an already-absent line succeeds.
func (r *repository) Remove(ctx context.Context, lineID string) error {
	err := r.collection().Delete(ctx, lineID)
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return err
	}
	return nil
}

// ClearAll removes every line for the user with independent per-line
// deletes. There is no batch endpoint: a failure leaves the completed
// deletes in place and the first error is returned.
func (r *repository) ClearAll(ctx context.Context, userID string) error {
	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.Eq("user", userID),
	})
	if err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, rec := range recs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := r.Remove(ctx, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(rec.ID())
	}
	wg.Wait()

	if firstErr != nil {
		logger.FromCtx(ctx).Error("cart clear incomplete",
			zap.String("user_id", userID),
			zap.Error(firstErr),
		)
	}
	return firstErr
}
