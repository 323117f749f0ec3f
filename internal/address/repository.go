package address

import (
	"context"
	"errors"
	"sync"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/records"
	"kkmall-be/internal/user"

	"go.uber.org/zap"
)

const collectionName = "addresses"

// Repository manages the signed-in user's address book. Every method
// fails with ErrAuthRequired when no user is signed in.
type Repository interface {
	List(ctx context.Context) ([]Address, error)
	Add(ctx context.Context, params Params) (*Address, error)
	Update(ctx context.Context, id string, params Params) (*Address, error)
	Remove(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) error
}

type repository struct {
	client  *records.Client
	session *user.Session
}

func NewRepository(client *records.Client, session *user.Session) Repository {
	return &repository{client: client, session: session}
}

func (r *repository) collection() *records.Collection {
	return r.client.Collection(collectionName)
}

func (r *repository) userID() (string, error) {
	u := r.session.Current()
	if u == nil {
		return "", ErrAuthRequired
	}
	return u.ID, nil
}

// List returns the user's addresses, default first, then newest first.
func (r *repository) List(ctx context.Context) ([]Address, error) {
	userID, err := r.userID()
	if err != nil {
		return nil, err
	}

	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.Eq("user", userID),
		Sort:   "-is_default,-created",
	})
	if err != nil {
		return nil, err
	}

	addresses := make([]Address, 0, len(recs))
	for _, rec := range recs {
		addresses = append(addresses, mapAddress(rec))
	}
	return addresses, nil
}

// Add creates an address. When the new address is marked default, the
// previous default flags are cleared first so at most one default
// survives.
func (r *repository) Add(ctx context.Context, params Params) (*Address, error) {
	userID, err := r.userID()
	if err != nil {
		return nil, err
	}

	if params.IsDefault {
		if err := r.clearDefaults(ctx, userID, ""); err != nil {
			return nil, err
		}
	}

	body := params.body()
	body["user"] = userID

	rec, err := r.collection().Create(ctx, body)
	if err != nil {
		return nil, err
	}

	addr := mapAddress(rec)
	return &addr, nil
}

func (r *repository) Update(ctx context.Context, id string, params Params) (*Address, error) {
	userID, err := r.userID()
	if err != nil {
		return nil, err
	}

	if params.IsDefault {
		if err := r.clearDefaults(ctx, userID, id); err != nil {
			return nil, err
		}
	}

	rec, err := r.collection().Update(ctx, id, params.body())
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	addr := mapAddress(rec)
	return &addr, nil
}

// Remove deletes an address. Deleting an address that is already gone
// is not an error.
func (r *repository) Remove(ctx context.Context, id string) error {
	if _, err := r.userID(); err != nil {
		return err
	}

	err := r.collection().Delete(ctx, id)
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return err
	}
	return nil
}

func (r *repository) SetDefault(ctx context.Context, id string) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	if err := r.clearDefaults(ctx, userID, id); err != nil {
		return err
	}

	_, err = r.collection().Update(ctx, id, map[string]any{"is_default": true})
	if errors.Is(err, records.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// clearDefaults unsets is_default on every address of the user except
// keepID, with independent parallel updates. A failure leaves the
// completed updates in place and returns the first error.
func (r *repository) clearDefaults(ctx context.Context, userID, keepID string) error {
	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.And(
			records.Eq("user", userID),
			records.EqBool("is_default", true),
		),
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
		if rec.ID() == keepID {
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			if _, err := r.collection().Update(ctx, id, map[string]any{"is_default": false}); err != nil {
				logger.FromCtx(ctx).Warn("clear default address failed",
					zap.String("layer", "repository"),
					zap.String("addressID", id),
					zap.Error(err),
				)

				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(rec.ID())
	}

	wg.Wait()
	return firstErr
}
