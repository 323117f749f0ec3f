package favorite

import (
	"context"
	"errors"

	"kkmall-be/internal/records"
	"kkmall-be/internal/user"
)

const collectionName = "favorites"

// Repository manages the signed-in user's favorited products. Every
// method fails with ErrAuthRequired when no user is signed in.
type Repository interface {
	List(ctx context.Context) ([]Favorite, error)
	AddProduct(ctx context.Context, productID, brandID string) (*Favorite, error)
	RemoveProduct(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	IsFavorite(ctx context.Context, productID string) (string, bool, error)
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

// productFilter matches the user's record when it holds productID,
// whether product_id is an array or a legacy single value.
func productFilter(userID, productID string) string {
	return records.And(
		records.Eq("user", userID),
		records.Group(records.Or(
			records.Contains("product_id", productID),
			records.Eq("product_id", productID),
		)),
	)
}

// List returns the user's favorites records with their products
// expanded, newest first.
func (r *repository) List(ctx context.Context) ([]Favorite, error) {
	userID, err := r.userID()
	if err != nil {
		return nil, err
	}

	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.Eq("user", userID),
		Expand: "product_id,brands_id",
		Sort:   "-created",
	})
	if err != nil {
		return nil, err
	}

	favorites := make([]Favorite, 0, len(recs))
	for _, rec := range recs {
		favorites = append(favorites, mapFavorite(rec))
	}
	return favorites, nil
}

// AddProduct favorites a product. The user's existing record absorbs
// the id when one exists; adding a product that is already favorited
// is a no-op. brandID only applies when a new record is created.
func (r *repository) AddProduct(ctx context.Context, productID, brandID string) (*Favorite, error) {
	userID, err := r.userID()
	if err != nil {
		return nil, err
	}

	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.Eq("user", userID),
	})
	if err != nil {
		return nil, err
	}

	if len(recs) > 0 {
		rec := recs[0]
		current := productIDs(rec)
		for _, id := range current {
			if id == productID {
				fav := mapFavorite(rec)
				return &fav, nil
			}
		}

		updated, err := r.collection().Update(ctx, rec.ID(), map[string]any{
			"product_id": append(current, productID),
		})
		if err != nil {
			return nil, err
		}
		fav := mapFavorite(updated)
		return &fav, nil
	}

	body := map[string]any{
		"user":       userID,
		"product_id": []string{productID},
	}
	if brandID != "" {
		body["brands_id"] = brandID
	}

	created, err := r.collection().Create(ctx, body)
	if err != nil {
		return nil, err
	}
	fav := mapFavorite(created)
	return &fav, nil
}

// RemoveProduct unfavorites a product. The record is deleted outright
// once its last product is removed; removing a product that was never
// favorited is a no-op.
func (r *repository) RemoveProduct(ctx context.Context, productID string) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: productFilter(userID, productID),
	})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	rec := recs[0]
	remaining := make([]string, 0)
	for _, id := range productIDs(rec) {
		if id != productID {
			remaining = append(remaining, id)
		}
	}

	if len(remaining) == 0 {
		err := r.collection().Delete(ctx, rec.ID())
		if err != nil && !errors.Is(err, records.ErrNotFound) {
			return err
		}
		return nil
	}

	_, err = r.collection().Update(ctx, rec.ID(), map[string]any{
		"product_id": remaining,
	})
	return err
}

// Clear deletes every favorites record of the user, one at a time so
// a failure stops before touching the rest.
func (r *repository) Clear(ctx context.Context) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: records.Eq("user", userID),
	})
	if err != nil {
		return err
	}

	for _, rec := range recs {
		if err := r.collection().Delete(ctx, rec.ID()); err != nil {
			return err
		}
	}
	return nil
}

// IsFavorite reports whether the product is favorited and, when it is,
// the id of the record holding it.
func (r *repository) IsFavorite(ctx context.Context, productID string) (string, bool, error) {
	userID, err := r.userID()
	if err != nil {
		return "", false, err
	}

	recs, err := r.collection().GetFullList(ctx, records.Query{
		Filter: productFilter(userID, productID),
	})
	if err != nil {
		return "", false, err
	}
	if len(recs) == 0 {
		return "", false, nil
	}
	return recs[0].ID(), true, nil
}
