package notification

import (
	"context"
	"errors"
	"sync"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/records"

	"go.uber.org/zap"
)

const (
	collectionName = "notifications"

	defaultPerPage = 20
)

var ErrNotFound = errors.New("notification not found")

type Service interface {
	List(ctx context.Context, userID string, page, perPage int, filter ListFilter) (*ListResult, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	LatestUnread(ctx context.Context, userID string, limit int) ([]Notification, error)
	Get(ctx context.Context, id string) (*Notification, error)
	Create(ctx context.Context, params CreateParams) (*Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Remove(ctx context.Context, id string) error
}

type service struct {
	client *records.Client
}

func NewService(client *records.Client) Service {
	return &service{client: client}
}

func (s *service) collection() *records.Collection {
	return s.client.Collection(collectionName)
}

func (s *service) List(ctx context.Context, userID string, page, perPage int, filter ListFilter) (*ListResult, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	parts := []string{records.Eq("userId", userID)}
	if filter.IsRead != nil {
		parts = append(parts, records.EqBool("isRead", *filter.IsRead))
	}
	if filter.Type != "" {
		parts = append(parts, records.Eq("type", string(filter.Type)))
	}

	result, err := s.collection().GetList(ctx, page, perPage, records.Query{
		Filter: records.And(parts...),
		Sort:   "-created",
	})
	if err != nil {
		return nil, err
	}

	items := make([]Notification, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, mapNotification(rec))
	}

	return &ListResult{
		Items:      items,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
		Page:       result.Page,
	}, nil
}

// UnreadCount reads the server-side total without fetching rows.
func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	result, err := s.collection().GetList(ctx, 1, 1, records.Query{
		Filter: records.And(
			records.Eq("userId", userID),
			records.EqBool("isRead", false),
		),
	})
	if err != nil {
		return 0, err
	}
	return result.TotalItems, nil
}

// LatestUnread returns the newest unread notifications, for the
// header dropdown.
func (s *service) LatestUnread(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 5
	}

	result, err := s.collection().GetList(ctx, 1, limit, records.Query{
		Filter: records.And(
			records.Eq("userId", userID),
			records.EqBool("isRead", false),
		),
		Sort: "-created",
	})
	if err != nil {
		return nil, err
	}

	items := make([]Notification, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, mapNotification(rec))
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id string) (*Notification, error) {
	rec, err := s.collection().GetOne(ctx, id, records.Query{})
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	n := mapNotification(rec)
	return &n, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Notification, error) {
	rec, err := s.collection().Create(ctx, map[string]any{
		"userId":  params.UserID,
		"title":   params.Title,
		"content": params.Content,
		"type":    string(params.Type),
		"isRead":  false,
		"link":    params.Link,
	})
	if err != nil {
		return nil, err
	}

	n := mapNotification(rec)
	return &n, nil
}

func (s *service) MarkRead(ctx context.Context, id string) error {
	_, err := s.collection().Update(ctx, id, map[string]any{"isRead": true})
	if errors.Is(err, records.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// MarkAllRead flips every unread notification of the user with
// independent parallel updates. A failure leaves the completed
// updates in place and the first error is returned.
func (s *service) MarkAllRead(ctx context.Context, userID string) error {
	recs, err := s.collection().GetFullList(ctx, records.Query{
		Filter: records.And(
			records.Eq("userId", userID),
			records.EqBool("isRead", false),
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
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			if _, err := s.collection().Update(ctx, id, map[string]any{"isRead": true}); err != nil {
				logger.FromCtx(ctx).Warn("mark notification read failed",
					zap.String("layer", "service"),
					zap.String("notificationID", id),
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

// Remove deletes a notification. Removing one that is already gone is
// not an error.
func (s *service) Remove(ctx context.Context, id string) error {
	err := s.collection().Delete(ctx, id)
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return err
	}
	return nil
}
