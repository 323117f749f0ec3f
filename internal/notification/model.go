package notification

import "kkmall-be/internal/records"

// Type classifies a notification.
type Type string

const (
	TypeOrder     Type = "order"
	TypePromotion Type = "promotion"
	TypeSystem    Type = "system"
	TypePayment   Type = "payment"
	TypeReview    Type = "review"
	TypeAccount   Type = "account"
)

// Notification is one message addressed to a user.
type Notification struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    Type   `json:"type"`
	IsRead  bool   `json:"isRead"`
	Link    string `json:"link,omitempty"`
	Created string `json:"created"`
}

// ListFilter narrows a notification listing. Nil IsRead means both
// read and unread.
type ListFilter struct {
	IsRead *bool
	Type   Type
}

// ListResult is one page of notifications.
type ListResult struct {
	Items      []Notification `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
}

// CreateParams carries the fields of a new notification.
type CreateParams struct {
	UserID  string
	Title   string
	Content string
	Type    Type
	Link    string
}

func mapNotification(rec records.Record) Notification {
	return Notification{
		ID:      rec.ID(),
		UserID:  rec.GetString("userId"),
		Title:   rec.GetString("title"),
		Content: rec.GetString("content"),
		Type:    Type(rec.GetString("type")),
		IsRead:  rec.GetBool("isRead"),
		Link:    rec.GetString("link"),
		Created: rec.GetString("created"),
	}
}
