package calendar

import (
	"context"
	"fmt"
)

// ACL roles understood by the external calendar service.
const (
	AccessWriter = "writer"
	AccessReader = "reader"
)

// CurrentPermission is one ACL entry as reported by the calendar service.
type CurrentPermission struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// PermissionItem is one ACL grant submitted to the calendar service.
type PermissionItem struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// PermissionPage is one page of a calendar's permission list.
type PermissionPage struct {
	Items         []CurrentPermission `json:"items"`
	NextPageToken string              `json:"next_page_token"`
}

// BatchCreateResult reports per-item outcomes of a batch grant.
type BatchCreateResult struct {
	Items []BatchCreateItem `json:"items"`
}

// BatchCreateItem is the outcome of a single grant within a batch. Error is
// empty when the grant was applied.
type BatchCreateItem struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Error  string `json:"error,omitempty"`
}

// APIError is a non-2xx response from the calendar service, decoded from its
// error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar api: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Client is the calendar service's ACL surface as consumed by the sync
// engine. Implementations own batching limits, pagination, retries and
// timeouts; the engine treats every call as a single suspension point.
type Client interface {
	// GetAllCalendarPermissions drains the permission list across pages.
	GetAllCalendarPermissions(ctx context.Context, calendarID string) ([]CurrentPermission, error)

	// GetCalendarPermissionList fetches a single page.
	GetCalendarPermissionList(ctx context.Context, calendarID, pageToken string, pageSize int) (PermissionPage, error)

	// BatchCreateCalendarPermissionsLimit grants the given items, chunking
	// internally to the service's maximum batch size.
	BatchCreateCalendarPermissionsLimit(ctx context.Context, calendarID string, items []PermissionItem) (BatchCreateResult, error)

	// DeleteCalendarPermission revokes a single user's access.
	DeleteCalendarPermission(ctx context.Context, calendarID, userID string) error
}
