package api

import (
	"context"
	"fmt"

	"github.com/blackenaxe/icom/internal/model"
)

// Notifications fetches the full notification feed for the
// authenticated user, newest first.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var entries []model.Notification
	if err := c.get(ctx, "/api/notifications", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkNotificationRead asks the backend to flip one entry to read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int) error {
	return c.putJSON(ctx, fmt.Sprintf("/api/notifications/%d/read", id), struct{}{}, nil)
}
