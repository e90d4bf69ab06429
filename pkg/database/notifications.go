package database

import (
	"context"

	"quote-engine/pkg/notify"
)

// CreateNotification inserts one notification intent. Plain insert, no
// transaction: intents are independent records and duplicates are tolerated.
func (c *Client) CreateNotification(ctx context.Context, n *notify.Notification) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO notification (id, recipient_id, kind, title, body, deep_link, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.RecipientID, n.Kind, n.Title, n.Body, n.DeepLink, n.Read, n.CreatedAt)
	return err
}
