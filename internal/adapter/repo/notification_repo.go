package repo

import (
	"context"
	"encoding/json"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// NotificationRepositoryPG implements domain.NotificationRepository.
type NotificationRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewNotificationRepository(sql infra.SQLExecutor) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{sql: sql}
}

// BulkCreate inserts notifications one by one, best-effort: a failed insert
// does not abort the remainder. Returns how many were written; the first
// error encountered is returned alongside the partial count.
func (r *NotificationRepositoryPG) BulkCreate(ctx context.Context, notifications []domain.Notification) (int, error) {
	created := 0
	var firstErr error
	for _, n := range notifications {
		meta, err := json.Marshal(n.Metadata)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		_, err = r.sql.Exec(ctx, sqlinline.QInsertNotification,
			n.RecipientID, n.ProjectID, string(n.Type), n.Title, n.Message, meta)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		created++
	}
	return created, firstErr
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *NotificationRepositoryPG) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListNotificationsByRecipient, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		var meta []byte
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ProjectID, &kind, &n.Title, &n.Message, &n.IsRead, &meta, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(kind)
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &n.Metadata)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead toggles read state; scoped to the recipient so one alumni cannot
// mark another's notification.
func (r *NotificationRepositoryPG) MarkRead(ctx context.Context, id, recipientID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkNotificationRead, id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.NotificationRepository = (*NotificationRepositoryPG)(nil)
