package repo

import (
	"context"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// ReconciliationRepositoryPG implements domain.ReconciliationRepository.
type ReconciliationRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewReconciliationRepository(sql infra.SQLExecutor) *ReconciliationRepositoryPG {
	return &ReconciliationRepositoryPG{sql: sql}
}

// Enqueue records a charged-but-unrecorded donation. Keyed by payment
// reference so a retried enqueue stays a single entry.
func (r *ReconciliationRepositoryPG) Enqueue(ctx context.Context, entry *domain.ReconciliationEntry) error {
	_, err := r.sql.Exec(ctx, sqlinline.QEnqueueReconciliation,
		entry.DonorID, entry.ProjectID, entry.Amount, entry.Currency, entry.IsAnonymous,
		entry.PaymentProvider, entry.PaymentReference, entry.ReceiptNumber, entry.LastError)
	return err
}

// ListPending claims unresolved entries oldest first; skip-locked so
// concurrent workers never pick the same entry.
func (r *ReconciliationRepositoryPG) ListPending(ctx context.Context, limit int) ([]domain.ReconciliationEntry, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListPendingReconciliation, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ReconciliationEntry
	for rows.Next() {
		var e domain.ReconciliationEntry
		if err := rows.Scan(&e.ID, &e.DonorID, &e.ProjectID, &e.Amount, &e.Currency, &e.IsAnonymous,
			&e.PaymentProvider, &e.PaymentReference, &e.ReceiptNumber, &e.Attempts, &e.LastError, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReconciliationRepositoryPG) MarkResolved(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkReconciliationResolved, id)
	return err
}

func (r *ReconciliationRepositoryPG) MarkAttempt(ctx context.Context, id string, lastError string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkReconciliationAttempt, id, lastError)
	return err
}

var _ domain.ReconciliationRepository = (*ReconciliationRepositoryPG)(nil)
