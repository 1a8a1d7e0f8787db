package funding

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

// Reconciler drains the charged-but-unrecorded queue: each entry is a
// donation the gateway settled whose row never left pending (or is missing
// entirely after a manual intervention). It completes the stuck row, or
// re-inserts it under the original payment reference, so a concurrent manual
// fix is absorbed by the reference lookup.
type Reconciler struct {
	reconciliation domain.ReconciliationRepository
	donations      domain.DonationRepository
	ledger         Refresher
	logger         zerolog.Logger

	batchSize int
}

func NewReconciler(
	reconciliation domain.ReconciliationRepository,
	donations domain.DonationRepository,
	ledger Refresher,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		reconciliation: reconciliation,
		donations:      donations,
		ledger:         ledger,
		logger:         logger,
		batchSize:      20,
	}
}

// RunOnce processes one batch of pending entries. Returns how many were
// resolved; individual failures bump the entry's attempt counter and leave
// it queued.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	entries, err := r.reconciliation.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, entry := range entries {
		if err := r.resolveEntry(ctx, entry); err != nil {
			if markErr := r.reconciliation.MarkAttempt(ctx, entry.ID, err.Error()); markErr != nil {
				r.logger.Error().Err(markErr).
					Str("entry_id", entry.ID).
					Msg("reconciler: failed to record attempt")
			}
			continue
		}
		resolved++
	}
	if resolved > 0 {
		r.logger.Info().
			Int("resolved", resolved).
			Int("pending", len(entries)-resolved).
			Msg("reconciler: batch complete")
	}
	return resolved, nil
}

func (r *Reconciler) resolveEntry(ctx context.Context, entry domain.ReconciliationEntry) error {
	// A retry may race an earlier partial success or a manual fix; the
	// reference lookup makes resolution idempotent.
	existing, err := r.donations.GetByPaymentReference(ctx, entry.PaymentReference)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	switch {
	case existing == nil:
		donation := domain.Donation{
			DonorID:          entry.DonorID,
			ProjectID:        entry.ProjectID,
			Amount:           entry.Amount,
			Currency:         entry.Currency,
			Status:           domain.DonationCompletedDemo,
			IsAnonymous:      entry.IsAnonymous,
			PaymentProvider:  entry.PaymentProvider,
			PaymentReference: entry.PaymentReference,
			ReceiptNumber:    entry.ReceiptNumber,
		}
		if err := r.donations.Create(ctx, &donation); err != nil {
			return err
		}
	case existing.Status.CountsAsCompleted():
		// Already recovered, by a retry or by hand.
	default:
		// The charge settled, so a pending (or mismarked failed) row is
		// completed in place.
		if err := r.donations.MarkStatus(ctx, existing.ID, domain.DonationCompletedDemo, entry.PaymentProvider); err != nil {
			return err
		}
	}

	if err := r.reconciliation.MarkResolved(ctx, entry.ID); err != nil {
		return err
	}
	if err := r.ledger.Refresh(ctx, entry.ProjectID); err != nil {
		// The row exists; totals converge on the next refresh.
		r.logger.Warn().Err(err).
			Str("project_id", entry.ProjectID).
			Msg("reconciler: refresh after resolution failed")
	}
	r.logger.Info().
		Str("reference", entry.PaymentReference).
		Str("project_id", entry.ProjectID).
		Int64("amount", entry.Amount).
		Msg("reconciler: recovered charged-but-unrecorded donation")
	return nil
}
