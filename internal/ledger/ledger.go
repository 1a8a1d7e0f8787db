package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

// Grouping selects how backers are counted. The alumni-facing card counts
// distinct donors; the school-side dashboard counts donation rows. The two
// call sites intentionally differ and must stay separate modes.
type Grouping int

const (
	GroupByDonor Grouping = iota
	GroupByRow
)

// PendingSummer reports the total of in-flight pending donation amounts for
// a project. Pending rows back live headroom reservations, so Refresh must
// carry them into the cache write or it would reopen reserved headroom.
type PendingSummer interface {
	SumPendingAmount(ctx context.Context, projectID string) (int64, error)
}

// Reader aggregates a project's funding figures across every registered
// donation source. Pure read; the cache write-back lives in Refresh.
type Reader struct {
	projects domain.ProjectRepository
	pending  PendingSummer
	sources  []domain.DonationSource
	logger   zerolog.Logger
}

// NewReader builds a ledger reader over the given sources.
func NewReader(projects domain.ProjectRepository, pending PendingSummer, sources []domain.DonationSource, logger zerolog.Logger) *Reader {
	return &Reader{projects: projects, pending: pending, sources: sources, logger: logger}
}

// ComputeFundingTotals sums completed donations for the project across all
// sources. When a source is unreachable its contribution is omitted and the
// result is marked Degraded with the source named; a partial total is never
// returned looking authoritative. All sources failing is an error.
func (r *Reader) ComputeFundingTotals(ctx context.Context, projectID string, grouping Grouping) (domain.FundingTotals, error) {
	if _, err := r.projects.GetByID(ctx, projectID); err != nil {
		return domain.FundingTotals{}, err
	}

	var totals domain.FundingTotals
	donors := make(map[string]struct{})
	unlinkedRows := 0
	reached := 0

	for _, source := range r.sources {
		rows, err := source.ListCompleted(ctx, projectID)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("project_id", projectID).
				Str("source", source.Name()).
				Msg("ledger: donation source unreachable, totals degraded")
			totals.Degraded = true
			totals.DegradedSources = append(totals.DegradedSources, source.Name())
			continue
		}
		reached++
		for _, row := range rows {
			totals.TotalRaised += row.Amount
			totals.DonationCount++
			if row.DonorID == "" {
				unlinkedRows++
			} else {
				donors[row.DonorID] = struct{}{}
			}
		}
	}

	if len(r.sources) > 0 && reached == 0 {
		return totals, fmt.Errorf("compute funding totals for %s: %w", projectID, domain.ErrSourceUnavailable)
	}

	switch grouping {
	case GroupByRow:
		totals.BackerCount = totals.DonationCount
	default:
		// Distinct donors where the row carries one; legacy rows without
		// a donor link cannot be deduplicated, so each counts once.
		totals.BackerCount = len(donors) + unlinkedRows
	}

	return totals, nil
}

// Refresh recomputes the project's totals and writes them onto the
// denormalized cache columns, deriving funded status in the same statement.
// The written amount is completed rows plus in-flight pending rows: pending
// rows back live reservations, and dropping them would reopen headroom that
// a mid-charge donor already holds. Safe to call concurrently for the same
// project: every call writes a full re-sum of authoritative rows, so
// last-writer-wins converges. Degraded totals are never persisted; a partial
// sum must not shrink the cache.
func (r *Reader) Refresh(ctx context.Context, projectID string) error {
	totals, err := r.ComputeFundingTotals(ctx, projectID, GroupByDonor)
	if err != nil {
		return err
	}
	if totals.Degraded {
		r.logger.Warn().
			Str("project_id", projectID).
			Strs("degraded_sources", totals.DegradedSources).
			Msg("ledger: refresh skipped, totals degraded")
		return fmt.Errorf("refresh %s: %w", projectID, domain.ErrSourceUnavailable)
	}
	pending, err := r.pending.SumPendingAmount(ctx, projectID)
	if err != nil {
		return fmt.Errorf("sum pending donations for %s: %w", projectID, err)
	}
	if err := r.projects.RefreshFundingCache(ctx, projectID, totals.TotalRaised+pending, totals.BackerCount); err != nil {
		return fmt.Errorf("refresh funding cache for %s: %w", projectID, err)
	}
	return nil
}
