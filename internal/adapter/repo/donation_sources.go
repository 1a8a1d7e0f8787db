package repo

import (
	"context"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// AlumniDonationSource adapts the primary alumni_donations table to the
// ledger's normalized row shape. Amounts are stored in pesewas already.
type AlumniDonationSource struct {
	sql infra.SQLExecutor
}

func NewAlumniDonationSource(sql infra.SQLExecutor) *AlumniDonationSource {
	return &AlumniDonationSource{sql: sql}
}

func (s *AlumniDonationSource) Name() string { return "alumni_donations" }

func (s *AlumniDonationSource) ListCompleted(ctx context.Context, projectID string) ([]domain.CompletedDonation, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListCompletedAlumniDonations, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CompletedDonation
	for rows.Next() {
		var d domain.CompletedDonation
		if err := rows.Scan(&d.ProjectID, &d.DonorID, &d.Amount); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// HistoryDonationSource adapts the legacy donation_history table. Its schema
// predates the platform: amounts are whole cedis, the donor link is a
// nullable free-text reference, and settled rows are marked by state. The
// adapter normalizes all of that here so no aggregation call site ever
// special-cases the table.
type HistoryDonationSource struct {
	sql infra.SQLExecutor
}

func NewHistoryDonationSource(sql infra.SQLExecutor) *HistoryDonationSource {
	return &HistoryDonationSource{sql: sql}
}

func (s *HistoryDonationSource) Name() string { return "donation_history" }

func (s *HistoryDonationSource) ListCompleted(ctx context.Context, projectID string) ([]domain.CompletedDonation, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListSettledHistoryDonations, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CompletedDonation
	for rows.Next() {
		var projectID string
		var donorRef *string
		var amountCedis int64
		if err := rows.Scan(&projectID, &donorRef, &amountCedis); err != nil {
			return nil, err
		}
		d := domain.CompletedDonation{
			ProjectID: projectID,
			Amount:    amountCedis * 100, // legacy rows store whole cedis
		}
		if donorRef != nil {
			d.DonorID = *donorRef
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var (
	_ domain.DonationSource = (*AlumniDonationSource)(nil)
	_ domain.DonationSource = (*HistoryDonationSource)(nil)
)
