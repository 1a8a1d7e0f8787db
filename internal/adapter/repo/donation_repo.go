package repo

import (
	"context"
	"fmt"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// DonationRepositoryPG implements domain.DonationRepository over the primary
// alumni_donations table.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Create inserts a new donation record.
func (r *DonationRepositoryPG) Create(ctx context.Context, donation *domain.Donation) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		donation.DonorID,
		donation.ProjectID,
		donation.Amount,
		donation.Currency,
		string(donation.Status),
		donation.IsAnonymous,
		donation.PaymentProvider,
		donation.PaymentReference,
		donation.ReceiptNumber,
	)
	return row.Scan(&donation.ID, &donation.CreatedAt)
}

// CreatePending reserves headroom and inserts the backing pending row in one
// atomic statement. A refusal is disambiguated by re-reading the project:
// inactive vs. over-target.
func (r *DonationRepositoryPG) CreatePending(ctx context.Context, donation *domain.Donation) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertPendingDonation,
		donation.DonorID,
		donation.ProjectID,
		donation.Amount,
		donation.Currency,
		donation.IsAnonymous,
		donation.PaymentReference,
		donation.ReceiptNumber,
	)
	err := row.Scan(&donation.ID, &donation.CreatedAt)
	if err == nil {
		donation.Status = domain.DonationPending
		return nil
	}
	if !infra.IsNoRows(err) {
		return err
	}

	projectRow := r.sql.QueryRow(ctx, sqlinline.QSelectProjectActive, donation.ProjectID)
	var status string
	var target *int64
	var current int64
	if err := projectRow.Scan(&status, &target, &current); err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return err
	}
	if domain.ProjectStatus(status) != domain.ProjectActive {
		return domain.ErrProjectNotActive
	}
	if target != nil && current+donation.Amount > *target {
		return fmt.Errorf("%w: max %d", domain.ErrExceedsRemainingTarget, *target-current)
	}
	// Lost a race between the guard and the re-read; let the caller retry.
	return domain.ErrExceedsRemainingTarget
}

// MarkStatus flips a donation's lifecycle state; provider rides along when
// non-empty.
func (r *DonationRepositoryPG) MarkStatus(ctx context.Context, id string, status domain.DonationStatus, provider string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkDonationStatus, id, string(status), provider)
	return err
}

// SumPendingAmount totals the project's in-flight pending rows.
func (r *DonationRepositoryPG) SumPendingAmount(ctx context.Context, projectID string) (int64, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSumPendingDonations, projectID)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// GetByPaymentReference looks up a donation by its gateway correlator.
func (r *DonationRepositoryPG) GetByPaymentReference(ctx context.Context, reference string) (*domain.Donation, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectDonationByReference, reference)
	donation, err := scanDonation(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return donation, nil
}

// ListByDonor returns a donor's donations, newest first.
func (r *DonationRepositoryPG) ListByDonor(ctx context.Context, donorID string, limit int) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByDonor, donorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *donation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListCompletedDonorIDs returns distinct donor ids with a completed donation
// on the project.
func (r *DonationRepositoryPG) ListCompletedDonorIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCompletedDonorIDs, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var d domain.Donation
	var status string
	if err := row.Scan(
		&d.ID, &d.DonorID, &d.ProjectID, &d.Amount, &d.Currency, &status,
		&d.IsAnonymous, &d.PaymentProvider, &d.PaymentReference, &d.ReceiptNumber, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.Status = domain.DonationStatus(status)
	return &d, nil
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
