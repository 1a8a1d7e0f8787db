package funding

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

// Refresher triggers the ledger's cache recomputation after a donation's
// status enters or leaves the completed set.
type Refresher interface {
	Refresh(ctx context.Context, projectID string) error
}

// ReceiptSender delivers a donation receipt out of band. Best-effort; a
// failed send never fails the donation.
type ReceiptSender interface {
	SendDonationReceipt(ctx context.Context, donation domain.Donation, project domain.Project) error
}

// SubmitRequest is one donation attempt.
type SubmitRequest struct {
	DonorID     string
	ProjectID   string
	Amount      int64
	IsAnonymous bool
	// Reference lets a client retry a timed-out submission idempotently.
	// Left empty, the processor generates a fresh one.
	Reference string
}

// Result is a receipt-bearing confirmation.
type Result struct {
	Donation domain.Donation
	// AlreadyProcessed marks a retried reference that matched an existing
	// completed donation; no new charge occurred.
	AlreadyProcessed bool
}

// Processor validates and records donation attempts. It owns the full
// submit path: headroom enforcement, the gateway charge, the donation row,
// and triggering the ledger refresh.
type Processor struct {
	projects       domain.ProjectRepository
	donations      domain.DonationRepository
	reconciliation domain.ReconciliationRepository
	gateway        Gateway
	ledger         Refresher
	receipts       ReceiptSender
	logger         zerolog.Logger
}

// NewProcessor wires a donation processor. receipts may be nil.
func NewProcessor(
	projects domain.ProjectRepository,
	donations domain.DonationRepository,
	reconciliation domain.ReconciliationRepository,
	gateway Gateway,
	ledger Refresher,
	receipts ReceiptSender,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		projects:       projects,
		donations:      donations,
		reconciliation: reconciliation,
		gateway:        gateway,
		ledger:         ledger,
		receipts:       receipts,
		logger:         logger,
	}
}

// SubmitDonation processes one donation attempt end to end: atomically
// reserve headroom with a backing pending row, charge, then flip the row to
// its final status. The pending row exists before any money moves, so every
// live reservation is backed by an authoritative row and re-sums of donation
// rows never reopen reserved headroom.
//
// Validation errors (bad amount, inactive project, headroom exceeded) are
// returned as-is and imply no charge was attempted. A gateway error means no
// charge occurred. A write failure after a successful charge is queued for
// reconciliation and surfaced as ErrReconciliationRequired, the one failure
// the caller must not retry blindly.
func (p *Processor) SubmitDonation(ctx context.Context, req SubmitRequest) (*Result, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	if req.DonorID == "" || req.ProjectID == "" {
		return nil, fmt.Errorf("%w: donor and project are required", domain.ErrInvalidAmount)
	}

	// Retried reference: never double-count. A completed prior returns its
	// confirmation, a pending prior resumes from the charge (the gateway is
	// idempotent by reference), a failed prior stays declined.
	if req.Reference != "" {
		prior, err := p.donations.GetByPaymentReference(ctx, req.Reference)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("lookup payment reference: %w", err)
		}
		if err == nil {
			switch {
			case prior.Status.CountsAsCompleted():
				return &Result{Donation: *prior, AlreadyProcessed: true}, nil
			case prior.Status == domain.DonationPending:
				return p.settle(ctx, *prior)
			default:
				return nil, fmt.Errorf("%w: reference %s was declined", domain.ErrPaymentDeclined, req.Reference)
			}
		}
	}

	project, err := p.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status != domain.ProjectActive {
		return nil, fmt.Errorf("%w: project is %s", domain.ErrProjectNotActive, project.Status)
	}
	// Headroom is re-checked against a fresh read at confirmation time, not
	// the figure the donor saw when typing the amount.
	if remaining := project.RemainingHeadroom(); remaining != nil && req.Amount > *remaining {
		return nil, fmt.Errorf("%w: max %d", domain.ErrExceedsRemainingTarget, *remaining)
	}

	reference := req.Reference
	if reference == "" {
		reference = NewPaymentReference()
	}
	donation := domain.Donation{
		DonorID:          req.DonorID,
		ProjectID:        req.ProjectID,
		Amount:           req.Amount,
		Currency:         "GHS",
		Status:           domain.DonationPending,
		IsAnonymous:      req.IsAnonymous,
		PaymentReference: reference,
		ReceiptNumber:    NewReceiptNumber(),
	}
	// The atomic reserve-and-insert is what actually closes the race; the
	// read above only exists to produce a precise error message. On failure
	// nothing was reserved and no charge was attempted.
	if err := p.donations.CreatePending(ctx, &donation); err != nil {
		return nil, err
	}

	return p.settle(ctx, donation)
}

// settle charges the pending donation and flips it to its final status. The
// gateway is idempotent by reference, so settling the same pending row twice
// cannot double-charge.
func (p *Processor) settle(ctx context.Context, donation domain.Donation) (*Result, error) {
	charge, err := p.gateway.Charge(ctx, ChargeRequest{
		Reference: donation.PaymentReference,
		Amount:    donation.Amount,
		Currency:  donation.Currency,
		DonorID:   donation.DonorID,
		ProjectID: donation.ProjectID,
	})
	if err != nil {
		p.abandonPending(ctx, donation)
		return nil, fmt.Errorf("%w: no charge occurred: %v", domain.ErrPaymentDeclined, err)
	}

	status := domain.DonationCompleted
	if charge.Demo {
		status = domain.DonationCompletedDemo
	}
	if err := p.donations.MarkStatus(ctx, donation.ID, status, charge.Provider); err != nil {
		// Money moved externally but the row still reads pending. Queue for
		// the reconciliation worker; this path is never silently dropped.
		donation.Status = status
		donation.PaymentProvider = charge.Provider
		p.escalateUnrecorded(ctx, donation, err)
		return nil, fmt.Errorf("%w: reference %s", domain.ErrReconciliationRequired, charge.Reference)
	}
	donation.Status = status
	donation.PaymentProvider = charge.Provider

	if err := p.ledger.Refresh(ctx, donation.ProjectID); err != nil {
		// The reservation already moved the cache, so reads stay
		// consistent; a follow-up refresh will converge the backer count.
		p.logger.Warn().Err(err).
			Str("project_id", donation.ProjectID).
			Msg("funding: ledger refresh after donation failed")
	}

	if p.receipts != nil {
		if project, err := p.projects.GetByID(ctx, donation.ProjectID); err == nil {
			if err := p.receipts.SendDonationReceipt(ctx, donation, *project); err != nil {
				p.logger.Warn().Err(err).
					Str("donation_id", donation.ID).
					Msg("funding: receipt email failed")
			}
		}
	}

	p.logger.Info().
		Str("donation_id", donation.ID).
		Str("project_id", donation.ProjectID).
		Int64("amount", donation.Amount).
		Str("reference", charge.Reference).
		Msg("funding: donation completed")

	return &Result{Donation: donation}, nil
}

// abandonPending rolls a declined attempt back. The reservation is released
// first with a compensating decrement, then the row flips to failed. In that
// order an interleaved re-sum can only overcount while the row still reads
// pending, which holds headroom instead of reopening it.
func (p *Processor) abandonPending(ctx context.Context, donation domain.Donation) {
	p.releaseHeadroom(ctx, donation.ProjectID, donation.Amount)
	if err := p.donations.MarkStatus(ctx, donation.ID, domain.DonationFailed, ""); err != nil {
		// The row stays pending: the next re-sum re-adds its amount and
		// keeps holding headroom until the row is marked failed by hand.
		p.logger.Error().Err(err).
			Str("donation_id", donation.ID).
			Str("reference", donation.PaymentReference).
			Msg("funding: could not mark declined donation failed")
	}
}

func (p *Processor) releaseHeadroom(ctx context.Context, projectID string, amount int64) {
	if err := p.projects.ReleaseHeadroom(ctx, projectID, amount); err != nil {
		p.logger.Error().Err(err).
			Str("project_id", projectID).
			Int64("amount", amount).
			Msg("funding: headroom release failed")
	}
}

func (p *Processor) escalateUnrecorded(ctx context.Context, donation domain.Donation, cause error) {
	entry := domain.ReconciliationEntry{
		DonorID:          donation.DonorID,
		ProjectID:        donation.ProjectID,
		Amount:           donation.Amount,
		Currency:         donation.Currency,
		IsAnonymous:      donation.IsAnonymous,
		PaymentProvider:  donation.PaymentProvider,
		PaymentReference: donation.PaymentReference,
		ReceiptNumber:    donation.ReceiptNumber,
		LastError:        cause.Error(),
	}
	if err := p.reconciliation.Enqueue(ctx, &entry); err != nil {
		// Last line of defense: the log line carries everything manual
		// reconciliation needs.
		p.logger.Error().Err(err).
			Str("reference", donation.PaymentReference).
			Str("project_id", donation.ProjectID).
			Str("donor_id", donation.DonorID).
			Int64("amount", donation.Amount).
			Msg("funding: CHARGED BUT UNRECORDED donation could not be queued for reconciliation")
		return
	}
	p.logger.Error().Err(cause).
		Str("reference", donation.PaymentReference).
		Msg("funding: donation write failed after charge, queued for reconciliation")
}
