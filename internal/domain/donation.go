package domain

import "time"

// DonationStatus enumerates the lifecycle states of a donation attempt.
type DonationStatus string

const (
	DonationPending       DonationStatus = "pending"
	DonationCompleted     DonationStatus = "completed"
	DonationCompletedDemo DonationStatus = "completed_demo"
	DonationFailed        DonationStatus = "failed"
)

// CountsAsCompleted reports whether a donation in this status contributes to
// a project's funding aggregates.
func (s DonationStatus) CountsAsCompleted() bool {
	return s == DonationCompleted || s == DonationCompletedDemo
}

// Donation is an alumni contribution record. Rows are immutable after
// creation apart from status corrections by reconciliation.
type Donation struct {
	ID               string
	DonorID          string
	ProjectID        string
	Amount           int64
	Currency         string
	Status           DonationStatus
	IsAnonymous      bool
	PaymentProvider  string
	PaymentReference string
	ReceiptNumber    string
	CreatedAt        time.Time
}

// CompletedDonation is the normalized row shape shared by both physical
// donation sources. The primary alumni table and the legacy history table
// have different schemas; the source adapters map both onto this one type so
// aggregation call sites never special-case a table.
type CompletedDonation struct {
	ProjectID string
	// DonorID is empty for legacy history rows that carry no donor link.
	DonorID string
	Amount  int64
}
