package domain

import "time"

// ReconciliationEntry records a donation whose gateway charge succeeded but
// whose local write failed. A background worker retries these until the
// donation row exists; entries are never silently dropped.
type ReconciliationEntry struct {
	ID               string
	DonorID          string
	ProjectID        string
	Amount           int64
	Currency         string
	IsAnonymous      bool
	PaymentProvider  string
	PaymentReference string
	ReceiptNumber    string
	Attempts         int
	LastError        string
	ResolvedAt       *time.Time
	CreatedAt        time.Time
}
