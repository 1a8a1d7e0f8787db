package domain

import "time"

// ProjectStatus enumerates the lifecycle states of a fundraising project.
type ProjectStatus string

const (
	ProjectDraft  ProjectStatus = "draft"
	ProjectActive ProjectStatus = "active"
	ProjectFunded ProjectStatus = "funded"
	ProjectClosed ProjectStatus = "closed"
)

// Project is a fundraising campaign owned by a school.
//
// CurrentAmount and BackersCount are a denormalized cache owned by the
// funding ledger. Every other component treats them as read-only derived
// state; the ledger refresh is the only writer.
type Project struct {
	ID            string
	SchoolID      string
	Title         string
	Description   string
	Overview      string
	Motivation    string
	Objectives    string
	Scope         string
	Category      []string
	TargetAmount  *int64
	CurrentAmount int64
	BackersCount  int
	Status        ProjectStatus
	DaysRemaining *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RemainingHeadroom returns how much can still be donated before the target
// is reached, or nil when the project has no funding target.
func (p *Project) RemainingHeadroom() *int64 {
	if p.TargetAmount == nil {
		return nil
	}
	remaining := *p.TargetAmount - p.CurrentAmount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// FundingTotals is the ledger's aggregate view of a project.
type FundingTotals struct {
	TotalRaised   int64
	BackerCount   int
	DonationCount int

	// Degraded marks the totals as partial: at least one donation source
	// could not be read and its contribution is missing. Degraded totals
	// must never be persisted into the project cache.
	Degraded        bool
	DegradedSources []string
}

// ProjectUpdate is a school-authored announcement attached to a project.
// Notification fan-out links created notifications back to it.
type ProjectUpdate struct {
	ID        string
	ProjectID string
	SchoolID  string
	Title     string
	Message   string
	CreatedAt time.Time
}
