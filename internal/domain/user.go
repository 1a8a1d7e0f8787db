package domain

import "time"

// AlumniUser is the donor-side principal. Identity itself (accounts,
// sessions) lives with the external identity provider; this profile only
// carries what the funding and relevance engines need.
type AlumniUser struct {
	ID         string
	UserID     string
	FullName   string
	Email      string
	SchoolID   *string
	SchoolName string
	// Niches is the declared interest tag set consumed by the relevance
	// scorer. It is never persisted in any derived form.
	Niches    []string
	CreatedAt time.Time
}

// School is the project-creating principal.
type School struct {
	ID        string
	UserID    string
	Name      string
	Location  string
	LogoURL   string
	CreatedAt time.Time
}

// FollowRelationship marks that an alumni follows a school. Pure existence
// row: created on follow, deleted on unfollow.
type FollowRelationship struct {
	AlumniUserID string
	SchoolID     string
	CreatedAt    time.Time
}

// Bookmark marks that an alumni saved a project. Participates in no
// aggregation.
type Bookmark struct {
	AlumniUserID string
	ProjectID    string
	CreatedAt    time.Time
}
