package repo

import (
	"context"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// AlumniRepositoryPG implements domain.AlumniRepository backed by PostgreSQL.
type AlumniRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAlumniRepository creates a new AlumniRepositoryPG.
func NewAlumniRepository(sql infra.SQLExecutor) *AlumniRepositoryPG {
	return &AlumniRepositoryPG{sql: sql}
}

// GetByID fetches an alumni profile by its own id.
func (r *AlumniRepositoryPG) GetByID(ctx context.Context, id string) (*domain.AlumniUser, error) {
	return scanAlumni(r.sql.QueryRow(ctx, sqlinline.QSelectAlumniByID, id))
}

// GetByUserID fetches an alumni profile by the identity-provider principal id.
func (r *AlumniRepositoryPG) GetByUserID(ctx context.Context, userID string) (*domain.AlumniUser, error) {
	return scanAlumni(r.sql.QueryRow(ctx, sqlinline.QSelectAlumniByUserID, userID))
}

func scanAlumni(row rowScanner) (*domain.AlumniUser, error) {
	var a domain.AlumniUser
	if err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Email, &a.SchoolID, &a.SchoolName, &a.Niches, &a.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// SchoolRepositoryPG implements domain.SchoolRepository.
type SchoolRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSchoolRepository(sql infra.SQLExecutor) *SchoolRepositoryPG {
	return &SchoolRepositoryPG{sql: sql}
}

func (r *SchoolRepositoryPG) GetByID(ctx context.Context, id string) (*domain.School, error) {
	return scanSchool(r.sql.QueryRow(ctx, sqlinline.QSelectSchoolByID, id))
}

func (r *SchoolRepositoryPG) GetByUserID(ctx context.Context, userID string) (*domain.School, error) {
	return scanSchool(r.sql.QueryRow(ctx, sqlinline.QSelectSchoolByUserID, userID))
}

func scanSchool(row rowScanner) (*domain.School, error) {
	var s domain.School
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Location, &s.LogoURL, &s.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

var (
	_ domain.AlumniRepository = (*AlumniRepositoryPG)(nil)
	_ domain.SchoolRepository = (*SchoolRepositoryPG)(nil)
)
