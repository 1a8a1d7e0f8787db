package repo

import (
	"context"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository backed by PostgreSQL.
type ProjectRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProjectRepository creates a new ProjectRepositoryPG.
func NewProjectRepository(sql infra.SQLExecutor) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{sql: sql}
}

// GetByID fetches a project by UUID.
func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectProjectByID, id)
	project, err := scanProject(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

// ListByStatus returns the newest projects in any of the given statuses.
func (r *ProjectRepositoryPG) ListByStatus(ctx context.Context, statuses []domain.ProjectStatus, limit int) ([]domain.Project, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListProjectsByStatus, names, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ReleaseHeadroom backs out an exact reservation after a declined charge.
func (r *ProjectRepositoryPG) ReleaseHeadroom(ctx context.Context, projectID string, amount int64) error {
	_, err := r.sql.Exec(ctx, sqlinline.QReleaseProjectHeadroom, projectID, amount)
	return err
}

// RefreshFundingCache overwrites the cache columns with a full re-sum.
func (r *ProjectRepositoryPG) RefreshFundingCache(ctx context.Context, projectID string, totalRaised int64, backerCount int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QRefreshProjectFunding, projectID, totalRaised, backerCount)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status string
	if err := row.Scan(
		&p.ID, &p.SchoolID, &p.Title, &p.Description,
		&p.Overview, &p.Motivation, &p.Objectives, &p.Scope,
		&p.Category,
		&p.TargetAmount, &p.CurrentAmount, &p.BackersCount, &status, &p.DaysRemaining,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	return &p, nil
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
