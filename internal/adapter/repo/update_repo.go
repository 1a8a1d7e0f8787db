package repo

import (
	"context"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// ProjectUpdateRepositoryPG implements domain.ProjectUpdateRepository.
type ProjectUpdateRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewProjectUpdateRepository(sql infra.SQLExecutor) *ProjectUpdateRepositoryPG {
	return &ProjectUpdateRepositoryPG{sql: sql}
}

func (r *ProjectUpdateRepositoryPG) Create(ctx context.Context, update *domain.ProjectUpdate) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertProjectUpdate,
		update.ProjectID, update.SchoolID, update.Title, update.Message)
	return row.Scan(&update.ID, &update.CreatedAt)
}

func (r *ProjectUpdateRepositoryPG) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectUpdate, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProjectUpdates, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ProjectUpdate
	for rows.Next() {
		var u domain.ProjectUpdate
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.SchoolID, &u.Title, &u.Message, &u.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.ProjectUpdateRepository = (*ProjectUpdateRepositoryPG)(nil)
