package repo

import (
	"context"

	"backed/internal/domain"
	"backed/internal/infra"
	"backed/internal/sqlinline"
)

// FollowRepositoryPG implements domain.FollowRepository.
type FollowRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewFollowRepository(sql infra.SQLExecutor) *FollowRepositoryPG {
	return &FollowRepositoryPG{sql: sql}
}

func (r *FollowRepositoryPG) Follow(ctx context.Context, alumniUserID, schoolID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertFollow, alumniUserID, schoolID)
	return err
}

func (r *FollowRepositoryPG) Unfollow(ctx context.Context, alumniUserID, schoolID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteFollow, alumniUserID, schoolID)
	return err
}

func (r *FollowRepositoryPG) ListFollowerIDs(ctx context.Context, schoolID string) ([]string, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListFollowerIDs, schoolID)
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

// BookmarkRepositoryPG implements domain.BookmarkRepository.
type BookmarkRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewBookmarkRepository(sql infra.SQLExecutor) *BookmarkRepositoryPG {
	return &BookmarkRepositoryPG{sql: sql}
}

func (r *BookmarkRepositoryPG) Add(ctx context.Context, alumniUserID, projectID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertBookmark, alumniUserID, projectID)
	return err
}

func (r *BookmarkRepositoryPG) Remove(ctx context.Context, alumniUserID, projectID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteBookmark, alumniUserID, projectID)
	return err
}

func (r *BookmarkRepositoryPG) ListProjectIDs(ctx context.Context, alumniUserID string) ([]string, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListBookmarkProjectIDs, alumniUserID)
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

var (
	_ domain.FollowRepository   = (*FollowRepositoryPG)(nil)
	_ domain.BookmarkRepository = (*BookmarkRepositoryPG)(nil)
)
