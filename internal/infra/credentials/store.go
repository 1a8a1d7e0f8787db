package credentials

import (
	"context"
	"errors"
	"strings"

	"backed/internal/infra"
	"backed/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
	ProviderResend = "resend"
)

// Store reads and writes external-service secrets kept in the database so
// deployments without the env vars set can still be configured at runtime.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Secret(ctx, ProviderGemini)
}

func (s *Store) Secret(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectServiceCredential, provider)
	var secret string
	if err := row.Scan(&secret); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.upsert(ctx, ProviderGemini, key)
}

func (s *Store) upsert(ctx context.Context, provider, secret string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertServiceCredential, provider, secret)
	return err
}
