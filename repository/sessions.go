package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func (m *Manager) CreateSession(ctx context.Context, userID, token string, conn accounts.ConnectionInfo, extra map[string]any) (string, error) {
	uid, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id for session")
	}

	record := &accounts.Session{
		ID:        uuid.New(),
		UserID:    uid,
		Token:     token,
		Valid:     true,
		IP:        conn.IP,
		UserAgent: conn.UserAgent,
		ExtraData: extra,
	}

	created, err := m.sessions.Create(ctx, record)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not create session")
	}

	return created.ID.String(), nil
}

func (m *Manager) FindSessionByToken(ctx context.Context, token string) (*accounts.Session, error) {
	record := &accounts.Session{}
	err := m.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "session lookup failed")
	}

	return record, nil
}

func (m *Manager) UpdateSession(ctx context.Context, sessionID string, conn accounts.ConnectionInfo, newToken string) error {
	sid, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": sessionID})
	}

	q := m.db.NewUpdate().
		Model((*accounts.Session)(nil)).
		Set("ip = ?", conn.IP).
		Set("user_agent = ?", conn.UserAgent).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", sid)

	if newToken != "" {
		q = q.Set("token = ?", newToken)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update session")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": sessionID})
	}

	return nil
}

func (m *Manager) InvalidateSession(ctx context.Context, sessionID string) error {
	sid, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": sessionID})
	}

	// valid=false is terminal; there is no query that flips it back.
	res, err := m.db.NewUpdate().
		Model((*accounts.Session)(nil)).
		Set("valid = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", sid).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not invalidate session")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": sessionID})
	}

	return nil
}

func (m *Manager) InvalidateAllSessions(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": userID})
	}

	_, err = m.db.NewUpdate().
		Model((*accounts.Session)(nil)).
		Set("valid = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.user_id = ?", uid).
		Where("?TableAlias.valid = ?", true).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not invalidate user sessions")
	}

	return nil
}
