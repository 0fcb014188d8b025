// Package repository provides the bun-backed Store implementation for the
// accounts orchestrator.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Manager struct {
	db       *bun.DB
	users    repository.Repository[*accounts.User]
	sessions repository.Repository[*accounts.Session]
}

var _ accounts.Store = (*Manager)(nil)

func New(db *bun.DB) *Manager {
	users := repository.NewRepository[*accounts.User](db, repository.ModelHandlers[*accounts.User]{
		NewRecord: func() *accounts.User { return &accounts.User{} },
		GetID: func(u *accounts.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *accounts.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	sessions := repository.NewRepository[*accounts.Session](db, repository.ModelHandlers[*accounts.Session]{
		NewRecord: func() *accounts.Session { return &accounts.Session{} },
		GetID: func(s *accounts.Session) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *accounts.Session, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	})

	return &Manager{
		db:       db,
		users:    users,
		sessions: sessions,
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database")
	}
	return nil
}

func (m *Manager) DB() *bun.DB {
	return m.db
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}
