package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

func (m *Manager) FindUserByID(ctx context.Context, id string) (*accounts.User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	return m.findUserBy(ctx, "id", uid)
}

func (m *Manager) FindUserByUsername(ctx context.Context, username string) (*accounts.User, error) {
	return m.findUserBy(ctx, "username", strings.TrimSpace(username))
}

func (m *Manager) FindUserByEmail(ctx context.Context, email string) (*accounts.User, error) {
	return m.findUserBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (m *Manager) findUserBy(ctx context.Context, column string, value any) (*accounts.User, error) {
	record := &accounts.User{}
	err := m.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
	}

	return record, nil
}

func (m *Manager) SetUserDeactivated(ctx context.Context, id string, deactivated bool) error {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": id})
	}

	res, err := m.db.NewUpdate().
		Model((*accounts.User)(nil)).
		Set("deactivated = ?", deactivated).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", uid).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user deactivation")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{"id": id})
	}

	return nil
}

// CreateUser persists a new user. Missing IDs are derived from the email via
// hashid so re-registration attempts map to the same identity, falling back
// to a random UUID when there is no email.
func (m *Manager) CreateUser(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	if user == nil {
		return nil, goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	prepareUserDefaults(user)

	record, err := m.users.Create(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	return record, nil
}

func prepareUserDefaults(user *accounts.User) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if user.ID == uuid.Nil && user.Email != "" {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if user.Username == "" && strings.Contains(user.Email, "@") {
		user.Username = strings.Split(user.Email, "@")[0]
	}
}
