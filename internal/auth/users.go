package auth

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bossops/opsdeck/internal/errs"
	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

// Default admin ensured at boot so a fresh install is reachable.
const (
	DefaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// Users manages login accounts in the admin_users collection.
type Users struct {
	store storage.Store
}

// NewUsers constructs the account service over the given store.
func NewUsers(store storage.Store) *Users {
	return &Users{store: store}
}

// FindByUsername returns the account with the given username, if any.
func (u *Users) FindByUsername(ctx context.Context, username string) (ops.AdminUser, bool, error) {
	rows, err := u.store.SelectAll(ctx, storage.CollectionAdminUsers, storage.Query{
		Filters: storage.Filters{"username": username},
		Limit:   1,
	})
	if err != nil || len(rows) == 0 {
		return ops.AdminUser{}, false, err
	}
	var user ops.AdminUser
	if err := storage.Decode(rows[0], &user); err != nil {
		return ops.AdminUser{}, false, err
	}
	return user, true, nil
}

// FindByID returns the account with the given id, if any.
func (u *Users) FindByID(ctx context.Context, id string) (ops.AdminUser, bool, error) {
	row, found, err := u.store.SelectOne(ctx, storage.CollectionAdminUsers, id)
	if err != nil || !found {
		return ops.AdminUser{}, false, err
	}
	var user ops.AdminUser
	if err := storage.Decode(row, &user); err != nil {
		return ops.AdminUser{}, false, err
	}
	return user, true, nil
}

// List returns all accounts.
func (u *Users) List(ctx context.Context) ([]ops.AdminUser, error) {
	rows, err := u.store.SelectAll(ctx, storage.CollectionAdminUsers, storage.Query{})
	if err != nil {
		return nil, err
	}
	return storage.DecodeAll[ops.AdminUser](rows)
}

// Register creates an account. Usernames are unique; a clash reports
// errs.ErrConflict.
func (u *Users) Register(ctx context.Context, username, password, displayName, role string) (ops.AdminUser, error) {
	if username == "" || password == "" {
		return ops.AdminUser{}, errs.ErrInvalid
	}
	if _, exists, err := u.FindByUsername(ctx, username); err != nil {
		return ops.AdminUser{}, err
	} else if exists {
		return ops.AdminUser{}, errs.ErrConflict
	}
	if displayName == "" {
		displayName = username
	}
	if role == "" {
		role = "admin"
	}
	hash, err := hashPassword(password)
	if err != nil {
		return ops.AdminUser{}, err
	}
	user := ops.AdminUser{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hash,
		DisplayName:    displayName,
		Role:           role,
	}
	row, err := storage.Encode(user)
	if err != nil {
		return ops.AdminUser{}, err
	}
	if _, err := u.store.Insert(ctx, storage.CollectionAdminUsers, row); err != nil {
		return ops.AdminUser{}, err
	}
	return user, nil
}

// Authenticate verifies username/password and returns the account.
func (u *Users) Authenticate(ctx context.Context, username, password string) (ops.AdminUser, error) {
	user, found, err := u.FindByUsername(ctx, username)
	if err != nil {
		return ops.AdminUser{}, err
	}
	if !found || !verifyPassword(password, user.HashedPassword) {
		return ops.AdminUser{}, errs.ErrUnauthorized
	}
	return user, nil
}

// SetPassword replaces an account's password hash.
func (u *Users) SetPassword(ctx context.Context, id, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	_, found, err := u.store.Update(ctx, storage.CollectionAdminUsers, id, storage.Row{"hashed_password": hash})
	if err != nil {
		return err
	}
	if !found {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes an account.
func (u *Users) Delete(ctx context.Context, id string) error {
	ok, err := u.store.Delete(ctx, storage.CollectionAdminUsers, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}
	return nil
}

// EnsureDefaultAdmin creates admin/admin123 on first boot. Best-effort:
// callers log a warning on failure and keep starting.
func (u *Users) EnsureDefaultAdmin(ctx context.Context) error {
	_, exists, err := u.FindByUsername(ctx, DefaultAdminUsername)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = u.Register(ctx, DefaultAdminUsername, defaultAdminPassword, "Administrator", "admin")
	return err
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
