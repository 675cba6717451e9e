package access

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun-backed user store. Wrap it with NewUserDirectory to hand
// it to the auth operations.
type Users interface {
	repository.Repository[*User]

	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Save(ctx context.Context, record *User) error
	SaveTx(ctx context.Context, tx bun.IDB, record *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// FindByEmail looks a user up by exact email match (case-sensitive as stored).
func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	return a.findOne(ctx, a.db, "email", email)
}

// FindByID looks a user up by primary key.
func (a *users) FindByID(ctx context.Context, id string) (*User, error) {
	if !isUUID(id) {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}
	return a.findOne(ctx, a.db, "id", id)
}

func (a *users) findOne(ctx context.Context, idb bun.IDB, column, value string) (*User, error) {
	record := &User{}
	err := idb.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

// CreateTx inserts a record after checking email uniqueness. The check runs
// on the same tx so a concurrent insert inside the transaction is visible.
func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	if record != nil && record.Email != "" {
		if _, err := a.findOne(ctx, tx, "email", record.Email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// Save persists the mutable fields of an existing record. Columns are listed
// explicitly so nil reset fields are written back as NULL instead of skipped.
func (a *users) Save(ctx context.Context, record *User) error {
	return a.SaveTx(ctx, a.db, record)
}

func (a *users) SaveTx(ctx context.Context, tx bun.IDB, record *User) error {
	if record == nil || record.ID == uuid.Nil {
		return repository.NewRecordNotFound()
	}

	now := time.Now()
	record.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(record).
		Column("name", "password_hash", "user_role", "permissions", "manager_id", "reset_otp", "reset_otp_expires", "updated_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": record.ID.String()})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Permissions == nil {
		record.Permissions = []string{}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

var _ UserDirectory = (*userDirectoryAdapter)(nil)

// userDirectoryAdapter narrows Users to the UserDirectory contract so the
// variadic repository signatures do not leak into the core interfaces.
type userDirectoryAdapter struct {
	repo Users
}

// NewUserDirectory adapts a Users repository to the UserDirectory interface.
func NewUserDirectory(repo Users) UserDirectory {
	return &userDirectoryAdapter{repo: repo}
}

func (d *userDirectoryAdapter) FindByEmail(ctx context.Context, email string) (*User, error) {
	return d.repo.FindByEmail(ctx, email)
}

func (d *userDirectoryAdapter) FindByID(ctx context.Context, id string) (*User, error) {
	return d.repo.FindByID(ctx, id)
}

func (d *userDirectoryAdapter) Create(ctx context.Context, record *User) (*User, error) {
	return d.repo.Create(ctx, record)
}

func (d *userDirectoryAdapter) Save(ctx context.Context, record *User) error {
	return d.repo.Save(ctx, record)
}
