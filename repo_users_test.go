package access_test

import (
	"context"
	"testing"
	"time"

	access "github.com/goliatone/go-access"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// newTestDB opens an in-memory sqlite database with the schema applied.
// :memory: lives per connection, so the pool is capped at one to keep every
// query on the same database.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := access.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)

	require.NoError(t, access.EnsureSchema(context.Background(), db))
	return db
}

func TestUsersRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := access.NewUsersRepository(db)

	t.Run("Create and find by email round trips the record", func(t *testing.T) {
		created, err := repo.Create(ctx, &access.User{
			Name:         "Morty Manager",
			Email:        "morty@example.com",
			PasswordHash: "not-a-real-hash",
			Role:         access.RoleManager,
			Permissions:  []string{"tickets:read", "tickets:write"},
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)

		found, err := repo.FindByEmail(ctx, "morty@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "Morty Manager", found.Name)
		assert.Equal(t, access.RoleManager, found.Role)
		assert.Equal(t, []string{"tickets:read", "tickets:write"}, found.Permissions)

		byID, err := repo.FindByID(ctx, created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "morty@example.com", byID.Email)
	})

	t.Run("Unknown email is record not found", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("Malformed id is record not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "not-a-uuid")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("Duplicate email is refused", func(t *testing.T) {
		_, err := repo.Create(ctx, &access.User{
			Name:         "Morty Again",
			Email:        "morty@example.com",
			PasswordHash: "not-a-real-hash",
			Role:         access.RoleManager,
		})
		require.Error(t, err)
		assert.Equal(t, access.ErrDuplicateEmail, err)
	})

	t.Run("Save writes cleared reset fields back as NULL", func(t *testing.T) {
		created, err := repo.Create(ctx, &access.User{
			Name:         "Amy Agent",
			Email:        "amy@example.com",
			PasswordHash: "not-a-real-hash",
			Role:         access.RoleAgent,
			Permissions:  []string{"tickets:read"},
		})
		require.NoError(t, err)

		expiry := time.Now().Add(access.OTPTTL).UTC()
		created.SetResetChallenge("482913", expiry)
		require.NoError(t, repo.Save(ctx, created))

		pending, err := repo.FindByEmail(ctx, "amy@example.com")
		require.NoError(t, err)
		require.NotNil(t, pending.ResetOTP)
		assert.Equal(t, "482913", *pending.ResetOTP)
		require.NotNil(t, pending.ResetOTPExpires)
		assert.WithinDuration(t, expiry, *pending.ResetOTPExpires, time.Second)

		pending.ClearResetChallenge()
		require.NoError(t, repo.Save(ctx, pending))

		cleared, err := repo.FindByEmail(ctx, "amy@example.com")
		require.NoError(t, err)
		assert.Nil(t, cleared.ResetOTP)
		assert.Nil(t, cleared.ResetOTPExpires)
		assert.False(t, cleared.ResetChallengeValid("482913", time.Now()))
	})

	t.Run("Save persists a replaced credential", func(t *testing.T) {
		record, err := repo.FindByEmail(ctx, "amy@example.com")
		require.NoError(t, err)

		record.PasswordHash = "replacement-hash"
		require.NoError(t, repo.Save(ctx, record))

		reloaded, err := repo.FindByEmail(ctx, "amy@example.com")
		require.NoError(t, err)
		assert.Equal(t, "replacement-hash", reloaded.PasswordHash)
	})

	t.Run("Save of an unknown record is record not found", func(t *testing.T) {
		err := repo.Save(ctx, &access.User{
			ID:           uuid.New(),
			Name:         "Ghost",
			Email:        "ghost@example.com",
			PasswordHash: "not-a-real-hash",
			Role:         access.RoleAgent,
		})
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("Save without a primary key is record not found", func(t *testing.T) {
		err := repo.Save(ctx, &access.User{Email: "ghost@example.com"})
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUserDirectoryAdapter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	directory := access.NewUserDirectory(access.NewUsersRepository(db))

	created, err := directory.Create(ctx, &access.User{
		Name:         "Morty Manager",
		Email:        "morty@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         access.RoleManager,
	})
	require.NoError(t, err)

	found, err := directory.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "morty@example.com", found.Email)

	found.Name = "Morty Renamed"
	require.NoError(t, directory.Save(ctx, found))

	reloaded, err := directory.FindByEmail(ctx, "morty@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Morty Renamed", reloaded.Name)
}
