package repository

import (
	"context"
	"sync"
	"testing"

	"postboard/internal/database"
	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite::memory:", database.PoolOptions{})
	require.NoError(t, err)

	runner, err := database.NewRunner(db, database.Migrations()...)
	require.NoError(t, err)
	require.NoError(t, runner.Up(context.Background()))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestStore_UserRoundTrip(t *testing.T) {
	db := setupSQLiteDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	alice := &models.User{Username: "alice"}
	require.NoError(t, users.Create(ctx, alice))
	assert.Equal(t, uint(1), alice.ID)

	// Empty usernames are stored as given.
	blank := &models.User{Username: ""}
	require.NoError(t, users.Create(ctx, blank))

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: 1, Username: "alice"}, {ID: 2, Username: ""}}, list)
}

func TestStore_PostsByUser(t *testing.T) {
	db := setupSQLiteDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	alice := &models.User{Username: "alice"}
	bob := &models.User{Username: "bob"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	require.NoError(t, posts.Create(ctx, &models.Post{Message: "hi", UserID: &alice.ID}))
	require.NoError(t, posts.Create(ctx, &models.Post{Message: "hey", UserID: &bob.ID}))
	require.NoError(t, posts.Create(ctx, &models.Post{Message: "again", UserID: &alice.ID}))
	require.NoError(t, posts.Create(ctx, &models.Post{Message: "nobody's"}))

	got, err := posts.ListByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].Message)
	assert.Equal(t, "again", got[1].Message)

	none, err := posts.ListByUserID(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_PostForUnknownUser(t *testing.T) {
	db := setupSQLiteDB(t)
	posts := NewPostRepository(db)

	missing := uint(12)
	err := posts.Create(context.Background(), &models.Post{Message: "hi", UserID: &missing})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConstraintViolation))
}

func TestStore_ConcurrentCreates(t *testing.T) {
	db := setupSQLiteDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- users.Create(ctx, &models.User{Username: "user"})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n)
	seen := make(map[uint]bool, n)
	for _, u := range list {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}
