package database

import (
	"context"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRunner(t *testing.T, db *gorm.DB, migrations ...Migration) *Runner {
	t.Helper()
	r, err := NewRunner(db, migrations...)
	require.NoError(t, err)
	return r
}

func appliedVersions(t *testing.T, db *gorm.DB) []int {
	t.Helper()
	var versions []int
	require.NoError(t, db.Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error)
	return versions
}

func TestRunnerUp_AppliesAllInOrder(t *testing.T) {
	db := openTestDB(t)
	r := newTestRunner(t, db, Migrations()...)

	require.NoError(t, r.Up(context.Background()))

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasIndex("posts", "idx_posts_user_id"))
	assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, db))

	version, err := r.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestRunnerUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	r := newTestRunner(t, db, Migrations()...)
	ctx := context.Background()

	require.NoError(t, r.Up(ctx))
	require.NoError(t, db.Create(&models.User{Username: "alice"}).Error)

	require.NoError(t, r.Up(ctx))
	assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRunnerUp_ToleratesExistingTable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE "users" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "username" TEXT NOT NULL)`).Error)

	r := newTestRunner(t, db, Migrations()...)
	require.NoError(t, r.Up(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, db))
}

func TestRunnerUp_PostsRequireUsers(t *testing.T) {
	db := openTestDB(t)
	posts := Migrations()[1]
	r := newTestRunner(t, db, posts)

	err := r.Up(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)

	var migErr *MigrationError
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, 2, migErr.Version)
	assert.Equal(t, "up", migErr.Direction)

	assert.False(t, db.Migrator().HasTable("posts"))
	assert.Empty(t, appliedVersions(t, db))
}

func TestRunnerUp_StopsAtFirstFailure(t *testing.T) {
	db := openTestDB(t)
	broken := Migration{
		Version: 2,
		Name:    "broken",
		Steps:   []Step{CreateIndex{Name: "idx_missing", Table: "missing", Columns: []string{"x"}}},
	}
	r := newTestRunner(t, db, Migrations()[0], broken, Migrations()[2])

	err := r.Up(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{1}, appliedVersions(t, db))
	assert.False(t, db.Migrator().HasTable("posts"))
}

func TestRunnerUp_RejectsUnknownAppliedVersion(t *testing.T) {
	db := openTestDB(t)
	r := newTestRunner(t, db, Migrations()...)
	require.NoError(t, r.Up(context.Background()))
	require.NoError(t, db.Create(&MigrationLog{Version: 99, Name: "from_the_future"}).Error)

	err := r.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000099")
}

func TestNewRunner_RejectsDuplicateVersions(t *testing.T) {
	_, err := NewRunner(nil, Migration{Version: 1, Name: "a"}, Migration{Version: 1, Name: "b"})
	assert.Error(t, err)

	_, err = NewRunner(nil, Migration{Version: 0, Name: "zero"})
	assert.Error(t, err)
}

func TestNewRunner_SortsByVersion(t *testing.T) {
	all := Migrations()
	r, err := NewRunner(nil, all[2], all[0], all[1])
	require.NoError(t, err)
	for i, m := range r.migrations {
		assert.Equal(t, i+1, m.Version)
	}
}

func TestRunnerDown(t *testing.T) {
	db := openTestDB(t)
	r := newTestRunner(t, db, Migrations()...)
	ctx := context.Background()
	require.NoError(t, r.Up(ctx))

	require.NoError(t, r.Down(ctx, 1))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.False(t, db.Migrator().HasTable("posts"))
	assert.Equal(t, []int{1}, appliedVersions(t, db))

	require.NoError(t, r.Down(ctx, 0))
	assert.False(t, db.Migrator().HasTable("users"))
	assert.Empty(t, appliedVersions(t, db))

	// Fully reverted stores can be brought back up.
	require.NoError(t, r.Up(ctx))
	assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, db))
}

func TestRunnerDown_InvalidTarget(t *testing.T) {
	db := openTestDB(t)
	r := newTestRunner(t, db, Migrations()...)

	assert.Error(t, r.Down(context.Background(), -1))
	assert.Error(t, r.Down(context.Background(), 42))
}

func TestRunnerStatus(t *testing.T) {
	db := openTestDB(t)
	all := Migrations()
	require.NoError(t, newTestRunner(t, db, all[0]).Up(context.Background()))

	statuses, err := newTestRunner(t, db, all...).Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.True(t, statuses[0].Applied)
	assert.NotNil(t, statuses[0].AppliedAt)
	assert.Equal(t, "create_users_table", statuses[0].Name)
	assert.False(t, statuses[1].Applied)
	assert.Nil(t, statuses[1].AppliedAt)
	assert.False(t, statuses[2].Applied)
}

func TestAddColumnStep(t *testing.T) {
	db := openTestDB(t)
	addBio := Migration{
		Version: 2,
		Name:    "add_users_bio",
		Steps:   []Step{AddColumn{Table: "users", Column: Column{Name: "bio", Type: String, DefaultNull: true}}},
	}
	r := newTestRunner(t, db, Migrations()[0], addBio)
	ctx := context.Background()

	require.NoError(t, r.Up(ctx))
	assert.True(t, db.Migrator().HasColumn("users", "bio"))

	// Re-applying the step directly is a no-op.
	require.NoError(t, addBio.Steps[0].Apply(db))

	require.NoError(t, r.Down(ctx, 1))
	assert.False(t, db.Migrator().HasColumn("users", "bio"))
}

func TestPostsForeignKeySemantics(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, newTestRunner(t, db, Migrations()...).Up(context.Background()))

	alice := models.User{Username: "alice"}
	require.NoError(t, db.Create(&alice).Error)

	t.Run("unknown user is rejected", func(t *testing.T) {
		missing := uint(999)
		err := TranslateError(db.Create(&models.Post{Message: "orphan", UserID: &missing}).Error)
		assert.True(t, models.HasCode(err, models.CodeConstraintViolation))
	})

	t.Run("null user is accepted", func(t *testing.T) {
		post := models.Post{Message: "anonymous"}
		require.NoError(t, db.Create(&post).Error)
		assert.NotZero(t, post.ID)
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		err := TranslateError(db.Exec(`INSERT INTO "posts" ("user_id") VALUES (?)`, alice.ID).Error)
		assert.True(t, models.HasCode(err, models.CodeConstraintViolation))
	})

	t.Run("user id updates cascade", func(t *testing.T) {
		post := models.Post{Message: "hi", UserID: &alice.ID}
		require.NoError(t, db.Create(&post).Error)

		require.NoError(t, db.Exec(`UPDATE "users" SET "id" = ? WHERE "id" = ?`, 500, alice.ID).Error)

		var reloaded models.Post
		require.NoError(t, db.First(&reloaded, post.ID).Error)
		require.NotNil(t, reloaded.UserID)
		assert.Equal(t, uint(500), *reloaded.UserID)
	})

	t.Run("deleting a user with posts is rejected", func(t *testing.T) {
		err := TranslateError(db.Exec(`DELETE FROM "users" WHERE "id" = ?`, 500).Error)
		assert.True(t, models.HasCode(err, models.CodeConstraintViolation))

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", 500).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
