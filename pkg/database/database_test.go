package database

import (
	"testing"

	"unievent/pkg/config"
	"unievent/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewSQLiteDB_CreatesSchema(t *testing.T) {
	db, err := NewSQLiteDB("")
	require.NoError(t, err)

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "uk_likes_user_post"))
}

func TestNewSQLiteDB_TranslatesDuplicateKey(t *testing.T) {
	db, err := NewSQLiteDB("")
	require.NoError(t, err)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(user).Error)

	dup := &models.User{Username: "alice", Email: "other@example.com", Password: "x", Role: models.RoleStudent}
	err = db.Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "memory"})
	assert.Error(t, err)
}

func TestNew_SQLite(t *testing.T) {
	db, err := New(&config.Config{DBDriver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	assert.NotNil(t, db)
}

func TestNewSQLiteDB_EnforcesForeignKeys(t *testing.T) {
	db, err := NewSQLiteDB("")
	require.NoError(t, err)

	err = db.Create(&models.Like{UserID: "ghost", PostID: "gone"}).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(user).Error)
	post := &models.Post{AuthorID: user.ID, Content: "hello"}
	require.NoError(t, db.Create(post).Error)

	err = db.Delete(&models.User{}, "id = ?", user.ID).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestMigrate_Repeatable(t *testing.T) {
	db, err := NewSQLiteDB("")
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "uk_likes_user_post"))
}
