package repository

import (
	"testing"
	"time"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func newUser(email string, role model.UserRole) *model.User {
	return &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Provider:     model.ProviderLocal,
		Role:         role,
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	user := newUser("fan@jerseylab.com", model.RoleCustomer)
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	err := repo.Create(newUser("fan@jerseylab.com", model.RoleCustomer))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.Create(newUser("fan@jerseylab.com", model.RoleCustomer)))

	found, err := repo.FindByEmail("fan@jerseylab.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, found.Role)

	_, err = repo.FindByEmail("nobody@jerseylab.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_RecordLogin(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	user := newUser("fan@jerseylab.com", model.RoleCustomer)
	require.NoError(t, repo.Create(user))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.RecordLogin(user.ID, at))
	require.NoError(t, repo.RecordLogin(user.ID, at))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.LoginCount)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, found.LastLoginAt.Equal(at))
}

func TestUserRepository_UpdateRoleAndDelete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	user := newUser("staff@jerseylab.com", model.RoleCustomer)
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.UpdateRole(user.ID, model.RoleStaff))
	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, found.Role)

	assert.ErrorIs(t, repo.UpdateRole(9999, model.RoleStaff), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(user.ID))
	assert.ErrorIs(t, repo.Delete(user.ID), gorm.ErrRecordNotFound)

	users, err := repo.FindAll()
	require.NoError(t, err)
	assert.Empty(t, users)
}
