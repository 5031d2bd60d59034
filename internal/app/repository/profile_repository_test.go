package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/db"
	"gorm.io/gorm"
)

func setupProfileTest(t *testing.T) (*gorm.DB, ProfileRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	return testDB, NewProfileRepository(testDB)
}

func TestProfileRepository_CreateAndFind(t *testing.T) {
	testDB, repo := setupProfileTest(t)
	defer db.CleanupTestDB(testDB)

	avatar := "abc123"
	profile := &model.Profile{
		DiscordID: "42424242",
		Username:  "newuser",
		Avatar:    &avatar,
	}

	err := repo.Create(profile)
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.False(t, profile.IsAdmin)

	byID, err := repo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "newuser", byID.Username)

	byDiscord, err := repo.FindByDiscordID("42424242")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, byDiscord.ID)
}

func TestProfileRepository_Create_DuplicateDiscordID(t *testing.T) {
	testDB, repo := setupProfileTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(&model.Profile{DiscordID: "7", Username: "one"}))

	err := repo.Create(&model.Profile{DiscordID: "7", Username: "two"})
	assert.Error(t, err)
}

func TestProfileRepository_Update(t *testing.T) {
	testDB, repo := setupProfileTest(t)
	defer db.CleanupTestDB(testDB)

	profile := &model.Profile{DiscordID: "8", Username: "before"}
	require.NoError(t, repo.Create(profile))

	profile.Username = "after"
	require.NoError(t, repo.Update(profile))

	found, err := repo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", found.Username)
}

func TestProfileRepository_Delete(t *testing.T) {
	testDB, repo := setupProfileTest(t)
	defer db.CleanupTestDB(testDB)

	profile := &model.Profile{DiscordID: "9", Username: "gone"}
	require.NoError(t, repo.Create(profile))

	require.NoError(t, repo.Delete(profile.ID))

	_, err := repo.FindByID(profile.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_SetAdmin(t *testing.T) {
	testDB, repo := setupProfileTest(t)
	defer db.CleanupTestDB(testDB)

	profile := &model.Profile{DiscordID: "10", Username: "promoted"}
	require.NoError(t, repo.Create(profile))

	require.NoError(t, repo.SetAdmin(profile.ID, true))

	found, err := repo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.True(t, found.IsAdmin)

	err = repo.SetAdmin("00000000-0000-0000-0000-000000000000", true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
