package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/internal/db"
	"github.com/tagcord/tagcord-backend/internal/middleware"
	"gorm.io/gorm"
)

// fakeAuth injects an authenticated user the way the auth middleware would.
func fakeAuth(userID string, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserIsAdminKey, isAdmin)
		c.Next()
	}
}

func setupTagControllerTest(t *testing.T) (*gorm.DB, *TagController, *model.Profile) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	tagRepo := repository.NewTagRepository(testDB)
	profileRepo := repository.NewProfileRepository(testDB)
	listingService := service.NewListingService(tagRepo, nil, 12)
	tagService := service.NewTagService(tagRepo, profileRepo, listingService, nil)
	ctrl := NewTagController(tagService, listingService, 8)

	owner := &model.Profile{DiscordID: "c-1", Username: "owner"}
	require.NoError(t, testDB.Create(owner).Error)

	return testDB, ctrl, owner
}

func tagInput(name string) service.TagInput {
	return service.TagInput{
		TagName:    name,
		IconID:     4,
		InviteURL:  "https://discord.gg/" + name,
		Categories: []string{"Gaming"},
	}
}

func postJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTagController_CreateTag(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	router := gin.New()
	router.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)

	w := postJSON(router, "POST", "/api/tags", service.TagInput{
		TagName:    "wolf",
		IconID:     4,
		InviteURL:  "https://discord.gg/pack",
		Categories: []string{"Gaming"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"WOLF"`)
}

func TestTagController_CreateTag_ValidationError(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	router := gin.New()
	router.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)

	w := postJSON(router, "POST", "/api/tags", service.TagInput{
		TagName: "toolong",
		IconID:  4,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "tag_name")
}

func TestTagController_CreateTag_DuplicateName(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	router := gin.New()
	router.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)

	input := tagInput("DUPE")
	w := postJSON(router, "POST", "/api/tags", input)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "POST", "/api/tags", input)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "TAG_NAME_TAKEN")
}

func TestTagController_ListTags_FilterAndPaginate(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	router := gin.New()
	router.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)
	router.GET("/api/tags", ctrl.ListTags)

	for _, seed := range []struct {
		name     string
		category string
	}{
		{"GAME", "Gaming"},
		{"TUNE", "Music"},
		{"DRAW", "Art"},
	} {
		input := tagInput(seed.name)
		input.Categories = []string{seed.category}
		w := postJSON(router, "POST", "/api/tags", input)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest("GET", "/api/tags?categories=Gaming,Music&page=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tags         []model.Tag `json:"tags"`
		TotalMatches int64       `json:"total_matches"`
		TotalPages   int         `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(2), response.TotalMatches)
	assert.Len(t, response.Tags, 2)
	assert.Equal(t, 1, response.TotalPages)

	// Repeating the parameter filters the same as the CSV form
	req = httptest.NewRequest("GET", "/api/tags?categories=Gaming&categories=Music&page=1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(2), response.TotalMatches)
}

func TestTagController_UpdateTag_Forbidden(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	stranger := &model.Profile{DiscordID: "c-2", Username: "stranger"}
	require.NoError(t, testDB.Create(stranger).Error)

	ownerRouter := gin.New()
	ownerRouter.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)

	w := postJSON(ownerRouter, "POST", "/api/tags", tagInput("MINE"))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Tag model.Tag `json:"tag"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	strangerRouter := gin.New()
	strangerRouter.PUT("/api/tags/:id", fakeAuth(stranger.ID, false), ctrl.UpdateTag)

	update := tagInput("MINE")
	update.IconID = 5
	w = postJSON(strangerRouter, "PUT", "/api/tags/"+created.Tag.ID, update)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_FORBIDDEN")
}

func TestTagController_DeleteTag_NotFound(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	router := gin.New()
	router.DELETE("/api/tags/:id", fakeAuth(owner.ID, false), ctrl.DeleteTag)

	req := httptest.NewRequest("DELETE", "/api/tags/missing-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "TAG_NOT_FOUND")
}

func TestTagController_RecentTags(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	router := gin.New()
	router.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)
	router.GET("/api/tags/recent", ctrl.RecentTags)

	names := []string{"AAA1", "AAA2", "AAA3", "AAA4", "AAA5", "AAA6", "AAA7", "AAA8", "AAA9"}
	for _, name := range names {
		w := postJSON(router, "POST", "/api/tags", tagInput(name))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest("GET", "/api/tags/recent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tags []model.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	// Home feed is capped at its own page size
	assert.Len(t, response.Tags, 8)
}

func TestTagController_MyTags(t *testing.T) {
	testDB, ctrl, owner := setupTagControllerTest(t)
	defer db.CleanupTestDB(testDB)

	other := &model.Profile{DiscordID: "c-3", Username: "other"}
	require.NoError(t, testDB.Create(other).Error)

	router := gin.New()
	router.POST("/api/tags", fakeAuth(owner.ID, false), ctrl.CreateTag)
	router.GET("/api/my-tags", fakeAuth(owner.ID, false), ctrl.MyTags)

	w := postJSON(router, "POST", "/api/tags", tagInput("OURS"))
	require.Equal(t, http.StatusCreated, w.Code)

	otherRouter := gin.New()
	otherRouter.POST("/api/tags", fakeAuth(other.ID, false), ctrl.CreateTag)
	w = postJSON(otherRouter, "POST", "/api/tags", tagInput("THRS"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest("GET", "/api/my-tags", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusOK, w2.Code)

	var response struct {
		Tags  []model.Tag `json:"tags"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Tags, 1)
	assert.Equal(t, "OURS", response.Tags[0].TagName)
}
