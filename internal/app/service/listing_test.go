package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	"github.com/tagcord/tagcord-backend/internal/db"
	"gorm.io/gorm"
)

func TestNormalizeListing_TrimsAndDefaults(t *testing.T) {
	descriptor, err := NormalizeListing(ListingParams{
		Text:     "  wolf  ",
		Sort:     "weird",
		Page:     0,
		PageSize: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "wolf", descriptor.Text)
	assert.Empty(t, descriptor.Categories)
	assert.Equal(t, SortNewest, descriptor.Sort)
	assert.Equal(t, 0, descriptor.Offset)
	assert.Equal(t, 12, descriptor.Limit)
}

func TestNormalizeListing_CategoryOrderIndependence(t *testing.T) {
	first, err := NormalizeListing(ListingParams{
		Categories: []string{"Gaming", "Coding"},
		PageSize:   12,
	})
	require.NoError(t, err)

	second, err := NormalizeListing(ListingParams{
		Categories: []string{"Coding", "Gaming"},
		PageSize:   12,
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.CacheKey(), second.CacheKey())
}

func TestNormalizeListing_DropsUnknownAndDuplicateCategories(t *testing.T) {
	descriptor, err := NormalizeListing(ListingParams{
		Categories: []string{"Gaming", "NotACategory", "Gaming", "  "},
		PageSize:   12,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Gaming"}, descriptor.Categories)
}

func TestNormalizeListing_RejectsNonPositivePageSize(t *testing.T) {
	_, err := NormalizeListing(ListingParams{PageSize: 0})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = NormalizeListing(ListingParams{PageSize: -3})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestNormalizeListing_ClampsPage(t *testing.T) {
	descriptor, err := NormalizeListing(ListingParams{Page: -5, PageSize: 12})
	require.NoError(t, err)
	assert.Equal(t, 0, descriptor.Offset)

	descriptor, err = NormalizeListing(ListingParams{Page: 3, PageSize: 12})
	require.NoError(t, err)
	assert.Equal(t, 24, descriptor.Offset)
}

func TestListingDescriptor_CacheKey(t *testing.T) {
	a := ListingDescriptor{Text: "x", Categories: []string{"Art", "Gaming"}, Sort: SortNewest, Offset: 0, Limit: 12}
	b := ListingDescriptor{Text: "x", Categories: []string{"Art", "Gaming"}, Sort: SortNewest, Offset: 0, Limit: 12}
	c := ListingDescriptor{Text: "x", Categories: []string{"Art"}, Sort: SortNewest, Offset: 0, Limit: 12}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}

func setupListingTest(t *testing.T) (*gorm.DB, *ListingService, *model.Profile) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	tagRepo := repository.NewTagRepository(testDB)
	svc := NewListingService(tagRepo, nil, 12)

	profile := &model.Profile{DiscordID: "555", Username: "lister"}
	require.NoError(t, testDB.Create(profile).Error)

	return testDB, svc, profile
}

func seedTag(t *testing.T, testDB *gorm.DB, owner *model.Profile, name string, categories []string, createdAt time.Time) {
	t.Helper()
	tag := &model.Tag{
		TagName:       name,
		IconID:        2,
		Categories:    pq.StringArray(categories),
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		CreatedAt:     createdAt,
	}
	require.NoError(t, repository.NewTagRepository(testDB).Create(tag))
}

func TestListingService_Plan_Determinism(t *testing.T) {
	testDB, svc, owner := setupListingTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	seedTag(t, testDB, owner, "AAAA", []string{"Gaming"}, now)
	seedTag(t, testDB, owner, "BBBB", []string{"Music"}, now.Add(time.Minute))

	descriptor, err := NormalizeListing(ListingParams{PageSize: 12})
	require.NoError(t, err)

	first, err := svc.Plan(context.Background(), descriptor)
	require.NoError(t, err)
	second, err := svc.Plan(context.Background(), descriptor)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestListingService_Plan_OverlapSemantics(t *testing.T) {
	testDB, svc, owner := setupListingTest(t)
	defer db.CleanupTestDB(testDB)

	seedTag(t, testDB, owner, "ABCD", []string{"Gaming"}, time.Now())
	seedTag(t, testDB, owner, "WXYZ", []string{"Music"}, time.Now())

	page, err := svc.PlanParams(context.Background(), ListingParams{Categories: []string{"Gaming"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ABCD", page.Items[0].TagName)

	page, err = svc.PlanParams(context.Background(), ListingParams{Categories: []string{"Gaming", "Music"}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.TotalMatches)
}

func TestListingService_Plan_Pagination(t *testing.T) {
	testDB, svc, owner := setupListingTest(t)
	defer db.CleanupTestDB(testDB)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	names := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		name := "T" + string(rune('A'+i/5)) + string(rune('A'+i%5))
		names = append(names, name)
		seedTag(t, testDB, owner, name, nil, base.Add(time.Duration(i)*time.Minute))
	}

	pageOne, err := svc.PlanParams(context.Background(), ListingParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(25), pageOne.TotalMatches)
	require.Len(t, pageOne.Items, 12)
	assert.Equal(t, names[24], pageOne.Items[0].TagName)

	pageThree, err := svc.PlanParams(context.Background(), ListingParams{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(25), pageThree.TotalMatches)
	require.Len(t, pageThree.Items, 1)
	assert.Equal(t, names[0], pageThree.Items[0].TagName)
}

func TestListingService_Plan_OutOfRangePage(t *testing.T) {
	testDB, svc, owner := setupListingTest(t)
	defer db.CleanupTestDB(testDB)

	seedTag(t, testDB, owner, "ONLY", nil, time.Now())

	page, err := svc.PlanParams(context.Background(), ListingParams{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.TotalMatches)
}

type unreachableTagRepo struct {
	repository.TagRepository
}

func (r unreachableTagRepo) FindWithFilter(filter repository.TagFilter) ([]model.Tag, int64, error) {
	return nil, 0, errors.New("dial tcp 127.0.0.1:5432: connection refused")
}

func TestListingService_Plan_StoreUnavailable(t *testing.T) {
	svc := NewListingService(unreachableTagRepo{}, nil, 12)

	_, err := svc.PlanParams(context.Background(), ListingParams{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

type mapPageCache struct {
	pages map[string][]byte
}

func newMapPageCache() *mapPageCache {
	return &mapPageCache{pages: make(map[string][]byte)}
}

func (c *mapPageCache) GetPage(_ context.Context, key string) ([]byte, bool) {
	payload, ok := c.pages[key]
	return payload, ok
}

func (c *mapPageCache) SetPage(_ context.Context, key string, payload []byte) {
	c.pages[key] = payload
}

func (c *mapPageCache) Invalidate(_ context.Context) {
	c.pages = make(map[string][]byte)
}

func TestListingService_Plan_CacheRoundTrip(t *testing.T) {
	testDB, _, owner := setupListingTest(t)
	defer db.CleanupTestDB(testDB)

	cache := newMapPageCache()
	svc := NewListingService(repository.NewTagRepository(testDB), cache, 12)

	seedTag(t, testDB, owner, "HOLD", nil, time.Now())

	page, err := svc.PlanParams(context.Background(), ListingParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Len(t, cache.pages, 1)

	// A new tag is invisible until the cache is invalidated
	seedTag(t, testDB, owner, "MORE", nil, time.Now())

	stale, err := svc.PlanParams(context.Background(), ListingParams{})
	require.NoError(t, err)
	assert.Len(t, stale.Items, 1)

	svc.Invalidate(context.Background())

	fresh, err := svc.PlanParams(context.Background(), ListingParams{})
	require.NoError(t, err)
	assert.Len(t, fresh.Items, 2)
	assert.Equal(t, int64(2), fresh.TotalMatches)
}
