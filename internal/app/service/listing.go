package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	apperrors "github.com/tagcord/tagcord-backend/internal/errors"
	"github.com/tagcord/tagcord-backend/pkg/logger"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

var (
	// ErrInvalidQuery means the raw query parameters could not be normalized
	// into a descriptor.
	ErrInvalidQuery = errors.New("invalid listing query")

	// ErrStoreUnavailable means the tag store could not be reached. Callers
	// surface this as a retryable degraded state, never a crash.
	ErrStoreUnavailable = errors.New("tag store unavailable")
)

// ListingParams is the raw, possibly malformed query input as it arrives
// from a request.
type ListingParams struct {
	Text       string
	Categories []string
	Sort       string
	Page       int
	PageSize   int
}

// ListingDescriptor is the canonical form of a listing query. Two requests
// that normalize to equal descriptors are the same logical request: the
// descriptor doubles as the cache identity (see CacheKey).
type ListingDescriptor struct {
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
	Sort       string   `json:"sort"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}

// NormalizeListing validates raw parameters into a canonical descriptor.
// Pure transform: trims text, drops categories outside the vocabulary,
// dedupes and sorts the rest, clamps page to >= 1, defaults the sort to
// newest. A non-positive page size is the one input that cannot be repaired.
func NormalizeListing(params ListingParams) (ListingDescriptor, error) {
	if params.PageSize <= 0 {
		return ListingDescriptor{}, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidQuery, params.PageSize)
	}

	text := strings.TrimSpace(params.Text)

	seen := make(map[string]bool)
	categories := make([]string, 0, len(params.Categories))
	for _, category := range params.Categories {
		category = strings.TrimSpace(category)
		if !model.IsValidCategory(category) || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	sort.Strings(categories)

	sortOrder := SortNewest
	if params.Sort == SortOldest {
		sortOrder = SortOldest
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	return ListingDescriptor{
		Text:       text,
		Categories: categories,
		Sort:       sortOrder,
		Offset:     (page - 1) * params.PageSize,
		Limit:      params.PageSize,
	}, nil
}

// CacheKey derives the stable identity of the descriptor. Categories are
// already sorted by normalization, so equal queries always produce equal keys.
func (d ListingDescriptor) CacheKey() string {
	return strings.Join([]string{
		d.Text,
		strings.Join(d.Categories, ","),
		d.Sort,
		strconv.Itoa(d.Offset),
		strconv.Itoa(d.Limit),
	}, "|")
}

// ListingPage is one planned page of results. TotalMatches counts every
// record matching the filters before pagination, so callers can compute the
// page count.
type ListingPage struct {
	Items        []model.Tag `json:"items"`
	TotalMatches int64       `json:"totalMatches"`
}

// PageCache stores serialized pages keyed by descriptor identity. A nil
// cache is valid and means every plan hits the store.
type PageCache interface {
	GetPage(ctx context.Context, key string) ([]byte, bool)
	SetPage(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context)
}

// ListingService plans listing queries against the tag store.
type ListingService struct {
	tagRepo  repository.TagRepository
	cache    PageCache
	pageSize int
}

func NewListingService(tagRepo repository.TagRepository, cache PageCache, pageSize int) *ListingService {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &ListingService{
		tagRepo:  tagRepo,
		cache:    cache,
		pageSize: pageSize,
	}
}

// PageSize returns the fixed page size listing surfaces use.
func (s *ListingService) PageSize() int {
	return s.pageSize
}

// Plan executes exactly one fetch for the descriptor. The result is
// deterministic for a fixed descriptor and store state; an out-of-range page
// returns empty items with the correct total, not an error.
func (s *ListingService) Plan(ctx context.Context, descriptor ListingDescriptor) (*ListingPage, error) {
	if cached, ok := s.cachedPage(ctx, descriptor); ok {
		return cached, nil
	}

	tags, total, err := s.tagRepo.FindWithFilter(repository.TagFilter{
		Text:       descriptor.Text,
		Categories: descriptor.Categories,
		SortOldest: descriptor.Sort == SortOldest,
		Limit:      descriptor.Limit,
		Offset:     descriptor.Offset,
	})
	if err != nil {
		if apperrors.IsUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil, err
	}

	if tags == nil {
		tags = []model.Tag{}
	}
	page := &ListingPage{Items: tags, TotalMatches: total}

	s.storePage(ctx, descriptor, page)
	return page, nil
}

// PlanParams normalizes raw parameters and plans the result in one call.
func (s *ListingService) PlanParams(ctx context.Context, params ListingParams) (*ListingPage, error) {
	if params.PageSize == 0 {
		params.PageSize = s.pageSize
	}
	descriptor, err := NormalizeListing(params)
	if err != nil {
		return nil, err
	}
	return s.Plan(ctx, descriptor)
}

// Invalidate drops every cached page. Called after any tag mutation so the
// next plan for any descriptor reads the store again.
func (s *ListingService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
}

func (s *ListingService) cachedPage(ctx context.Context, descriptor ListingDescriptor) (*ListingPage, bool) {
	if s.cache == nil {
		return nil, false
	}

	payload, ok := s.cache.GetPage(ctx, descriptor.CacheKey())
	if !ok {
		return nil, false
	}

	var page ListingPage
	if err := json.Unmarshal(payload, &page); err != nil {
		logger.Warn("Discarding malformed cached listing page", map[string]interface{}{
			"key": descriptor.CacheKey(),
		})
		return nil, false
	}
	return &page, true
}

func (s *ListingService) storePage(ctx context.Context, descriptor ListingDescriptor, page *ListingPage) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	s.cache.SetPage(ctx, descriptor.CacheKey(), payload)
}
