package listings

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/models"
	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"
)

var cacheJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// SearchQuery filters the public listing search. Zero values mean "any".
type SearchQuery struct {
	City         string
	PropertyType string
	GenderPolicy string
	MinPrice     float64
	MaxPrice     float64
	Text         string
	Sort         string
	Limit        int
	Offset       int
}

type SearchResult struct {
	Items  []models.Property `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// Normalize trims input, clamps paging and drops unknown enum values.
func (q *SearchQuery) Normalize() {
	q.City = strings.TrimSpace(q.City)
	q.Text = strings.TrimSpace(q.Text)
	if !models.IsValidPropertyType(q.PropertyType) {
		q.PropertyType = ""
	}
	if !models.IsValidGenderPolicy(q.GenderPolicy) {
		q.GenderPolicy = ""
	}
	if q.MinPrice < 0 {
		q.MinPrice = 0
	}
	if q.MaxPrice < 0 {
		q.MaxPrice = 0
	}
	switch q.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRating:
	default:
		q.Sort = SortNewest
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// CacheKey is stable for equal normalized queries.
func (q *SearchQuery) CacheKey() string {
	v := url.Values{}
	v.Set("city", strings.ToLower(q.City))
	v.Set("type", q.PropertyType)
	v.Set("gender", q.GenderPolicy)
	v.Set("min", strconv.FormatFloat(q.MinPrice, 'f', 2, 64))
	v.Set("max", strconv.FormatFloat(q.MaxPrice, 'f', 2, 64))
	v.Set("q", strings.ToLower(q.Text))
	v.Set("sort", q.Sort)
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	return "search?" + v.Encode()
}

func (q *SearchQuery) apply(db *gorm.DB) *gorm.DB {
	db = db.Where("status = ?", models.PropertyStatusApproved)
	if q.City != "" {
		db = db.Where("LOWER(city) = LOWER(?)", q.City)
	}
	if q.PropertyType != "" {
		db = db.Where("property_type = ?", q.PropertyType)
	}
	if q.GenderPolicy != "" {
		db = db.Where("gender_policy = ?", q.GenderPolicy)
	}
	if q.MinPrice > 0 {
		db = db.Where("price >= ?", q.MinPrice)
	}
	if q.MaxPrice > 0 {
		db = db.Where("price <= ?", q.MaxPrice)
	}
	if q.Text != "" {
		like := "%" + escapeLike(q.Text) + "%"
		db = db.Where("(title ILIKE ? OR description ILIKE ? OR address ILIKE ? OR city ILIKE ?)", like, like, like, like)
	}
	return db
}

func (q *SearchQuery) order() string {
	switch q.Sort {
	case SortPriceAsc:
		return "price ASC, created_at DESC"
	case SortPriceDesc:
		return "price DESC, created_at DESC"
	case SortRating:
		return "avg_rating DESC, review_count DESC, created_at DESC"
	}
	return "created_at DESC"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search returns approved listings. Pages are served from the listing cache
// when present; every listing write invalidates it.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q.Normalize()
	key := q.CacheKey()

	var gen cache.Generation
	if s.cache != nil {
		gen = s.cache.Generation(ctx)
		if data, ok := s.cache.Get(ctx, key); ok {
			var cached SearchResult
			if err := cacheJSON.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
			slog.Warn("discarding undecodable search cache entry", "key", key)
		}
	}

	result := SearchResult{Limit: q.Limit, Offset: q.Offset}
	if err := q.apply(s.db.Model(&models.Property{})).Count(&result.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	err := q.apply(s.db).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order(q.order()).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&result.Items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	if result.Items == nil {
		result.Items = []models.Property{}
	}
	s.withCovers(result.Items)

	if s.cache != nil {
		if data, err := cacheJSON.Marshal(&result); err == nil {
			// A write during the query leaves this page stale; SetAt drops it.
			s.cache.SetAt(ctx, gen, key, data)
		}
	}
	return &result, nil
}
