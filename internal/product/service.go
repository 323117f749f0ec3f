package product

import (
	"context"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/records"
)

const (
	productsCollection   = "products"
	categoriesCollection = "category"

	defaultPerPage = 20
	maxPerPage     = 100

	// product-by-id cache entries
	cacheSize = 256
)

type Service interface {
	List(ctx context.Context, filter Filter, sortBy Sort, page, perPage int) (*ListResult, error)
	Get(ctx context.Context, id string) (*Product, error)
	Brands(ctx context.Context, categoryID string) ([]string, error)
	Categories(ctx context.Context) ([]Category, error)
}

type service struct {
	client *records.Client
	cache  *lru.Cache[string, Product]
}

func NewService(client *records.Client) (Service, error) {
	cache, err := lru.New[string, Product](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("product cache: %w", err)
	}
	return &service{client: client, cache: cache}, nil
}

func (s *service) List(ctx context.Context, filter Filter, sortBy Sort, page, perPage int) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	} else if perPage > maxPerPage {
		perPage = maxPerPage
	}

	result, err := s.client.Collection(productsCollection).GetList(ctx, page, perPage, records.Query{
		Filter: buildFilter(filter),
		Sort:   sortString(sortBy),
	})
	if err != nil {
		log.Error("product list failed", zap.Error(err))
		return nil, err
	}

	items := make([]Product, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, mapProduct(rec))
	}

	log.Debug("product list fetched",
		zap.Int("page", page),
		zap.Int("count", len(items)),
		zap.Int("totalItems", result.TotalItems),
	)

	return &ListResult{
		Items:      items,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	if p, ok := s.cache.Get(id); ok {
		return &p, nil
	}

	rec, err := s.client.Collection(productsCollection).GetOne(ctx, id, records.Query{})
	if err != nil {
		return nil, err
	}

	p := mapProduct(rec)
	s.cache.Add(id, p)
	return &p, nil
}

// Brands lists the distinct brands of a category, sorted. An empty
// categoryID means catalog-wide.
func (s *service) Brands(ctx context.Context, categoryID string) ([]string, error) {
	var filter string
	if categoryID != "" {
		filter = records.Eq("category_id", categoryID)
	}

	recs, err := s.client.Collection(productsCollection).GetFullList(ctx, records.Query{Filter: filter})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	brands := make([]string, 0)
	for _, rec := range recs {
		brand := rec.GetString("brand")
		if brand == "" {
			continue
		}
		if _, ok := seen[brand]; ok {
			continue
		}
		seen[brand] = struct{}{}
		brands = append(brands, brand)
	}

	sort.Strings(brands)
	return brands, nil
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	recs, err := s.client.Collection(categoriesCollection).GetFullList(ctx, records.Query{
		Filter: "children:length > 1",
		Expand: "children",
	})
	if err != nil {
		return nil, err
	}

	cats := make([]Category, 0, len(recs))
	for _, rec := range recs {
		cats = append(cats, mapCategory(rec))
	}
	return cats, nil
}

func buildFilter(f Filter) string {
	parts := make([]string, 0, 8)

	if f.CategoryID != "" {
		parts = append(parts, records.Eq("category_id", f.CategoryID))
	}
	if f.SubcategoryID != "" {
		parts = append(parts, records.Eq("subcategory_id", f.SubcategoryID))
	}
	if f.MinPrice != nil {
		parts = append(parts, records.Gte("price", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		parts = append(parts, records.Lte("price", *f.MaxPrice))
	}
	if len(f.Brands) > 0 {
		brandParts := make([]string, 0, len(f.Brands))
		for _, b := range f.Brands {
			brandParts = append(brandParts, records.Eq("brand", b))
		}
		parts = append(parts, records.Group(records.Or(brandParts...)))
	}
	if f.InStock != nil {
		parts = append(parts, records.EqBool("inStock", *f.InStock))
	}
	if f.IsNew != nil {
		parts = append(parts, records.EqBool("isNew", *f.IsNew))
	}
	if f.IsHot != nil {
		parts = append(parts, records.EqBool("isHot", *f.IsHot))
	}
	if f.Search != "" {
		parts = append(parts, records.Group(records.Or(
			records.Contains("name", f.Search),
			records.Contains("name_ja", f.Search),
		)))
	}

	return records.And(parts...)
}

func sortString(s Sort) string {
	field := s.Field
	switch field {
	case "price", "rating", "reviews", "created":
	case "":
		// Newest first when the caller does not care.
		return "-created"
	default:
		field = "created"
	}

	if s.Desc {
		return "-" + field
	}
	return field
}
