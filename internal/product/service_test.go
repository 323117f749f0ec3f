package product

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kkmall-be/internal/records"
)

// catalogServer serves canned list/one responses and remembers the
// query of the last list request.
type catalogServer struct {
	lastList  url.Values
	products  map[string]map[string]any
	listItems []map[string]any
	hits      int
}

func newCatalogServer() *catalogServer {
	return &catalogServer{products: make(map[string]map[string]any)}
}

func (c *catalogServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.hits++

		if r.URL.Path == "/api/collections/products/records" {
			c.lastList = r.URL.Query()
			json.NewEncoder(w).Encode(map[string]any{
				"page": 1, "perPage": len(c.listItems),
				"totalItems": len(c.listItems), "totalPages": 1,
				"items": c.listItems,
			})
			return
		}

		if r.URL.Path == "/api/collections/category/records" {
			c.lastList = r.URL.Query()
			json.NewEncoder(w).Encode(map[string]any{
				"page": 1, "perPage": len(c.listItems),
				"totalItems": len(c.listItems), "totalPages": 1,
				"items": c.listItems,
			})
			return
		}

		// GetOne: /api/collections/products/records/{id}
		const prefix = "/api/collections/products/records/"
		if len(r.URL.Path) > len(prefix) && r.URL.Path[:len(prefix)] == prefix {
			id := r.URL.Path[len(prefix):]
			p, ok := c.products[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"message": "not found"})
				return
			}
			json.NewEncoder(w).Encode(p)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	})
}

func newTestService(t *testing.T) (Service, *catalogServer) {
	t.Helper()

	cs := newCatalogServer()
	srv := httptest.NewServer(cs.handler())
	t.Cleanup(srv.Close)

	svc, err := NewService(records.NewClient(srv.URL))
	require.NoError(t, err)
	return svc, cs
}

func float64Ptr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool          { return &v }

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"empty", Filter{}, ""},
		{"category only", Filter{CategoryID: "cat1"}, `category_id = "cat1"`},
		{
			"price range",
			Filter{MinPrice: float64Ptr(1000), MaxPrice: float64Ptr(5000)},
			`price >= 1000 && price <= 5000`,
		},
		{
			"brands ORed",
			Filter{Brands: []string{"Sony", "Nintendo"}},
			`(brand = "Sony" || brand = "Nintendo")`,
		},
		{
			"explicit false still filters",
			Filter{InStock: boolPtr(false)},
			`inStock = false`,
		},
		{
			"search over both names",
			Filter{Search: "カメラ"},
			`(name ~ "カメラ" || name_ja ~ "カメラ")`,
		},
		{
			"combined",
			Filter{CategoryID: "cat1", IsHot: boolPtr(true)},
			`category_id = "cat1" && isHot = true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilter(tt.filter))
		})
	}
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "-created", sortString(Sort{}))
	assert.Equal(t, "price", sortString(Sort{Field: "price"}))
	assert.Equal(t, "-rating", sortString(Sort{Field: "rating", Desc: true}))
	assert.Equal(t, "created", sortString(Sort{Field: "drop table"}))
}

func TestList(t *testing.T) {
	svc, cs := newTestService(t)
	cs.listItems = []map[string]any{
		{
			"id": "p1", "name": "Camera", "name_ja": "カメラ",
			"price": 19800.0, "originalPrice": 24800.0,
			"rating": 4.5, "reviews": 12.0,
			"image": "cam.jpg", "images": []any{"cam.jpg", "cam2.jpg"},
			"isNew": true, "inStock": true, "stock": 3.0,
			"brand": "Sony", "tags": []any{"sale"},
			"category_id": "cat1",
		},
	}

	result, err := svc.List(context.Background(), Filter{CategoryID: "cat1"}, Sort{Field: "price", Desc: true}, 0, 0)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	p := result.Items[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "カメラ", p.NameJA)
	assert.Equal(t, 19800.0, p.Price)
	assert.Equal(t, []string{"cam.jpg", "cam2.jpg"}, p.Images)
	assert.Equal(t, 12, p.Reviews)
	assert.True(t, p.IsNew)

	// Page/perPage got normalized and the filter/sort reached the wire.
	assert.Equal(t, "1", cs.lastList.Get("page"))
	assert.Equal(t, "20", cs.lastList.Get("perPage"))
	assert.Equal(t, `category_id = "cat1"`, cs.lastList.Get("filter"))
	assert.Equal(t, "-price", cs.lastList.Get("sort"))
}

func TestGetCaches(t *testing.T) {
	svc, cs := newTestService(t)
	cs.products["p1"] = map[string]any{"id": "p1", "name": "Camera", "price": 19800.0}

	first, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Camera", first.Name)
	assert.Equal(t, 1, cs.hits)

	second, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, cs.hits, "second lookup should be served from cache")
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, records.ErrNotFound))
}

func TestBrands(t *testing.T) {
	svc, cs := newTestService(t)
	cs.listItems = []map[string]any{
		{"id": "p1", "brand": "Sony"},
		{"id": "p2", "brand": "Nintendo"},
		{"id": "p3", "brand": "Sony"},
		{"id": "p4", "brand": ""},
	}

	brands, err := svc.Brands(context.Background(), "cat1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Nintendo", "Sony"}, brands)
	assert.Equal(t, `category_id = "cat1"`, cs.lastList.Get("filter"))
}

func TestCategories(t *testing.T) {
	svc, cs := newTestService(t)
	cs.listItems = []map[string]any{
		{
			"id": "cat1", "name": "家電", "icon": "tv",
			"expand": map[string]any{
				"children": []any{
					map[string]any{"id": "sub1", "name": "カメラ"},
					map[string]any{"id": "sub2", "name": "オーディオ"},
				},
			},
		},
	}

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)

	require.Len(t, cats, 1)
	assert.Equal(t, "家電", cats[0].Name)
	require.Len(t, cats[0].Children, 2)
	assert.Equal(t, "カメラ", cats[0].Children[0].Name)
	assert.Equal(t, "children:length > 1", cs.lastList.Get("filter"))
	assert.Equal(t, "children", cs.lastList.Get("expand"))
}
