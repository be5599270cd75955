package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront-bff/internal/ean"
	"storefront-bff/internal/jsonapi"
	"storefront-bff/internal/mapper"
	"storefront-bff/internal/query"
)

// Cache TTL constants
const (
	DefaultProductListCacheTTL = 5 * time.Minute
	ManufacturerCacheTTL       = 30 * time.Minute // Manufacturers rarely change
	CategoryCacheTTL           = 10 * time.Minute

	productListKeyPattern = "products:*"
	manufacturersKey      = "manufacturers"
	categoriesKey         = "categories:with-products"
	scanBatchSize         = 500
)

// Upstream is the part of the shop API the catalog reads from and writes to.
type Upstream interface {
	Search(ctx context.Context, entity string, criteria query.Criteria) (*jsonapi.Document, error)
	GetProduct(ctx context.Context, id string) (map[string]interface{}, error)
	UpdateProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error)
	RemoveProductCategory(ctx context.Context, productID, categoryID string) error
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products      []mapper.Product `json:"products"`
	TotalProducts int              `json:"totalProducts"`
}

// CatalogOptions configures queries and caching.
type CatalogOptions struct {
	ListProfile    query.Profile
	TotalCountMode query.TotalCountMode
	CacheEnabled   bool
	ListCacheTTL   time.Duration
}

// CatalogRepository reads the catalog from the shop API, caching listings
// in Redis.
type CatalogRepository struct {
	upstream Upstream
	redis    *redis.Client
	cache    *cache.CacheLayer
	builder  *query.Builder
	profile  query.Profile
	listTTL  time.Duration
	logger   *logrus.Entry
}

func NewCatalogRepository(upstream Upstream, redisClient *redis.Client, opts CatalogOptions, logger *logrus.Entry) *CatalogRepository {
	if opts.ListProfile.Name == "" {
		opts.ListProfile = query.CatalogProfile()
	}
	if opts.ListCacheTTL <= 0 {
		opts.ListCacheTTL = DefaultProductListCacheTTL
	}

	repo := &CatalogRepository{
		upstream: upstream,
		builder:  query.NewBuilder(opts.TotalCountMode),
		profile:  opts.ListProfile,
		listTTL:  opts.ListCacheTTL,
		logger:   logger,
	}

	if redisClient != nil && opts.CacheEnabled {
		repo.redis = redisClient
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 1000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ManufacturerCacheTTL,
			KeyPrefix:  "storefront:catalog:",
		})
	}

	return repo
}

// ProductListCacheKey is the Redis key of a latest-products page.
func ProductListCacheKey(p query.Params) string {
	key := fmt.Sprintf("products:%d:%d:%s:%s", p.Page, p.Limit, p.SortField, p.SortDirection)
	if p.ManufacturerID != "" {
		key += ":" + p.ManufacturerID
	}
	return key
}

// LatestProducts returns a page of the configured listing, served from the
// cache when possible.
func (r *CatalogRepository) LatestProducts(ctx context.Context, p query.Params) (*ProductPage, error) {
	p.SearchTerm = ""
	cacheKey := ProductListCacheKey(p)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var page ProductPage
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return &page, nil
			}
		} else if err != redis.Nil {
			r.logger.WithError(err).WithField("key", cacheKey).Warn("Product list cache read failed")
		}
	}

	page, err := r.productPage(ctx, p)
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(page)
		if err == nil {
			if err := r.redis.Set(ctx, cacheKey, data, r.listTTL).Err(); err != nil {
				r.logger.WithError(err).WithField("key", cacheKey).Warn("Product list cache write failed")
			}
		}
	}

	return page, nil
}

// SearchProducts runs a free-text search. Results are not cached.
func (r *CatalogRepository) SearchProducts(ctx context.Context, p query.Params) (*ProductPage, error) {
	return r.productPage(ctx, p)
}

// ExportProducts returns the listing page flattened for spreadsheets.
func (r *CatalogRepository) ExportProducts(ctx context.Context, p query.Params) ([]mapper.FlatProduct, error) {
	doc, err := r.upstream.Search(ctx, "product", r.builder.Products(r.profile, p))
	if err != nil {
		return nil, err
	}
	return mapper.MapFlatProducts(doc.Data), nil
}

func (r *CatalogRepository) productPage(ctx context.Context, p query.Params) (*ProductPage, error) {
	criteria := ean.AppendAssociations(r.builder.Products(r.profile, p))

	doc, err := r.upstream.Search(ctx, "product", criteria)
	if err != nil {
		return nil, err
	}

	enhanced, _ := ean.EnhanceProducts(*doc)
	products := make([]mapper.Product, 0, len(enhanced))
	for _, res := range enhanced {
		products = append(products, mapper.MapEnrichedProduct(res))
	}

	return &ProductPage{Products: products, TotalProducts: doc.Meta.Total}, nil
}

// RelatedProducts lists main products sharing the name prefix.
func (r *CatalogRepository) RelatedProducts(ctx context.Context, productName string) ([]mapper.RelatedProduct, error) {
	doc, err := r.upstream.Search(ctx, "product", r.builder.RelatedProducts(productName))
	if err != nil {
		return nil, err
	}
	return mapper.MapRelatedProducts(doc.Data), nil
}

// Manufacturers lists manufacturers that have products and a logo.
func (r *CatalogRepository) Manufacturers(ctx context.Context) ([]mapper.Manufacturer, error) {
	return cachedList(ctx, r, manufacturersKey, ManufacturerCacheTTL, func() ([]mapper.Manufacturer, error) {
		doc, err := r.upstream.Search(ctx, "product-manufacturer", r.builder.Manufacturers())
		if err != nil {
			return nil, err
		}
		return mapper.MapManufacturersWithMedia(doc.Data), nil
	})
}

// CategoriesWithProducts lists active categories that contain products.
func (r *CatalogRepository) CategoriesWithProducts(ctx context.Context) ([]mapper.Category, error) {
	return cachedList(ctx, r, categoriesKey, CategoryCacheTTL, func() ([]mapper.Category, error) {
		doc, err := r.upstream.Search(ctx, "category", r.builder.CategoriesWithProducts())
		if err != nil {
			return nil, err
		}
		return mapper.MapCategories(doc.Data), nil
	})
}

// cachedList serves key from the cache layer. Cache failures are logged and
// the list is loaded from upstream instead; upstream errors are returned.
func cachedList[T any](ctx context.Context, r *CatalogRepository, key string, ttl time.Duration, load func() ([]T, error)) ([]T, error) {
	if r.cache == nil {
		return load()
	}

	var (
		loaded  []T
		loadErr error
		called  bool
	)
	var out []T
	err := r.cache.GetOrSetJSON(ctx, key, &out, ttl, func() (any, error) {
		called = true
		loaded, loadErr = load()
		if loadErr != nil {
			return nil, loadErr
		}
		return loaded, nil
	})
	if err == nil {
		return out, nil
	}
	if loadErr != nil {
		return nil, loadErr
	}

	r.logger.WithError(err).WithField("key", key).Warn("Cache unavailable, loading from upstream")
	if called {
		return loaded, nil
	}
	return load()
}

// Product returns a single product with its description also available as
// a block document.
func (r *CatalogRepository) Product(ctx context.Context, id string) (map[string]interface{}, error) {
	raw, err := r.upstream.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.AttachDescription(raw), nil
}

// UpdateProduct patches a product and drops cached listings.
func (r *CatalogRepository) UpdateProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error) {
	data, err := r.upstream.UpdateProduct(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	r.InvalidateProducts(ctx)
	return data, nil
}

// PatchProduct patches a product without touching the caches. Bulk
// updates invalidate once at the end.
func (r *CatalogRepository) PatchProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error) {
	return r.upstream.UpdateProduct(ctx, id, payload)
}

func (r *CatalogRepository) RemoveProductCategory(ctx context.Context, productID, categoryID string) error {
	return r.upstream.RemoveProductCategory(ctx, productID, categoryID)
}

// InvalidateProducts deletes every cached product list page and the
// category listing, whose product counts may have changed. Failures are
// logged; stale entries expire with their TTL.
func (r *CatalogRepository) InvalidateProducts(ctx context.Context) {
	if r.redis == nil {
		return
	}

	deleted := 0
	iter := r.redis.Scan(ctx, 0, productListKeyPattern, scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.redis.Del(ctx, batch...).Err(); err != nil {
			r.logger.WithError(err).Warn("Failed to delete cached product lists")
		} else {
			deleted += len(batch)
		}
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		r.logger.WithError(err).Warn("Failed to scan cached product lists")
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, categoriesKey); err != nil {
			r.logger.WithError(err).Warn("Failed to invalidate category cache")
		}
	}

	r.logger.WithField("deleted", deleted).Debug("Invalidated product list cache")
}

// Ping checks the cache connection. Without a cache there is nothing to check.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}
	return r.redis.Ping(ctx).Err()
}
