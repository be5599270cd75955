package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-bff/internal/mapper"
	"storefront-bff/internal/models"
	"storefront-bff/internal/query"
	"storefront-bff/internal/repository"
)

// CatalogReader is the read side of the catalog.
type CatalogReader interface {
	LatestProducts(ctx context.Context, p query.Params) (*repository.ProductPage, error)
	SearchProducts(ctx context.Context, p query.Params) (*repository.ProductPage, error)
	ExportProducts(ctx context.Context, p query.Params) ([]mapper.FlatProduct, error)
	RelatedProducts(ctx context.Context, productName string) ([]mapper.RelatedProduct, error)
	Manufacturers(ctx context.Context) ([]mapper.Manufacturer, error)
	CategoriesWithProducts(ctx context.Context) ([]mapper.Category, error)
	Product(ctx context.Context, id string) (map[string]interface{}, error)
}

type CatalogHandler struct {
	catalog CatalogReader
	logger  *logrus.Entry
}

func NewCatalogHandler(catalog CatalogReader, logger *logrus.Entry) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.WithField("component", "catalog-handler"),
	}
}

// LatestProducts returns a page of the product listing
// @Summary Latest products
// @Description Page through main products in stock, newest first by default. Each product carries its resolved EAN.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.ProductListRequest false "Paging and sorting"
// @Success 200 {object} models.ProductListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /latest-products [post]
func (h *CatalogHandler) LatestProducts(c *gin.Context) {
	const logMsg = "failed to fetch product data from endpoint /latest-products"

	params, err := h.listParams(c, query.ListDefaults)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	page, err := h.catalog.LatestProducts(c.Request.Context(), params)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:       true,
		Log:           "successfully fetched initial product data from endpoint /latest-products",
		Products:      page.Products,
		TotalProducts: page.TotalProducts,
	})
}

// SearchProducts runs a free-text product search
// @Summary Search products
// @Description Search products by name. The search replaces the listing filters; sorting defaults to name ascending.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.ProductListRequest true "Search term, paging and sorting"
// @Success 200 {object} models.ProductListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /search-products [post]
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	const logMsg = "failed to fetch search results from endpoint /search-products"

	params, err := h.listParams(c, query.SearchDefaults)
	if err == nil && params.SearchTerm == "" {
		err = models.NewInvalidInput("searchTerm", "searchTerm is required")
	}
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	page, err := h.catalog.SearchProducts(c.Request.Context(), params)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:       true,
		Log:           "successfully fetched search-terms from api endpoint search-products",
		Products:      page.Products,
		TotalProducts: page.TotalProducts,
	})
}

// RelatedProducts lists products sharing a name prefix
// @Summary Related products
// @Description Main products whose name starts with the first comma-separated part of productName.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.RelatedProductsRequest true "Product name"
// @Success 200 {object} models.RelatedProductsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /related-products [post]
func (h *CatalogHandler) RelatedProducts(c *gin.Context) {
	const logMsg = "failed to fetch related products from api endpoint relatedproducts"

	var req models.RelatedProductsRequest
	err := bindOptionalJSON(c, &req)
	if err == nil && strings.TrimSpace(req.ProductName) == "" {
		err = models.NewInvalidInput("productName", "Product name is required")
	}
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	related, err := h.catalog.RelatedProducts(c.Request.Context(), req.ProductName)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	c.JSON(http.StatusOK, models.RelatedProductsResponse{
		Success:         true,
		Log:             "successfully fetched related products from api endpoint relatedproducts",
		RelatedProducts: related,
	})
}

// ProductManufacturers lists manufacturers with a logo
// @Summary Product manufacturers
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.ManufacturerListResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /product-manufacturers [post]
func (h *CatalogHandler) ProductManufacturers(c *gin.Context) {
	manufacturers, err := h.catalog.Manufacturers(c.Request.Context())
	if err != nil {
		respondReadError(c, h.logger, "failed to fetch manufacturers from endpoint /product-manufacturers", err)
		return
	}

	c.JSON(http.StatusOK, models.ManufacturerListResponse{
		Success:       true,
		Log:           "successfully fetched manufacturers from endpoint /product-manufacturers",
		Manufacturers: manufacturers,
	})
}

// CategoriesWithProducts lists active categories that contain products
// @Summary Categories with products
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.CategoryListResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /categories-with-products [post]
func (h *CatalogHandler) CategoriesWithProducts(c *gin.Context) {
	categories, err := h.catalog.CategoriesWithProducts(c.Request.Context())
	if err != nil {
		respondReadError(c, h.logger, "failed to fetch categories from api endpoint categories", err)
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success:    true,
		Log:        "successfully fetched categories from api endpoint categories",
		Categories: categories,
	})
}

// GetProduct returns one product with its description as HTML and block document
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	const logMsg = "failed to fetch product data from endpoint /products/:id"

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondReadError(c, h.logger, logMsg, models.NewInvalidInput("id", "product id is required"))
		return
	}

	product, err := h.catalog.Product(c.Request.Context(), id)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Log:     "successfully fetched product data from endpoint /products/:id",
		Product: product,
	})
}

func (h *CatalogHandler) listParams(c *gin.Context, defaults query.Defaults) (query.Params, error) {
	var req models.ProductListRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return query.Params{}, err
	}
	return query.ParseParams(req, defaults)
}
