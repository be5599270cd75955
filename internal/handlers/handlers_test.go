package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"storefront-bff/internal/clients"
	"storefront-bff/internal/events"
	"storefront-bff/internal/mapper"
	"storefront-bff/internal/query"
	"storefront-bff/internal/repository"
)

// MockCatalog is a mock implementation of CatalogReader and CatalogWriter
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) LatestProducts(ctx context.Context, p query.Params) (*repository.ProductPage, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ProductPage), args.Error(1)
}

func (m *MockCatalog) SearchProducts(ctx context.Context, p query.Params) (*repository.ProductPage, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ProductPage), args.Error(1)
}

func (m *MockCatalog) ExportProducts(ctx context.Context, p query.Params) ([]mapper.FlatProduct, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mapper.FlatProduct), args.Error(1)
}

func (m *MockCatalog) RelatedProducts(ctx context.Context, productName string) ([]mapper.RelatedProduct, error) {
	args := m.Called(ctx, productName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mapper.RelatedProduct), args.Error(1)
}

func (m *MockCatalog) Manufacturers(ctx context.Context) ([]mapper.Manufacturer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mapper.Manufacturer), args.Error(1)
}

func (m *MockCatalog) CategoriesWithProducts(ctx context.Context) ([]mapper.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mapper.Category), args.Error(1)
}

func (m *MockCatalog) Product(ctx context.Context, id string) (map[string]interface{}, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockCatalog) UpdateProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error) {
	args := m.Called(ctx, id, payload)
	return args.Get(0), args.Error(1)
}

func (m *MockCatalog) PatchProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error) {
	args := m.Called(ctx, id, payload)
	return args.Get(0), args.Error(1)
}

func (m *MockCatalog) RemoveProductCategory(ctx context.Context, productID, categoryID string) error {
	args := m.Called(ctx, productID, categoryID)
	return args.Error(0)
}

func (m *MockCatalog) InvalidateProducts(ctx context.Context) {
	m.Called(ctx)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductUpdated(ctx context.Context, change events.ProductChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

const unassignedID = "018a0e41a67974a1838844b6e04265bc"

var testPayloadOptions = PayloadOptions{
	GenderCustomField:    "custom_add_product_attributes_gender",
	UnassignedCategoryID: unassignedID,
}

func testLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func setupTestRouter(catalog *MockCatalog, publisher EventPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	reads := NewCatalogHandler(catalog, testLogger())
	writes := NewUpdateHandler(catalog, publisher, testPayloadOptions, 2, testLogger())

	api := router.Group("/api")
	api.POST("/latest-products", reads.LatestProducts)
	api.POST("/search-products", reads.SearchProducts)
	api.POST("/related-products", reads.RelatedProducts)
	api.POST("/product-manufacturers", reads.ProductManufacturers)
	api.POST("/categories-with-products", reads.CategoriesWithProducts)
	api.GET("/products/:id", reads.GetProduct)
	api.POST("/products/export", reads.ExportProducts)
	api.POST("/update-product", writes.UpdateProduct)
	api.POST("/update-main-product", writes.UpdateMainProduct)
	api.POST("/update-related-products", writes.UpdateRelatedProducts)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func strPtr(s string) *string { return &s }

// ===== Read endpoint Tests

func TestLatestProducts_Defaults(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	expected := query.Params{Page: 1, Limit: 10, SortField: "updatedAt", SortDirection: "desc"}
	page := &repository.ProductPage{
		Products:      []mapper.Product{{ID: "p1", Attributes: mapper.ProductAttributes{Name: "Sneaker"}}},
		TotalProducts: 42,
	}
	catalog.On("LatestProducts", mock.Anything, expected).Return(page, nil)

	w := doJSON(router, http.MethodPost, "/api/latest-products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["totalProducts"])
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].(map[string]interface{})["id"])
	catalog.AssertExpectations(t)
}

func TestLatestProducts_StringPaging(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	expected := query.Params{Page: 3, Limit: 25, SortField: "name", SortDirection: "asc", ManufacturerID: "m1"}
	catalog.On("LatestProducts", mock.Anything, expected).
		Return(&repository.ProductPage{Products: []mapper.Product{}}, nil)

	w := doJSON(router, http.MethodPost, "/api/latest-products", map[string]interface{}{
		"page": "3", "limit": 25, "sortField": "name", "sortDirection": "ASC", "manufacturerId": "m1",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	catalog.AssertExpectations(t)
}

func TestLatestProducts_InvalidSortField(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/latest-products", map[string]interface{}{"sortField": "price"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_INPUT", errBody["code"])
	assert.Equal(t, "sortField", errBody["field"])
	catalog.AssertNotCalled(t, "LatestProducts", mock.Anything, mock.Anything)
}

func TestLatestProducts_NonNumericLimit(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/latest-products", map[string]interface{}{"limit": "ten"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeBody(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "limit", errBody["field"])
}

func TestLatestProducts_UpstreamError(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	upstream := &clients.UpstreamError{
		Operation:  "search product",
		StatusCode: http.StatusInternalServerError,
		Body:       []byte(`{"errors":[{"detail":"boom"}]}`),
	}
	catalog.On("LatestProducts", mock.Anything, mock.Anything).Return(nil, upstream)

	w := doJSON(router, http.MethodPost, "/api/latest-products", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "failed to fetch product data from endpoint /latest-products", body["log"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "UPSTREAM_ERROR", errBody["code"])
	details := errBody["details"].(map[string]interface{})
	assert.Contains(t, details, "upstream")
}

func TestLatestProducts_TransportErrorIsBadGateway(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("LatestProducts", mock.Anything, mock.Anything).
		Return(nil, &clients.UpstreamError{Operation: "search product", Err: errors.New("connection refused")})

	w := doJSON(router, http.MethodPost, "/api/latest-products", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSearchProducts_DefaultsToNameAscending(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	expected := query.Params{Page: 1, Limit: 10, SortField: "name", SortDirection: "asc", SearchTerm: "boot"}
	catalog.On("SearchProducts", mock.Anything, expected).
		Return(&repository.ProductPage{Products: []mapper.Product{}, TotalProducts: 0}, nil)

	w := doJSON(router, http.MethodPost, "/api/search-products", map[string]interface{}{"searchTerm": "  boot "})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "successfully fetched search-terms from api endpoint search-products", body["log"])
	assert.Equal(t, []interface{}{}, body["products"])
	catalog.AssertExpectations(t)
}

func TestSearchProducts_RequiresSearchTerm(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/search-products", map[string]interface{}{"page": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeBody(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "searchTerm", errBody["field"])
}

func TestRelatedProducts(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	related := []mapper.RelatedProduct{{ID: "r1", Name: "Jacke, blau"}}
	catalog.On("RelatedProducts", mock.Anything, "Jacke, blau").Return(related, nil)

	w := doJSON(router, http.MethodPost, "/api/related-products", map[string]interface{}{"productName": "Jacke, blau"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	items := body["relatedProducts"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].(map[string]interface{})["id"])
}

func TestRelatedProducts_MissingName(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/related-products", map[string]interface{}{"productName": " "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	catalog.AssertNotCalled(t, "RelatedProducts", mock.Anything, mock.Anything)
}

func TestProductManufacturers(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("Manufacturers", mock.Anything).
		Return([]mapper.Manufacturer{{ID: "m1", Name: "Acme", MediaID: strPtr("media-1")}}, nil)

	w := doJSON(router, http.MethodPost, "/api/product-manufacturers", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["manufacturers"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].(map[string]interface{})["name"])
}

func TestCategoriesWithProducts(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("CategoriesWithProducts", mock.Anything).
		Return([]mapper.Category{{ID: "c1", Name: "Schuhe"}}, nil)

	w := doJSON(router, http.MethodPost, "/api/categories-with-products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "c1", "name": "Schuhe"}}, body["categories"])
}

func TestGetProduct(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("Product", mock.Anything, "p1").Return(map[string]interface{}{
		"data": map[string]interface{}{"id": "p1"},
	}, nil)

	w := doJSON(router, http.MethodGet, "/api/products/p1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["product"])
}

func TestGetProduct_NotFound(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("Product", mock.Anything, "missing").
		Return(nil, &clients.UpstreamError{Operation: "get product", StatusCode: http.StatusNotFound})

	w := doJSON(router, http.MethodGet, "/api/products/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	errBody := decodeBody(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

// ===== Export Tests

func TestExportProducts(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	products := []mapper.FlatProduct{{
		ID: "p1",
		ProductAttributes: mapper.ProductAttributes{
			ProductNumber: "SW-1",
			Name:          "Sneaker",
			Stock:         3,
			Gender:        "Unisex",
			MetaTitle:     strPtr("Sneaker kaufen"),
		},
	}}
	catalog.On("ExportProducts", mock.Anything, mock.Anything).Return(products, nil)

	w := doJSON(router, http.MethodPost, "/api/products/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=products-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "p1", rows[1][0])
	assert.Equal(t, "SW-1", rows[1][1])
	assert.Equal(t, "Sneaker", rows[1][2])
	assert.Equal(t, "3", rows[1][3])
	assert.Equal(t, "Unisex", rows[1][7])
	assert.Equal(t, "Sneaker kaufen", rows[1][9])
}

func TestExportProducts_InvalidInput(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/products/export", map[string]interface{}{"sortDirection": "up"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	catalog.AssertNotCalled(t, "ExportProducts", mock.Anything, mock.Anything)
}

// ===== Update endpoint Tests

func TestUpdateProduct(t *testing.T) {
	catalog := new(MockCatalog)
	publisher := new(MockPublisher)
	router := setupTestRouter(catalog, publisher)

	expectedPayload := map[string]interface{}{
		"id":          "p1",
		"description": "<p>Hallo</p>",
		"metaTitle":   "Titel",
		"categories":  []map[string]string{{"id": "c1"}},
		"customFields": map[string]interface{}{
			"custom_add_product_attributes_gender": "Damen",
		},
	}
	catalog.On("RemoveProductCategory", mock.Anything, "p1", unassignedID).Return(nil)
	catalog.On("UpdateProduct", mock.Anything, "p1", expectedPayload).Return(nil, nil)
	publisher.On("PublishProductUpdated", mock.Anything, mock.MatchedBy(func(ch events.ProductChange) bool {
		_, hasDescription := ch.NewValue["description"]
		return ch.ProductID == "p1" && !hasDescription &&
			assert.ObjectsAreEqual([]string{"categories", "customFields", "description", "metaTitle"}, ch.ChangedFields)
	})).Return(nil)

	w := doJSON(router, http.MethodPost, "/api/update-product", map[string]interface{}{
		"id": "p1",
		"description": map[string]interface{}{
			"blocks": []interface{}{
				map[string]interface{}{"type": "paragraph", "data": map[string]interface{}{"text": "Hallo"}},
			},
		},
		"metaTitle":   "Titel",
		"categoryIds": []string{"c1", unassignedID},
		"gender":      "Damen",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
	catalog.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUpdateProduct_StringDescriptionPassesThrough(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("UpdateProduct", mock.Anything, "p1", map[string]interface{}{
		"id":          "p1",
		"description": "<h2>Schon HTML</h2>",
	}).Return(map[string]interface{}{"ok": true}, nil)

	w := doJSON(router, http.MethodPost, "/api/update-product", map[string]interface{}{
		"id":          "p1",
		"description": "<h2>Schon HTML</h2>",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"ok": true}, decodeBody(t, w)["data"])
	catalog.AssertNotCalled(t, "RemoveProductCategory", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateMainProduct_EventCarriesProductLabel(t *testing.T) {
	catalog := new(MockCatalog)
	publisher := new(MockPublisher)
	router := setupTestRouter(catalog, publisher)

	catalog.On("UpdateProduct", mock.Anything, "p1", map[string]interface{}{
		"id":        "p1",
		"metaTitle": "Titel",
	}).Return(nil, nil)

	var published events.ProductChange
	publisher.On("PublishProductUpdated", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).(events.ProductChange) }).
		Return(nil).Once()

	w := doJSON(router, http.MethodPost, "/api/update-main-product", map[string]interface{}{
		"id":            "p1",
		"metaTitle":     "Titel",
		"name":          "Sneaker",
		"productNumber": "SW-1",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sneaker", published.ProductName)
	assert.Equal(t, "SW-1", published.ProductNumber)
	assert.Equal(t, []string{"metaTitle"}, published.ChangedFields)
	catalog.AssertExpectations(t)
}

func TestLabelFromData(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want productLabel
	}{
		{"no content", nil, productLabel{}},
		{"plain entity", map[string]interface{}{"name": "Shirt", "productNumber": "SW-2"}, productLabel{"Shirt", "SW-2"}},
		{
			"translated name wins",
			map[string]interface{}{"data": map[string]interface{}{
				"name":          "Shirt",
				"translated":    map[string]interface{}{"name": "Hemd"},
				"productNumber": "SW-2",
			}},
			productLabel{"Hemd", "SW-2"},
		},
		{
			"json api envelope",
			map[string]interface{}{"data": map[string]interface{}{
				"id":         "p1",
				"attributes": map[string]interface{}{"name": "Shirt", "productNumber": "SW-3"},
			}},
			productLabel{"Shirt", "SW-3"},
		},
		{"unexpected body", "accepted", productLabel{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labelFromData(tt.data))
		})
	}
}

func TestUpdateProduct_MissingID(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/update-product", map[string]interface{}{"metaTitle": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	catalog.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProduct_InvalidDescription(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/update-product", map[string]interface{}{"id": "p1", "description": 42})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeBody(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "description", errBody["field"])
}

func TestUpdateProduct_UpstreamError(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("UpdateProduct", mock.Anything, "p1", mock.Anything).Return(nil, &clients.UpstreamError{
		Operation:  "update product",
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"errors":[{"code":"FRAMEWORK__WRITE_CONSTRAINT_VIOLATION"}]}`),
	})

	w := doJSON(router, http.MethodPost, "/api/update-product", map[string]interface{}{"id": "p1", "keywords": "a,b"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "update product: upstream responded with status 400", body["message"])
	assert.Contains(t, body["error"], "errors")
}

func TestUpdateMainProduct_IgnoresCategories(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("UpdateProduct", mock.Anything, "p1", map[string]interface{}{
		"id":       "p1",
		"keywords": "leder",
	}).Return(nil, nil)

	w := doJSON(router, http.MethodPost, "/api/update-main-product", map[string]interface{}{
		"id":          "p1",
		"keywords":    "leder",
		"categoryIds": []string{unassignedID},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	catalog.AssertNotCalled(t, "RemoveProductCategory", mock.Anything, mock.Anything, mock.Anything)
	catalog.AssertExpectations(t)
}

// ===== Bulk update Tests

func TestUpdateRelatedProducts_AllSucceed(t *testing.T) {
	catalog := new(MockCatalog)
	publisher := new(MockPublisher)
	router := setupTestRouter(catalog, publisher)

	shared := map[string]interface{}{"metaDescription": "geteilt"}
	catalog.On("PatchProduct", mock.Anything, "a", shared).Return(nil, nil)
	catalog.On("PatchProduct", mock.Anything, "b", shared).Return(nil, nil)
	catalog.On("InvalidateProducts", mock.Anything).Return().Once()
	publisher.On("PublishProductUpdated", mock.Anything, mock.Anything).Return(nil).Twice()

	w := doJSON(router, http.MethodPost, "/api/update-related-products", map[string]interface{}{
		"ids": []string{"a", "b"},
		"formData": map[string]interface{}{
			"id":              "main",
			"categoryIds":     []string{"c1"},
			"metaDescription": "geteilt",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].(map[string]interface{})["id"])
	assert.Equal(t, "b", results[1].(map[string]interface{})["id"])
	catalog.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUpdateRelatedProducts_PartialFailure(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("PatchProduct", mock.Anything, "a", mock.Anything).Return(nil, nil)
	catalog.On("PatchProduct", mock.Anything, "b", mock.Anything).
		Return(nil, &clients.UpstreamError{Operation: "update product", StatusCode: http.StatusNotFound})
	catalog.On("InvalidateProducts", mock.Anything).Return()

	w := doJSON(router, http.MethodPost, "/api/update-related-products", map[string]interface{}{
		"ids":      []string{"a", "b"},
		"formData": map[string]interface{}{"keywords": "x"},
	})

	assert.Equal(t, http.StatusMultiStatus, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	results := body["results"].([]interface{})
	failed := results[1].(map[string]interface{})
	assert.Equal(t, false, failed["success"])
	assert.Contains(t, failed["error"], "404")
}

func TestUpdateRelatedProducts_AllFail(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	catalog.On("PatchProduct", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &clients.UpstreamError{Operation: "update product", Err: errors.New("timeout")})

	w := doJSON(router, http.MethodPost, "/api/update-related-products", map[string]interface{}{
		"ids":      []string{"a", "b", "c"},
		"formData": map[string]interface{}{"keywords": "x"},
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	catalog.AssertNotCalled(t, "InvalidateProducts", mock.Anything)
}

func TestUpdateRelatedProducts_RequiresIDs(t *testing.T) {
	catalog := new(MockCatalog)
	router := setupTestRouter(catalog, nil)

	w := doJSON(router, http.MethodPost, "/api/update-related-products", map[string]interface{}{
		"ids":      []string{},
		"formData": map[string]interface{}{"keywords": "x"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===== Health Tests

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCircuit struct{ state clients.CircuitState }

func (s stubCircuit) CircuitState() clients.CircuitState { return s.state }

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadinessCheck(stubPinger{}, stubCircuit{state: clients.CircuitClosed}))
	router.GET("/ready-down", ReadinessCheck(stubPinger{err: errors.New("redis down")}, nil))
	router.GET("/ready-open", ReadinessCheck(stubPinger{}, stubCircuit{state: clients.CircuitOpen}))

	w := doJSON(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "storefront-bff", decodeBody(t, w)["service"])

	w = doJSON(router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/ready-down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not ready", decodeBody(t, w)["status"])

	w = doJSON(router, http.MethodGet, "/ready-open", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	checks := decodeBody(t, w)["checks"].(map[string]interface{})
	assert.Equal(t, "circuit open", checks["upstream"])
}
