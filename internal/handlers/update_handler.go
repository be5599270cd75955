package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront-bff/internal/events"
	"storefront-bff/internal/models"
)

// CatalogWriter is the write side of the catalog.
type CatalogWriter interface {
	UpdateProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error)
	PatchProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error)
	RemoveProductCategory(ctx context.Context, productID, categoryID string) error
	InvalidateProducts(ctx context.Context)
}

// EventPublisher announces product edits.
type EventPublisher interface {
	PublishProductUpdated(ctx context.Context, change events.ProductChange) error
}

// ActorHeader carries the editor's user id when the caller forwards it.
const ActorHeader = "X-User-ID"

type UpdateHandler struct {
	catalog     CatalogWriter
	publisher   EventPublisher
	opts        PayloadOptions
	concurrency int
	logger      *logrus.Entry
}

// NewUpdateHandler creates the update handler. publisher may be nil.
func NewUpdateHandler(catalog CatalogWriter, publisher EventPublisher, opts PayloadOptions, concurrency int, logger *logrus.Entry) *UpdateHandler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &UpdateHandler{
		catalog:     catalog,
		publisher:   publisher,
		opts:        opts,
		concurrency: concurrency,
		logger:      logger.WithField("component", "update-handler"),
	}
}

// UpdateProduct saves the editor form of a product
// @Summary Update product
// @Description Converts the description to HTML, replaces the category assignment and writes gender into the custom fields.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.ProductForm true "Product form data"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.WriteErrorResponse
// @Security ApiKeyAuth
// @Router /update-product [post]
func (h *UpdateHandler) UpdateProduct(c *gin.Context) {
	h.update(c, true)
}

// UpdateMainProduct saves the editor form of a main product without touching categories
// @Summary Update main product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.ProductForm true "Product form data"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.WriteErrorResponse
// @Security ApiKeyAuth
// @Router /update-main-product [post]
func (h *UpdateHandler) UpdateMainProduct(c *gin.Context) {
	h.update(c, false)
}

func (h *UpdateHandler) update(c *gin.Context, withCategories bool) {
	var form models.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondWriteError(c, h.logger, models.NewInvalidInput("", "invalid request body: %v", err))
		return
	}
	form.ID = strings.TrimSpace(form.ID)
	if form.ID == "" {
		respondWriteError(c, h.logger, models.NewInvalidInput("id", "product id is required"))
		return
	}

	payload, err := buildPayload(form, withCategories, h.opts)
	if err != nil {
		respondWriteError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	if payload.detachUnassigned {
		if err := h.catalog.RemoveProductCategory(ctx, form.ID, h.opts.UnassignedCategoryID); err != nil {
			respondWriteError(c, h.logger, err)
			return
		}
		h.logger.WithField("product_id", form.ID).Info("Removed placeholder category")
	}

	data, err := h.catalog.UpdateProduct(ctx, form.ID, payload.fields)
	if err != nil {
		respondWriteError(c, h.logger, err)
		return
	}

	label := labelFromData(data)
	if form.Name != "" {
		label.name = form.Name
	}
	if form.ProductNumber != "" {
		label.number = form.ProductNumber
	}
	h.publish(c, form.ID, payload, label)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// UpdateRelatedProducts applies one form to several products
// @Summary Update related products
// @Description Patches every listed product with the shared form data. id and categoryIds are ignored. Responds 200 when all succeed, 207 when some fail and 502 when all fail.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.UpdateRelatedProductsRequest true "Product ids and shared form data"
// @Success 200 {object} models.BulkUpdateResponse
// @Success 207 {object} models.BulkUpdateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.BulkUpdateResponse
// @Security ApiKeyAuth
// @Router /update-related-products [post]
func (h *UpdateHandler) UpdateRelatedProducts(c *gin.Context) {
	var req models.UpdateRelatedProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWriteError(c, h.logger, models.NewInvalidInput("", "invalid request body: %v", err))
		return
	}

	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		respondWriteError(c, h.logger, models.NewInvalidInput("ids", "at least one product id is required"))
		return
	}

	form := req.FormData
	form.ID = ""
	form.CategoryIDs = nil
	payload, err := buildPayload(form, false, h.opts)
	if err != nil {
		respondWriteError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	results := make([]models.BulkUpdateResult, len(ids))

	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			data, err := h.catalog.PatchProduct(ctx, id, payload.fields)
			if err != nil {
				h.logger.WithError(err).WithField("product_id", id).Warn("Failed to update related product")
				results[i] = models.BulkUpdateResult{ID: id, Error: err.Error()}
				return nil
			}
			results[i] = models.BulkUpdateResult{ID: id, Success: true, Data: data}
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			h.publish(c, r.ID, payload, labelFromData(r.Data))
		}
	}
	if succeeded > 0 {
		h.catalog.InvalidateProducts(ctx)
	}

	status := http.StatusOK
	switch {
	case succeeded == 0:
		status = http.StatusBadGateway
	case succeeded < len(results):
		status = http.StatusMultiStatus
	}

	h.logger.WithFields(logrus.Fields{
		"total":     len(results),
		"succeeded": succeeded,
	}).Info("Related products updated")

	c.JSON(status, models.BulkUpdateResponse{
		Success: succeeded == len(results),
		Results: results,
	})
}

func (h *UpdateHandler) publish(c *gin.Context, productID string, payload productPayload, label productLabel) {
	if h.publisher == nil {
		return
	}
	change := events.ProductChange{
		ProductID:     productID,
		ProductName:   label.name,
		ProductNumber: label.number,
		ChangedFields: payload.changedFields(),
		NewValue:      payload.eventValue(),
		ActorID:       c.GetHeader(ActorHeader),
		ClientIP:      c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}
	if err := h.publisher.PublishProductUpdated(c.Request.Context(), change); err != nil {
		h.logger.WithError(err).WithField("product_id", productID).Warn("Failed to publish product event")
	}
}

type productLabel struct {
	name   string
	number string
}

// labelFromData reads name and product number from an upstream write
// response. Shopware answers 204 unless asked for the entity, so both are
// often empty.
func labelFromData(data interface{}) productLabel {
	entity, _ := data.(map[string]interface{})
	if inner, ok := entity["data"].(map[string]interface{}); ok {
		entity = inner
	}
	if attrs, ok := entity["attributes"].(map[string]interface{}); ok {
		entity = attrs
	}

	var label productLabel
	if translated, ok := entity["translated"].(map[string]interface{}); ok {
		label.name, _ = translated["name"].(string)
	}
	if label.name == "" {
		label.name, _ = entity["name"].(string)
	}
	label.number, _ = entity["productNumber"].(string)
	return label
}
