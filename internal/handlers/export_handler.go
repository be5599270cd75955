package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"storefront-bff/internal/mapper"
	"storefront-bff/internal/middleware"
	"storefront-bff/internal/models"
	"storefront-bff/internal/query"
)

const exportSheet = "Products"

var exportColumns = []string{
	"id", "productNumber", "name", "stock", "active", "manufacturerId", "updatedAt",
	"gender", "color", "metaTitle", "metaDescription", "keywords", "description",
}

// ExportProducts downloads a listing page as a spreadsheet
// @Summary Export products
// @Description Same paging and sorting as latest-products, returned as an xlsx file with one row per product.
// @Tags Products
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body models.ProductListRequest false "Paging and sorting"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /products/export [post]
func (h *CatalogHandler) ExportProducts(c *gin.Context) {
	const logMsg = "failed to export products from endpoint /products/export"

	params, err := h.listParams(c, query.ListDefaults)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	products, err := h.catalog.ExportProducts(c.Request.Context(), params)
	if err != nil {
		respondReadError(c, h.logger, logMsg, err)
		return
	}

	f, err := buildWorkbook(products)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build export workbook")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Log: logMsg,
			Error: models.Error{
				Code:    models.CodeExportFailed,
				Message: "Failed to build export file",
			},
			RequestID: middleware.GetRequestID(c),
		})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to write export workbook")
	}
}

func buildWorkbook(products []mapper.FlatProduct) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, name)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		width := 20.0
		if name == "description" {
			width = 60
		}
		f.SetColWidth(exportSheet, colName, colName, width)
	}

	for rowIdx, p := range products {
		for colIdx, value := range exportRow(p) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

func exportRow(p mapper.FlatProduct) []interface{} {
	return []interface{}{
		p.ID,
		p.ProductNumber,
		p.Name,
		p.Stock,
		p.Active,
		deref(p.ManufacturerID),
		deref(p.UpdatedAt),
		p.Gender,
		deref(p.Color),
		deref(p.MetaTitle),
		deref(p.MetaDescription),
		deref(p.Keywords),
		p.Description,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
