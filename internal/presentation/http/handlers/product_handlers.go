package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/spreadsheet"
	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds an uploaded spreadsheet.
const maxImportBytes = 8 << 20

// ProductHandlers contains all product-related HTTP handlers
type ProductHandlers struct {
	catalogService *services.CatalogService
	importService  *services.ImportService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewProductHandlers creates product handlers with injected dependencies
func NewProductHandlers(catalogService *services.CatalogService, importService *services.ImportService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ProductHandlers {
	return &ProductHandlers{
		catalogService: catalogService,
		importService:  importService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetProducts returns every product, newest first, using cache-first pattern
func (h *ProductHandlers) GetProducts(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_products_request", "")
	defer marker.Complete()

	products, err := h.catalogService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.Catalog(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetProducts request", "duration", marker.Elapsed(), "count", len(products))
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// PostProduct inserts one product
func (h *ProductHandlers) PostProduct(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_product_request", "")
	defer marker.Complete()

	var draft catalog.ProductDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, marker, err)
		return
	}

	product, err := h.catalogService.Create(c.Request.Context(), draft)
	if err != nil {
		respondError(c, h.logger.Catalog(), marker, err)
		return
	}

	marker.Subject = product.ID
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostProduct request", "duration", marker.Elapsed(), "productId", product.ID)
	c.JSON(http.StatusCreated, product)
}

// PostProductsBulk inserts many products in one transaction
func (h *ProductHandlers) PostProductsBulk(c *gin.Context) {
	marker := h.perfTracker.StartOperation("bulk_create_products_request", "")
	defer marker.Complete()

	var req struct {
		Products []catalog.ProductDraft `json:"products"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, marker, err)
		return
	}

	products, err := h.catalogService.CreateMany(c.Request.Context(), req.Products)
	if err != nil {
		respondError(c, h.logger.Catalog(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostProductsBulk request", "duration", marker.Elapsed(), "count", len(products))
	c.JSON(http.StatusCreated, gin.H{"products": products, "count": len(products)})
}

// PatchProduct writes only the supplied fields
func (h *ProductHandlers) PatchProduct(c *gin.Context) {
	id := c.Param("id")
	marker := h.perfTracker.StartOperation("update_product_request", id)
	defer marker.Complete()

	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, marker, err)
		return
	}

	product, err := h.catalogService.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger.Catalog(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PatchProduct request", "duration", marker.Elapsed(), "productId", id)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	marker := h.perfTracker.StartOperation("delete_product_request", id)
	defer marker.Complete()

	if err := h.catalogService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger.Catalog(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// PostImport accepts a multipart "file" field holding CSV or XLSX.
func (h *ProductHandlers) PostImport(c *gin.Context) {
	marker := h.perfTracker.StartOperation("import_products_request", "")
	defer marker.Complete()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.logger.Import(), marker, apperr.InvalidErr("a spreadsheet file is required", map[string]string{"file": "required"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger.Import(), marker, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	products, err := h.importService.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, h.logger.Import(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostImport request", "duration", marker.Elapsed(), "count", len(products))
	c.JSON(http.StatusCreated, gin.H{"products": products, "count": len(products)})
}

// GetImportTemplate serves the one-row example sheet; format defaults to csv.
func (h *ProductHandlers) GetImportTemplate(c *gin.Context) {
	marker := h.perfTracker.StartOperation("import_template_request", "")
	defer marker.Complete()

	format, err := spreadsheet.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		respondError(c, h.logger.Import(), marker, &apperr.AppError{Kind: apperr.Invalid, PublicMsg: err.Error(), Err: err})
		return
	}

	var buf bytes.Buffer
	if err := h.importService.Template(&buf, format); err != nil {
		respondError(c, h.logger.Import(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="products-template.%s"`, format))
	c.Data(http.StatusOK, spreadsheet.ContentType(format), buf.Bytes())
}
