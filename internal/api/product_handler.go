package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"solarsite/internal/database"
)

var errInvalidID = errors.New("invalid id")

// parseID reads a positive numeric :id path parameter.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// ProductHandler serves the solar product catalog.
type ProductHandler struct {
	db       *gorm.DB
	uploader *uploader
	policy   uploadPolicy
	logger   *slog.Logger
}

// NewProductHandler constructs the handler. maxImageBytes caps the product
// photo upload (5MB in production).
func NewProductHandler(db *gorm.DB, store ObjectStore, clamdAddr string, maxImageBytes int64, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		db:       db,
		uploader: &uploader{store: store, clamdAddr: clamdAddr},
		policy: uploadPolicy{
			MIMEPrefixes: []string{"image/"},
			MaxBytes:     maxImageBytes,
			KeyPrefix:    "products",
		},
		logger: logger,
	}
}

type productForm struct {
	Title          string  `form:"title" binding:"required"`
	Description    string  `form:"description" binding:"required"`
	Category       string  `form:"category" binding:"required,oneof=residential commercial industrial specialized"`
	Features       string  `form:"features" binding:"required"`
	Specifications string  `form:"specifications" binding:"required"`
	PriceRange     string  `form:"priceRange" binding:"required,oneof=$ $$ $$$ $$$$"`
	Rating         float64 `form:"rating" binding:"gte=0,lte=5"`
	Alt            string  `form:"alt" binding:"required"`
}

type productResponse struct {
	ID             uint                    `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Category       string                  `json:"category"`
	Features       []string                `json:"features"`
	Specifications database.Specifications `json:"specifications"`
	PriceRange     string                  `json:"priceRange"`
	Rating         float64                 `json:"rating"`
	Image          string                  `json:"image"`
	Alt            string                  `json:"alt"`
	IsActive       bool                    `json:"isActive"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

type productListResponse struct {
	Products    []productResponse `json:"products"`
	TotalPages  int64             `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Total       int64             `json:"total"`
}

func newProductResponse(p database.Product) productResponse {
	var features []string
	_ = json.Unmarshal(p.Features, &features)
	if features == nil {
		features = []string{}
	}
	return productResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		Features:       features,
		Specifications: p.Specifications,
		PriceRange:     p.PriceRange,
		Rating:         p.Rating,
		Image:          uploadPath(p.ImageKey),
		Alt:            p.Alt,
		IsActive:       p.Lifecycle == database.LifecycleActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// List returns active products, newest first, optionally filtered by
// category; "all" disables the filter.
func (h *ProductHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, 10)

	query := h.db.WithContext(c.Request.Context()).
		Model(&database.Product{}).
		Where("lifecycle = ?", database.LifecycleActive)
	if category := c.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		Internal(c, "failed to count products")
		return
	}

	var products []database.Product
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&products).Error; err != nil {
		Internal(c, "failed to list products")
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, newProductResponse(p))
	}

	c.JSON(http.StatusOK, productListResponse{
		Products:    items,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
		Total:       total,
	})
}

// Get returns one product by id, retired ones included.
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid product id")
		return
	}

	var product database.Product
	if err := h.db.WithContext(c.Request.Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "product not found")
			return
		}
		Internal(c, "failed to query product")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(product))
}

// Create stores a new product with its required image.
func (h *ProductHandler) Create(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, err.Error())
		return
	}

	features, specs, err := parseProductJSON(form)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	objectKey, _, err := h.uploader.receive(c, "image", h.policy)
	if err != nil {
		if errors.Is(err, errNoFile) {
			BadRequest(c, "product image is required")
			return
		}
		BadRequest(c, err.Error())
		return
	}

	product := database.Product{
		Title:          form.Title,
		Description:    form.Description,
		Category:       form.Category,
		Features:       features,
		Specifications: specs,
		PriceRange:     form.PriceRange,
		Rating:         form.Rating,
		ImageKey:       objectKey,
		Alt:            form.Alt,
		Lifecycle:      database.LifecycleActive,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		Internal(c, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, newProductResponse(product))
}

// Update replaces a product's fields. When no new image is attached the
// stored one is kept; a new image replaces the old object.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid product id")
		return
	}

	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, err.Error())
		return
	}

	features, specs, err := parseProductJSON(form)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var product database.Product
	if err := h.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "product not found")
			return
		}
		Internal(c, "failed to query product")
		return
	}

	updates := map[string]any{
		"title":           form.Title,
		"description":     form.Description,
		"category":        form.Category,
		"features":        features,
		"spec_power":      specs.Power,
		"spec_efficiency": specs.Efficiency,
		"spec_dimensions": specs.Dimensions,
		"spec_weight":     specs.Weight,
		"price_range":     form.PriceRange,
		"rating":          form.Rating,
		"alt":             form.Alt,
	}

	objectKey, _, err := h.uploader.receive(c, "image", h.policy)
	switch {
	case err == nil:
		oldKey := product.ImageKey
		updates["image_key"] = objectKey
		if oldKey != "" {
			if err := h.uploader.store.DeleteObject(ctx, oldKey); err != nil {
				h.logger.Error("delete replaced product image", slog.String("objectKey", oldKey), slog.Any("error", err))
			}
		}
	case errors.Is(err, errNoFile):
		// keep the stored image
	default:
		BadRequest(c, err.Error())
		return
	}

	if err := h.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
		Internal(c, "failed to update product")
		return
	}
	if err := h.db.WithContext(ctx).First(&product, product.ID).Error; err != nil {
		Internal(c, "failed to reload product")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(product))
}

// Delete retires a product. The record and its image stay around and the
// product remains fetchable by id.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid product id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Product{}).
		Where("id = ?", id).
		Update("lifecycle", database.LifecycleRetired)
	if result.Error != nil {
		Internal(c, "failed to delete product")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}

// Categories returns the distinct categories of active products.
func (h *ProductHandler) Categories(c *gin.Context) {
	var categories []string
	if err := h.db.WithContext(c.Request.Context()).
		Model(&database.Product{}).
		Where("lifecycle = ?", database.LifecycleActive).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		Internal(c, "failed to list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func parseProductJSON(form productForm) (datatypes.JSON, database.Specifications, error) {
	var features []string
	if err := json.Unmarshal([]byte(form.Features), &features); err != nil {
		return nil, database.Specifications{}, errors.New("features must be a JSON array of strings")
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil, database.Specifications{}, err
	}

	var specs database.Specifications
	if err := json.Unmarshal([]byte(form.Specifications), &specs); err != nil {
		return nil, database.Specifications{}, errors.New("specifications must be a JSON object")
	}
	if specs.Power == "" || specs.Efficiency == "" || specs.Dimensions == "" || specs.Weight == "" {
		return nil, database.Specifications{}, errors.New("specifications require power, efficiency, dimensions and weight")
	}

	return datatypes.JSON(raw), specs, nil
}
