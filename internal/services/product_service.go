// internal/services/product_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/cache"
	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

const (
	popularProductsCacheKey = "products:popular"
	popularProductsCacheTTL = 5 * time.Minute
	popularProductsLimit    = 10
)

type ProductService struct {
	db     *gorm.DB
	cache  cache.Store
	alerts *SavedService
	logger *logrus.Logger
}

func NewProductService(db *gorm.DB, cacheStore cache.Store, alerts *SavedService, logger *logrus.Logger) *ProductService {
	return &ProductService{
		db:     db,
		cache:  cacheStore,
		alerts: alerts,
		logger: logger,
	}
}

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required,min=10"`
	CategoryID  string   `json:"category_id" validate:"required,uuid"`
	Condition   string   `json:"condition" validate:"required,product_condition"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Images      []string `json:"images"`
	Location    string   `json:"location"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Material    string   `json:"material"`

	// Auction fields, only honored when IsAuction is set.
	IsAuction       bool     `json:"is_auction"`
	MinimumBid      *float64 `json:"minimum_bid" validate:"omitempty,gt=0"`
	ReservePrice    *float64 `json:"reserve_price" validate:"omitempty,gt=0"`
	AuctionDuration int      `json:"auction_duration" validate:"omitempty,min=1,max=30"` // days
}

type UpdateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=10"`
	CategoryID  *string  `json:"category_id" validate:"omitempty,uuid"`
	Condition   *string  `json:"condition" validate:"omitempty,product_condition"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Images      []string `json:"images"`
	Location    *string  `json:"location"`
	Brand       *string  `json:"brand"`
	Model       *string  `json:"model"`
	Material    *string  `json:"material"`
}

// ProductFilters narrows List. Zero values mean "no filter".
type ProductFilters struct {
	CategoryID string
	Condition  string
	IsAuction  *bool
	MinPrice   *float64
	MaxPrice   *float64
	SellerID   string
}

// Create validates and stores a new listing. Auction listings get their
// minimum bid defaulted to the asking price and an end time computed from the
// requested duration.
func (s *ProductService) Create(sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	product := &models.Product{
		SellerID:    sellerID,
		CategoryID:  categoryID,
		Title:       req.Title,
		Description: req.Description,
		Condition:   models.ProductCondition(req.Condition),
		Price:       req.Price,
		Images:      pq.StringArray(req.Images),
		Location:    req.Location,
		Brand:       req.Brand,
		Model:       req.Model,
		Material:    req.Material,
		IsActive:    true,
	}

	if req.IsAuction {
		product.IsAuction = true
		product.MinimumBid = req.Price
		if req.MinimumBid != nil {
			product.MinimumBid = *req.MinimumBid
		}
		product.ReservePrice = req.ReservePrice

		duration := req.AuctionDuration
		if duration <= 0 {
			duration = 7
		}
		endTime := time.Now().UTC().Add(time.Duration(duration) * 24 * time.Hour)
		product.AuctionEndTime = &endTime
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetByID returns one active listing and bumps its view counter.
func (s *ProductService) GetByID(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Seller").Preload("Category").
		First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Lost increments under concurrency are acceptable for a view counter.
	if err := s.db.Model(&product).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("Failed to bump view counter")
	}
	product.Views++

	return &product, nil
}

// List returns active, unsold listings matching the filters, paginated.
func (s *ProductService) List(filters ProductFilters, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("is_active = ? AND is_sold = ?", true, false)

	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.Condition != "" {
		query = query.Where("condition = ?", filters.Condition)
	}
	if filters.IsAuction != nil {
		query = query.Where("is_auction = ?", *filters.IsAuction)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.SellerID != "" {
		query = query.Where("seller_id = ?", filters.SellerID)
	}
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSorts := []string{"created_at", "price", "views", "title", "auction_end_time"}
	query = utils.ApplySort(query, params, allowedSorts)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Preload("Seller").Preload("Category").
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetUserProducts returns every listing owned by the user, sold and unsold,
// newest first.
func (s *ProductService) GetUserProducts(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("seller_id = ? AND is_active = ?", sellerID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetPopular returns the most viewed active listings, served from cache when
// fresh.
func (s *ProductService) GetPopular(ctx context.Context) ([]models.Product, error) {
	if cached, err := s.cache.Get(ctx, popularProductsCacheKey); err == nil {
		var products []models.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			return products, nil
		}
		s.logger.Warn("Discarding unreadable popular products cache entry")
	}

	var products []models.Product
	if err := s.db.Preload("Seller").Preload("Category").
		Where("is_active = ? AND is_sold = ?", true, false).
		Order("views DESC").
		Limit(popularProductsLimit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch popular products: %w", err)
	}

	if payload, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, popularProductsCacheKey, string(payload), popularProductsCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache popular products")
		}
	}

	return products, nil
}

// GetRecommendations suggests listings from the categories the user has
// bookmarked or bought from. Users with no history fall back to the most
// viewed listings.
func (s *ProductService) GetRecommendations(userID uuid.UUID) ([]models.Product, error) {
	var savedCategories []string
	if err := s.db.Model(&models.SavedItem{}).
		Joins("JOIN products ON products.id = saved_items.product_id").
		Where("saved_items.user_id = ?", userID).
		Distinct().
		Pluck("products.category_id", &savedCategories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch saved categories: %w", err)
	}

	var boughtCategories []string
	if err := s.db.Model(&models.Purchase{}).
		Joins("JOIN products ON products.id = purchases.product_id").
		Where("purchases.buyer_id = ?", userID).
		Distinct().
		Pluck("products.category_id", &boughtCategories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch purchased categories: %w", err)
	}

	seen := make(map[string]struct{})
	var categoryIDs []string
	for _, id := range append(savedCategories, boughtCategories...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		categoryIDs = append(categoryIDs, id)
	}

	query := s.db.Preload("Seller").Preload("Category").
		Where("is_active = ? AND is_sold = ?", true, false)

	if len(categoryIDs) == 0 {
		query = query.Order("views DESC")
	} else {
		query = query.
			Where("category_id IN ?", categoryIDs).
			Where("seller_id <> ?", userID).
			Order("created_at DESC, views DESC")
	}

	var products []models.Product
	if err := query.Limit(popularProductsLimit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}

	return products, nil
}

// Update modifies an unsold listing owned by the caller. Auction parameters
// are frozen at creation and cannot be edited here.
func (s *ProductService) Update(productID, sellerID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	var product models.Product
	if err := s.db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.SellerID != sellerID {
		return nil, apperrors.ErrUnauthorized
	}
	if product.IsSold {
		return nil, apperrors.ErrAlreadySold
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apperrors.ErrInvalidInput
		}
		var category models.Category
		if err := s.db.First(&category, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		updates["category_id"] = categoryID
	}
	if req.Condition != nil {
		updates["condition"] = models.ProductCondition(*req.Condition)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Material != nil {
		updates["material"] = *req.Material
	}

	previousPrice := product.Price
	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if req.Price != nil && *req.Price < previousPrice {
		if err := s.alerts.TriggerPriceAlerts(&product, *req.Price); err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).
				Warn("Failed to fire price alerts")
		}
	}

	return &product, nil
}

// Delete deactivates a listing owned by the caller. Rows are kept so past
// purchases and bids stay resolvable.
func (s *ProductService) Delete(productID, sellerID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProductNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if product.SellerID != sellerID {
		return apperrors.ErrUnauthorized
	}
	if product.IsSold {
		return apperrors.ErrAlreadySold
	}

	if err := s.db.Model(&product).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	return nil
}

// ListCategories returns top-level categories with their subcategories,
// ordered by name.
func (s *ProductService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Preload("Subcategories").
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=200"`
	ParentID    string `json:"parent_id" validate:"omitempty,uuid"`
}

// CreateCategory adds a category, optionally nested under an existing parent.
func (s *ProductService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			return nil, apperrors.ErrInvalidInput
		}
		var parent models.Category
		if err := s.db.First(&parent, "id = ?", parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		category.ParentID = &parentID
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}
