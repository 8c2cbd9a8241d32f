// internal/services/product_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/cache"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *ProductService
	seller   *models.User
	other    *models.User
	category *models.Category
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	notifications := NewNotificationService(suite.db)
	suite.service = NewProductService(suite.db, cache.NewMemoryStore(),
		NewSavedService(suite.db, notifications), newTestLogger())
	suite.seller = createTestUser(suite.T(), suite.db, "seller")
	suite.other = createTestUser(suite.T(), suite.db, "other")
	suite.category = createTestCategory(suite.T(), suite.db)
}

func (suite *ProductServiceTestSuite) TestCreateFixedPriceListing() {
	product, err := suite.service.Create(suite.seller.ID, &CreateProductRequest{
		Title:       "Wooden Desk",
		Description: "Solid oak desk, minor scratches on one leg.",
		CategoryID:  suite.category.ID.String(),
		Condition:   string(models.ConditionGood),
		Price:       120,
	})
	suite.NoError(err)
	suite.False(product.IsAuction)
	suite.Nil(product.AuctionEndTime)
	suite.True(product.IsActive)
}

// Auction creation defaults the minimum bid to the asking price and derives
// the end time from the requested duration.
func (suite *ProductServiceTestSuite) TestCreateAuctionDefaults() {
	before := time.Now().UTC()
	product, err := suite.service.Create(suite.seller.ID, &CreateProductRequest{
		Title:           "Vintage Camera",
		Description:     "A well-kept vintage camera with original case.",
		CategoryID:      suite.category.ID.String(),
		Condition:       string(models.ConditionGood),
		Price:           80,
		IsAuction:       true,
		AuctionDuration: 3,
	})
	suite.NoError(err)
	suite.True(product.IsAuction)
	suite.Equal(80.0, product.MinimumBid)
	suite.Require().NotNil(product.AuctionEndTime)

	expected := before.Add(3 * 24 * time.Hour)
	suite.WithinDuration(expected, *product.AuctionEndTime, time.Minute)
}

func (suite *ProductServiceTestSuite) TestCreateAuctionExplicitMinimumAndReserve() {
	product, err := suite.service.Create(suite.seller.ID, &CreateProductRequest{
		Title:           "Vintage Camera",
		Description:     "A well-kept vintage camera with original case.",
		CategoryID:      suite.category.ID.String(),
		Condition:       string(models.ConditionGood),
		Price:           80,
		IsAuction:       true,
		MinimumBid:      floatPtr(50),
		ReservePrice:    floatPtr(100),
		AuctionDuration: 7,
	})
	suite.NoError(err)
	suite.Equal(50.0, product.MinimumBid)
	suite.Require().NotNil(product.ReservePrice)
	suite.Equal(100.0, *product.ReservePrice)
}

func (suite *ProductServiceTestSuite) TestCreateRejectsBadInput() {
	_, err := suite.service.Create(suite.seller.ID, &CreateProductRequest{
		Title:       "x",
		Description: "too short",
		CategoryID:  suite.category.ID.String(),
		Condition:   string(models.ConditionGood),
		Price:       10,
	})
	suite.ErrorIs(err, apperrors.ErrInvalidInput)

	_, err = suite.service.Create(suite.seller.ID, &CreateProductRequest{
		Title:       "Wooden Desk",
		Description: "Solid oak desk, minor scratches on one leg.",
		CategoryID:  suite.category.ID.String(),
		Condition:   "Mint",
		Price:       10,
	})
	suite.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (suite *ProductServiceTestSuite) TestGetByIDBumpsViews() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	first, err := suite.service.GetByID(listing.ID)
	suite.NoError(err)
	suite.EqualValues(1, first.Views)

	second, err := suite.service.GetByID(listing.ID)
	suite.NoError(err)
	suite.EqualValues(2, second.Views)
}

func (suite *ProductServiceTestSuite) TestListFilters() {
	createTestListing(suite.T(), suite.db, suite.seller, 50)
	createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	auctionsOnly := true
	products, total, err := suite.service.List(ProductFilters{IsAuction: &auctionsOnly}, testPagination())
	suite.NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(products, 1)
	suite.True(products[0].IsAuction)

	minPrice := 40.0
	products, total, err = suite.service.List(ProductFilters{MinPrice: &minPrice}, testPagination())
	suite.NoError(err)
	suite.EqualValues(1, total)
	suite.Equal(50.0, products[0].Price)
}

func (suite *ProductServiceTestSuite) TestListExcludesSoldAndInactive() {
	sold := createTestListing(suite.T(), suite.db, suite.seller, 50)
	suite.NoError(suite.db.Model(sold).Update("is_sold", true).Error)
	inactive := createTestListing(suite.T(), suite.db, suite.seller, 60)
	suite.NoError(suite.db.Model(inactive).Update("is_active", false).Error)
	createTestListing(suite.T(), suite.db, suite.seller, 70)

	_, total, err := suite.service.List(ProductFilters{}, testPagination())
	suite.NoError(err)
	suite.EqualValues(1, total)
}

func (suite *ProductServiceTestSuite) TestUpdateEnforcesOwnership() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	title := "Refinished Oak Desk"
	_, err := suite.service.Update(listing.ID, suite.other.ID, &UpdateProductRequest{Title: &title})
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	updated, err := suite.service.Update(listing.ID, suite.seller.ID, &UpdateProductRequest{Title: &title})
	suite.NoError(err)
	_ = updated

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", listing.ID).Error)
	suite.Equal(title, reloaded.Title)
}

func (suite *ProductServiceTestSuite) TestDeleteDeactivates() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	suite.ErrorIs(suite.service.Delete(listing.ID, suite.other.ID), apperrors.ErrUnauthorized)
	suite.NoError(suite.service.Delete(listing.ID, suite.seller.ID))

	_, err := suite.service.GetByID(listing.ID)
	suite.ErrorIs(err, apperrors.ErrProductNotFound)

	// row is kept for purchase and bid history
	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", listing.ID).Error)
	suite.False(reloaded.IsActive)
}

func (suite *ProductServiceTestSuite) TestGetPopularUsesCache() {
	ctx := context.Background()
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	suite.NoError(suite.db.Model(listing).Update("views", 10).Error)

	first, err := suite.service.GetPopular(ctx)
	suite.NoError(err)
	suite.Require().Len(first, 1)

	// a later view-count change is not visible until the cache entry expires
	suite.NoError(suite.db.Model(listing).Update("views", 99).Error)
	second, err := suite.service.GetPopular(ctx)
	suite.NoError(err)
	suite.Require().Len(second, 1)
	suite.EqualValues(10, second[0].Views)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
