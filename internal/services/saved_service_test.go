// internal/services/saved_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/cache"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

type SavedServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *SavedService
	products *ProductService
	seller   *models.User
	watcher  *models.User
}

func (suite *SavedServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	notifications := NewNotificationService(suite.db)
	suite.service = NewSavedService(suite.db, notifications)
	suite.products = NewProductService(suite.db, cache.NewMemoryStore(), suite.service, newTestLogger())
	suite.seller = createTestUser(suite.T(), suite.db, "seller")
	suite.watcher = createTestUser(suite.T(), suite.db, "watcher")
}

func (suite *SavedServiceTestSuite) TestSaveItem() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	item, err := suite.service.SaveItem(suite.watcher.ID, listing.ID)
	suite.NoError(err)
	suite.Equal(listing.ID, item.ProductID)

	_, err = suite.service.SaveItem(suite.watcher.ID, listing.ID)
	suite.ErrorIs(err, apperrors.ErrAlreadySaved)

	_, err = suite.service.SaveItem(suite.watcher.ID, uuid.New())
	suite.ErrorIs(err, apperrors.ErrProductNotFound)
}

func (suite *SavedServiceTestSuite) TestRemoveSavedItemRequiresOwner() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	item, err := suite.service.SaveItem(suite.watcher.ID, listing.ID)
	suite.NoError(err)

	suite.ErrorIs(suite.service.RemoveSavedItem(suite.seller.ID, item.ID), apperrors.ErrSavedItemNotFound)
	suite.NoError(suite.service.RemoveSavedItem(suite.watcher.ID, item.ID))

	items, total, err := suite.service.ListSavedItems(suite.watcher.ID, testPagination())
	suite.NoError(err)
	suite.EqualValues(0, total)
	suite.Empty(items)
}

func (suite *SavedServiceTestSuite) TestListSavedItemsKeepsSoldListings() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	_, err := suite.service.SaveItem(suite.watcher.ID, listing.ID)
	suite.NoError(err)
	suite.NoError(suite.db.Model(listing).Update("is_sold", true).Error)

	items, total, err := suite.service.ListSavedItems(suite.watcher.ID, testPagination())
	suite.NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(items, 1)
	suite.True(items[0].Product.IsSold)
}

func (suite *SavedServiceTestSuite) TestSaveSearchDefaultsName() {
	search, err := suite.service.SaveSearch(suite.watcher.ID, &SaveSearchRequest{
		Query:   "vintage camera",
		Filters: models.JSONB{"condition": "Good", "max_price": 100},
	})
	suite.NoError(err)
	suite.Contains(search.Name, "Search ")

	named, err := suite.service.SaveSearch(suite.watcher.ID, &SaveSearchRequest{
		Name:  "Cameras under 100",
		Query: "camera",
	})
	suite.NoError(err)
	suite.Equal("Cameras under 100", named.Name)

	searches, err := suite.service.ListSavedSearches(suite.watcher.ID)
	suite.NoError(err)
	suite.Len(searches, 2)
}

func (suite *SavedServiceTestSuite) TestDeleteSavedSearchRequiresOwner() {
	search, err := suite.service.SaveSearch(suite.watcher.ID, &SaveSearchRequest{Name: "watch list"})
	suite.NoError(err)

	suite.ErrorIs(suite.service.DeleteSavedSearch(suite.seller.ID, search.ID), apperrors.ErrSavedSearchNotFound)
	suite.NoError(suite.service.DeleteSavedSearch(suite.watcher.ID, search.ID))
}

func (suite *SavedServiceTestSuite) TestCreatePriceAlert() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	alert, err := suite.service.CreatePriceAlert(suite.watcher.ID, listing.ID, 40)
	suite.NoError(err)
	suite.Equal(models.AlertStatusActive, alert.Status)

	_, err = suite.service.CreatePriceAlert(suite.watcher.ID, listing.ID, 30)
	suite.ErrorIs(err, apperrors.ErrAlertExists)

	_, err = suite.service.CreatePriceAlert(suite.watcher.ID, uuid.New(), 40)
	suite.ErrorIs(err, apperrors.ErrProductNotFound)

	_, err = suite.service.CreatePriceAlert(suite.watcher.ID, listing.ID, 0)
	suite.ErrorIs(err, apperrors.ErrInvalidInput)
}

// Lowering a price to the target fires the alert once; later drops stay
// silent because the alert has moved to triggered.
func (suite *SavedServiceTestSuite) TestPriceDropFiresAlertOnce() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	_, err := suite.service.CreatePriceAlert(suite.watcher.ID, listing.ID, 40)
	suite.NoError(err)

	price := 35.0
	_, err = suite.products.Update(listing.ID, suite.seller.ID, &UpdateProductRequest{Price: &price})
	suite.NoError(err)

	suite.EqualValues(1, countNotifications(suite.T(), suite.db, suite.watcher.ID))

	var alert models.PriceAlert
	suite.NoError(suite.db.First(&alert, "product_id = ?", listing.ID).Error)
	suite.Equal(models.AlertStatusTriggered, alert.Status)

	lower := 20.0
	_, err = suite.products.Update(listing.ID, suite.seller.ID, &UpdateProductRequest{Price: &lower})
	suite.NoError(err)
	suite.EqualValues(1, countNotifications(suite.T(), suite.db, suite.watcher.ID))
}

func (suite *SavedServiceTestSuite) TestPriceDropAboveTargetStaysSilent() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	_, err := suite.service.CreatePriceAlert(suite.watcher.ID, listing.ID, 30)
	suite.NoError(err)

	price := 45.0
	_, err = suite.products.Update(listing.ID, suite.seller.ID, &UpdateProductRequest{Price: &price})
	suite.NoError(err)

	suite.EqualValues(0, countNotifications(suite.T(), suite.db, suite.watcher.ID))

	var alert models.PriceAlert
	suite.NoError(suite.db.First(&alert, "product_id = ?", listing.ID).Error)
	suite.Equal(models.AlertStatusActive, alert.Status)
}

func (suite *SavedServiceTestSuite) TestDeletePriceAlertRequiresOwner() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	alert, err := suite.service.CreatePriceAlert(suite.watcher.ID, listing.ID, 40)
	suite.NoError(err)

	suite.ErrorIs(suite.service.DeletePriceAlert(suite.seller.ID, alert.ID), apperrors.ErrAlertNotFound)
	suite.NoError(suite.service.DeletePriceAlert(suite.watcher.ID, alert.ID))
}

func (suite *SavedServiceTestSuite) TestRecommendationsFollowSavedCategories() {
	saved := createTestListing(suite.T(), suite.db, suite.seller, 50)
	_, err := suite.service.SaveItem(suite.watcher.ID, saved.ID)
	suite.NoError(err)

	sameCategory := &models.Product{
		SellerID:    suite.seller.ID,
		CategoryID:  saved.CategoryID,
		Title:       "Refinished Oak Desk",
		Description: "Solid oak desk, restored this spring.",
		Condition:   models.ConditionGood,
		Price:       80,
		IsActive:    true,
	}
	suite.NoError(suite.db.Create(sameCategory).Error)
	otherCategory := createTestListing(suite.T(), suite.db, suite.seller, 60)

	recommendations, err := suite.products.GetRecommendations(suite.watcher.ID)
	suite.NoError(err)

	ids := make(map[uuid.UUID]bool)
	for _, p := range recommendations {
		ids[p.ID] = true
	}
	suite.True(ids[sameCategory.ID])
	suite.False(ids[otherCategory.ID])
}

func (suite *SavedServiceTestSuite) TestRecommendationsFallBackToPopular() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)
	suite.NoError(suite.db.Model(listing).Update("views", 10).Error)

	recommendations, err := suite.products.GetRecommendations(suite.watcher.ID)
	suite.NoError(err)
	suite.Require().Len(recommendations, 1)
	suite.Equal(listing.ID, recommendations[0].ID)
}

func TestSavedServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SavedServiceTestSuite))
}
