// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Bid{},
		&models.Purchase{},
		&models.Notification{},
		&models.Dispute{},
		&models.Review{},
		&models.Message{},
		&models.CartItem{},
		&models.SavedItem{},
		&models.SavedSearch{},
		&models.PriceAlert{},
	)
	require.NoError(t, err)

	return db
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{Name: "Electronics " + uuid.New().String()[:8]}
	require.NoError(t, db.Create(category).Error)
	return category
}

type auctionOpts struct {
	minimumBid   float64
	reservePrice *float64
	endsIn       time.Duration
}

func createTestAuction(t *testing.T, db *gorm.DB, seller *models.User, opts auctionOpts) *models.Product {
	t.Helper()

	category := createTestCategory(t, db)
	endTime := time.Now().UTC().Add(opts.endsIn)
	product := &models.Product{
		SellerID:       seller.ID,
		CategoryID:     category.ID,
		Title:          "Vintage Camera",
		Description:    "A well-kept vintage camera with original case.",
		Condition:      models.ConditionGood,
		Price:          opts.minimumBid,
		IsActive:       true,
		IsAuction:      true,
		MinimumBid:     opts.minimumBid,
		ReservePrice:   opts.reservePrice,
		AuctionEndTime: &endTime,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestListing(t *testing.T, db *gorm.DB, seller *models.User, price float64) *models.Product {
	t.Helper()

	category := createTestCategory(t, db)
	product := &models.Product{
		SellerID:    seller.ID,
		CategoryID:  category.ID,
		Title:       "Wooden Desk",
		Description: "Solid oak desk, minor scratches on one leg.",
		Condition:   models.ConditionFair,
		Price:       price,
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func countNotifications(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func testPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func floatPtr(v float64) *float64 { return &v }
