// internal/handlers/auction_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/services"
)

type AuctionHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	seller *models.User
	bidder *models.User
}

// authAs injects the given user into the request context the way the auth
// middleware does after validating a token.
func authAs(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	}
}

func (suite *AuctionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{}, &models.Bid{},
		&models.Purchase{}, &models.Notification{},
	))
	suite.db = db

	suite.seller = suite.createUser("seller")
	suite.bidder = suite.createUser("bidder")

	notifications := services.NewNotificationService(db)
	auctionService := services.NewAuctionService(db, notifications)
	settlementService := services.NewSettlementService(db, notifications)
	handler := NewAuctionHandler(auctionService, settlementService)

	suite.router = gin.New()
	suite.router.POST("/products/:id/bid", authAs(suite.bidder.ID), handler.PlaceBid)
	suite.router.GET("/auctions/:id", handler.GetAuction)
	suite.router.POST("/auctions/:id/confirm-sale", authAs(suite.bidder.ID), handler.ConfirmSale)
}

func (suite *AuctionHandlerTestSuite) createUser(username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(suite.T(), user.SetPassword("TestPass123!"))
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *AuctionHandlerTestSuite) createAuction(endsIn time.Duration) *models.Product {
	category := &models.Category{Name: "Cameras " + uuid.New().String()[:8]}
	require.NoError(suite.T(), suite.db.Create(category).Error)

	endTime := time.Now().UTC().Add(endsIn)
	product := &models.Product{
		SellerID:       suite.seller.ID,
		CategoryID:     category.ID,
		Title:          "Vintage Camera",
		Description:    "A well-kept vintage camera with original case.",
		Condition:      models.ConditionGood,
		Price:          50,
		IsActive:       true,
		IsAuction:      true,
		MinimumBid:     50,
		AuctionEndTime: &endTime,
	}
	require.NoError(suite.T(), suite.db.Create(product).Error)
	return product
}

func (suite *AuctionHandlerTestSuite) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(suite.T(), err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuctionHandlerTestSuite) TestPlaceBidCreated() {
	auction := suite.createAuction(time.Hour)

	w := suite.postJSON("/products/"+auction.ID.String()+"/bid", gin.H{"amount": 60})
	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response["success"].(bool))
}

func (suite *AuctionHandlerTestSuite) TestPlaceBidTooLowIsBadRequest() {
	auction := suite.createAuction(time.Hour)

	w := suite.postJSON("/products/"+auction.ID.String()+"/bid", gin.H{"amount": 50})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuctionHandlerTestSuite) TestPlaceBidOnEndedAuctionIsBadRequest() {
	auction := suite.createAuction(-time.Hour)

	w := suite.postJSON("/products/"+auction.ID.String()+"/bid", gin.H{"amount": 60})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuctionHandlerTestSuite) TestPlaceBidUnknownProductIsNotFound() {
	w := suite.postJSON("/products/"+uuid.New().String()+"/bid", gin.H{"amount": 60})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AuctionHandlerTestSuite) TestPlaceBidMalformedIDIsBadRequest() {
	w := suite.postJSON("/products/not-a-uuid/bid", gin.H{"amount": 60})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuctionHandlerTestSuite) TestGetAuctionOK() {
	auction := suite.createAuction(time.Hour)
	suite.postJSON("/products/"+auction.ID.String()+"/bid", gin.H{"amount": 60})

	req, _ := http.NewRequest(http.MethodGet, "/auctions/"+auction.ID.String(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Auction struct {
				BidCount int    `json:"bid_count"`
				Status   string `json:"status"`
			} `json:"auction"`
		} `json:"data"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response.Success)
	suite.Equal(1, response.Data.Auction.BidCount)
	suite.Equal("active", response.Data.Auction.Status)
}

func (suite *AuctionHandlerTestSuite) TestConfirmSaleByNonSellerIsForbidden() {
	auction := suite.createAuction(time.Hour)
	suite.postJSON("/products/"+auction.ID.String()+"/bid", gin.H{"amount": 60})
	suite.NoError(suite.db.Model(auction).
		Update("auction_end_time", time.Now().UTC().Add(-time.Minute)).Error)

	// routes are authenticated as the bidder, not the seller
	w := suite.postJSON("/auctions/"+auction.ID.String()+"/confirm-sale", nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestAuctionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuctionHandlerTestSuite))
}
