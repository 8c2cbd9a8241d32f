// internal/services/review_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ReviewService
	seller  *models.User
	buyer   *models.User
	product *models.Product
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewReviewService(suite.db)
	suite.seller = createTestUser(suite.T(), suite.db, "seller")
	suite.buyer = createTestUser(suite.T(), suite.db, "buyer")
	suite.product = createTestListing(suite.T(), suite.db, suite.seller, 50)
}

func (suite *ReviewServiceTestSuite) recordPurchase() {
	purchase := &models.Purchase{
		BuyerID:      suite.buyer.ID,
		SellerID:     suite.seller.ID,
		ProductID:    suite.product.ID,
		Amount:       50,
		Status:       models.PurchaseStatusCompleted,
		PurchaseDate: time.Now().UTC(),
	}
	suite.Require().NoError(suite.db.Create(purchase).Error)
}

func (suite *ReviewServiceTestSuite) TestCreateRequiresCompletedPurchase() {
	_, err := suite.service.Create(suite.buyer.ID, &CreateReviewRequest{
		RevieweeID: suite.seller.ID.String(),
		Rating:     5,
		Comment:    "Great seller",
	})
	suite.ErrorIs(err, apperrors.ErrNoCompletedOrder)
}

func (suite *ReviewServiceTestSuite) TestCreateUpdatesAggregate() {
	suite.recordPurchase()

	review, err := suite.service.Create(suite.buyer.ID, &CreateReviewRequest{
		RevieweeID: suite.seller.ID.String(),
		ProductID:  suite.product.ID.String(),
		Rating:     4,
		Comment:    "Smooth transaction",
	})
	suite.NoError(err)
	suite.Equal(4, review.Rating)

	var seller models.User
	suite.NoError(suite.db.First(&seller, "id = ?", suite.seller.ID).Error)
	suite.Equal(4.0, seller.Rating)
	suite.EqualValues(1, seller.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestSellerCanReviewBuyerBack() {
	suite.recordPurchase()

	_, err := suite.service.Create(suite.seller.ID, &CreateReviewRequest{
		RevieweeID: suite.buyer.ID.String(),
		ProductID:  suite.product.ID.String(),
		Rating:     5,
		Comment:    "Prompt payment",
	})
	suite.NoError(err)
}

func (suite *ReviewServiceTestSuite) TestDuplicateReviewRejected() {
	suite.recordPurchase()

	req := &CreateReviewRequest{
		RevieweeID: suite.seller.ID.String(),
		ProductID:  suite.product.ID.String(),
		Rating:     4,
		Comment:    "Smooth transaction",
	}
	_, err := suite.service.Create(suite.buyer.ID, req)
	suite.NoError(err)

	_, err = suite.service.Create(suite.buyer.ID, req)
	suite.ErrorIs(err, apperrors.ErrDuplicateReview)
}

func (suite *ReviewServiceTestSuite) TestSelfReviewRejected() {
	suite.recordPurchase()

	_, err := suite.service.Create(suite.buyer.ID, &CreateReviewRequest{
		RevieweeID: suite.buyer.ID.String(),
		Rating:     5,
	})
	suite.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (suite *ReviewServiceTestSuite) TestRatingBoundsValidated() {
	suite.recordPurchase()

	for _, rating := range []int{0, 6, -1} {
		_, err := suite.service.Create(suite.buyer.ID, &CreateReviewRequest{
			RevieweeID: suite.seller.ID.String(),
			Rating:     rating,
		})
		suite.ErrorIs(err, apperrors.ErrInvalidInput)
	}
}

func (suite *ReviewServiceTestSuite) TestDeleteRecomputesAggregate() {
	suite.recordPurchase()

	review, err := suite.service.Create(suite.buyer.ID, &CreateReviewRequest{
		RevieweeID: suite.seller.ID.String(),
		ProductID:  suite.product.ID.String(),
		Rating:     2,
		Comment:    "Item arrived late",
	})
	suite.NoError(err)

	suite.NoError(suite.service.Delete(review.ID, suite.buyer.ID))

	var seller models.User
	suite.NoError(suite.db.First(&seller, "id = ?", suite.seller.ID).Error)
	suite.Zero(seller.Rating)
	suite.Zero(seller.TotalReviews)
}

func (suite *ReviewServiceTestSuite) TestDeleteEnforcesOwnership() {
	suite.recordPurchase()

	review, err := suite.service.Create(suite.buyer.ID, &CreateReviewRequest{
		RevieweeID: suite.seller.ID.String(),
		Rating:     4,
	})
	suite.NoError(err)

	err = suite.service.Delete(review.ID, suite.seller.ID)
	suite.ErrorIs(err, apperrors.ErrReviewNotFound)
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
