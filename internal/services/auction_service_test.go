// internal/services/auction_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

type AuctionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuctionService
	seller  *models.User
	alice   *models.User
	bob     *models.User
}

func (suite *AuctionServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewAuctionService(suite.db, NewNotificationService(suite.db))
	suite.seller = createTestUser(suite.T(), suite.db, "seller")
	suite.alice = createTestUser(suite.T(), suite.db, "alice")
	suite.bob = createTestUser(suite.T(), suite.db, "bob")
}

func (suite *AuctionServiceTestSuite) TestPlaceBidRejectsNonAuction() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	_, err := suite.service.PlaceBid(listing.ID, suite.alice.ID, 60)
	suite.ErrorIs(err, apperrors.ErrNotAnAuction)

	var count int64
	suite.NoError(suite.db.Model(&models.Bid{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *AuctionServiceTestSuite) TestPlaceBidRejectsSeller() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.seller.ID, 20)
	suite.ErrorIs(err, apperrors.ErrSelfBid)
}

func (suite *AuctionServiceTestSuite) TestPlaceBidRejectsEndedAuction() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: -time.Minute,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 20)
	suite.ErrorIs(err, apperrors.ErrAuctionEnded)
}

func (suite *AuctionServiceTestSuite) TestPlaceBidRejectsUnknownProduct() {
	_, err := suite.service.PlaceBid(suite.bob.ID, suite.alice.ID, 20)
	suite.ErrorIs(err, apperrors.ErrProductNotFound)
}

// Bids must climb strictly: below the minimum, equal to the current bid, and
// lower than the current bid are all rejected without side effects.
func (suite *AuctionServiceTestSuite) TestBidsMustStrictlyIncrease() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 5)
	suite.ErrorIs(err, apperrors.ErrBidTooLow)

	bid, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 15)
	suite.NoError(err)
	suite.Equal(15.0, bid.Amount)

	_, err = suite.service.PlaceBid(auction.ID, suite.bob.ID, 12)
	suite.ErrorIs(err, apperrors.ErrBidTooLow)

	_, err = suite.service.PlaceBid(auction.ID, suite.bob.ID, 15)
	suite.ErrorIs(err, apperrors.ErrBidTooLow)

	var product models.Product
	suite.NoError(suite.db.First(&product, "id = ?", auction.ID).Error)
	suite.Equal(15.0, product.CurrentBid)
	suite.NotNil(product.WinningBidID)
	suite.Equal(bid.ID, *product.WinningBidID)

	var count int64
	suite.NoError(suite.db.Model(&models.Bid{}).
		Where("product_id = ?", auction.ID).Count(&count).Error)
	suite.EqualValues(1, count)
}

// Full bid scenario: 5 rejected, 15 accepted, 12 rejected, 20 accepted. The
// seller hears about each accepted bid and the first bidder is told they were
// outbid.
func (suite *AuctionServiceTestSuite) TestBidSequenceWithNotifications() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 5)
	suite.ErrorIs(err, apperrors.ErrBidTooLow)

	_, err = suite.service.PlaceBid(auction.ID, suite.alice.ID, 15)
	suite.NoError(err)

	_, err = suite.service.PlaceBid(auction.ID, suite.bob.ID, 12)
	suite.ErrorIs(err, apperrors.ErrBidTooLow)

	winning, err := suite.service.PlaceBid(auction.ID, suite.bob.ID, 20)
	suite.NoError(err)

	var product models.Product
	suite.NoError(suite.db.First(&product, "id = ?", auction.ID).Error)
	suite.Equal(20.0, product.CurrentBid)
	suite.Equal(winning.ID, *product.WinningBidID)

	// one per accepted bid
	suite.EqualValues(2, countNotifications(suite.T(), suite.db, suite.seller.ID))
	// outbid notice for the first bidder
	suite.EqualValues(1, countNotifications(suite.T(), suite.db, suite.alice.ID))
	suite.EqualValues(0, countNotifications(suite.T(), suite.db, suite.bob.ID))
}

// Raising your own leading bid must not produce an outbid notice to yourself.
func (suite *AuctionServiceTestSuite) TestSelfRaiseSkipsOutbidNotice() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 15)
	suite.NoError(err)
	_, err = suite.service.PlaceBid(auction.ID, suite.alice.ID, 25)
	suite.NoError(err)

	suite.EqualValues(0, countNotifications(suite.T(), suite.db, suite.alice.ID))
}

func (suite *AuctionServiceTestSuite) TestGetAuction() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 15)
	suite.NoError(err)
	winning, err := suite.service.PlaceBid(auction.ID, suite.bob.ID, 20)
	suite.NoError(err)

	detail, err := suite.service.GetAuction(auction.ID)
	suite.NoError(err)
	suite.Equal(models.AuctionStatusActive, detail.Status)
	suite.EqualValues(2, detail.BidCount)
	suite.Require().Len(detail.Bids, 2)
	// highest first
	suite.Equal(20.0, detail.Bids[0].Amount)
	suite.Equal(15.0, detail.Bids[1].Amount)
	suite.Require().NotNil(detail.WinningBid)
	suite.Equal(winning.ID, detail.WinningBid.ID)
}

func (suite *AuctionServiceTestSuite) TestGetAuctionDerivesEndedStatus() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: -time.Minute,
	})

	detail, err := suite.service.GetAuction(auction.ID)
	suite.NoError(err)
	suite.Equal(models.AuctionStatusEnded, detail.Status)
}

func (suite *AuctionServiceTestSuite) TestGetAuctionRejectsNonAuction() {
	listing := createTestListing(suite.T(), suite.db, suite.seller, 50)

	_, err := suite.service.GetAuction(listing.ID)
	suite.ErrorIs(err, apperrors.ErrNotAnAuction)
}

func (suite *AuctionServiceTestSuite) TestGetUserBidsFlagsWinning() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller, auctionOpts{
		minimumBid: 10, endsIn: time.Hour,
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 15)
	suite.NoError(err)
	_, err = suite.service.PlaceBid(auction.ID, suite.bob.ID, 20)
	suite.NoError(err)

	aliceBids, total, err := suite.service.GetUserBids(suite.alice.ID, testPagination())
	suite.NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(aliceBids, 1)
	suite.False(aliceBids[0].IsWinning)

	bobBids, _, err := suite.service.GetUserBids(suite.bob.ID, testPagination())
	suite.NoError(err)
	suite.Require().Len(bobBids, 1)
	suite.True(bobBids[0].IsWinning)
}

func TestAuctionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuctionServiceTestSuite))
}
