// internal/services/message_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

type MessageServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *MessageService
	alice   *models.User
	bob     *models.User
	carol   *models.User
}

func (suite *MessageServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewMessageService(suite.db, NewNotificationService(suite.db))
	suite.alice = createTestUser(suite.T(), suite.db, "alice")
	suite.bob = createTestUser(suite.T(), suite.db, "bob")
	suite.carol = createTestUser(suite.T(), suite.db, "carol")
}

func (suite *MessageServiceTestSuite) send(from, to *models.User, body string) *models.Message {
	message, err := suite.service.Send(from.ID, &SendMessageRequest{
		ReceiverID: to.ID.String(),
		Body:       body,
	})
	suite.Require().NoError(err)
	return message
}

func (suite *MessageServiceTestSuite) TestSendNotifiesReceiver() {
	suite.send(suite.alice, suite.bob, "Is the desk still available?")

	suite.EqualValues(1, countNotifications(suite.T(), suite.db, suite.bob.ID))
}

func (suite *MessageServiceTestSuite) TestSendRejectsSelfAndUnknownReceiver() {
	_, err := suite.service.Send(suite.alice.ID, &SendMessageRequest{
		ReceiverID: suite.alice.ID.String(),
		Body:       "talking to myself",
	})
	suite.ErrorIs(err, apperrors.ErrInvalidInput)

	_, err = suite.service.Send(suite.alice.ID, &SendMessageRequest{
		ReceiverID: "3b65540e-98ba-4a4b-9e77-2258dc2bd31e",
		Body:       "hello?",
	})
	suite.ErrorIs(err, apperrors.ErrUserNotFound)
}

func (suite *MessageServiceTestSuite) TestConversationMarksRead() {
	suite.send(suite.alice, suite.bob, "First")
	suite.send(suite.bob, suite.alice, "Second")
	suite.send(suite.alice, suite.bob, "Third")

	messages, err := suite.service.GetConversation(suite.bob.ID, suite.alice.ID)
	suite.NoError(err)
	suite.Require().Len(messages, 3)
	// oldest first
	suite.Equal("First", messages[0].Body)
	suite.Equal("Third", messages[2].Body)

	var unread int64
	suite.NoError(suite.db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", suite.bob.ID, false).
		Count(&unread).Error)
	suite.Zero(unread)
}

func (suite *MessageServiceTestSuite) TestListConversations() {
	suite.send(suite.alice, suite.bob, "Hi Bob")
	suite.send(suite.bob, suite.alice, "Hi Alice")
	suite.send(suite.carol, suite.alice, "Hello from Carol")

	conversations, err := suite.service.ListConversations(suite.alice.ID)
	suite.NoError(err)
	suite.Require().Len(conversations, 2)

	// most recently active first
	suite.Equal(suite.carol.ID, conversations[0].Partner.ID)
	suite.EqualValues(1, conversations[0].UnreadCount)
	suite.Equal(suite.bob.ID, conversations[1].Partner.ID)
	suite.EqualValues(1, conversations[1].UnreadCount)
}

func TestMessageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceTestSuite))
}
