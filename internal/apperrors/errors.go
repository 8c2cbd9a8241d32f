// internal/apperrors/errors.go
package apperrors

import "errors"

// Validation errors (caller-correctable input)
var (
	ErrNotAnAuction      = errors.New("product is not an auction item")
	ErrBidTooLow         = errors.New("bid amount must be higher than current bid and minimum bid")
	ErrSelfBid           = errors.New("cannot bid on your own product")
	ErrSelfDispute       = errors.New("cannot file dispute against yourself")
	ErrSelfPurchase      = errors.New("cannot add your own product to cart")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// Authorization errors (wrong actor or bad credentials)
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// State-conflict errors (right actor, wrong lifecycle state)
var (
	ErrAuctionEnded       = errors.New("auction has ended")
	ErrAuctionStillActive = errors.New("auction is still active")
	ErrNoBids             = errors.New("no bids placed")
	ErrReserveNotMet      = errors.New("reserve price not met")
	ErrAlreadySold        = errors.New("product is already sold")
	ErrProductUnavailable = errors.New("product not available for purchase")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrDuplicateReview    = errors.New("review already exists")
	ErrNoCompletedOrder   = errors.New("can only review after completed transaction")
	ErrUserExists         = errors.New("username or email already registered")
	ErrAlreadySaved       = errors.New("item already saved")
	ErrAlertExists        = errors.New("price alert already exists for this product")
)

// Not-found errors
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrDisputeNotFound      = errors.New("dispute not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrSavedItemNotFound    = errors.New("saved item not found")
	ErrSavedSearchNotFound  = errors.New("saved search not found")
	ErrAlertNotFound        = errors.New("price alert not found")
)

// IsValidation reports whether err is a caller-correctable input error.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNotAnAuction, ErrBidTooLow, ErrSelfBid, ErrSelfDispute,
		ErrSelfPurchase, ErrInvalidInput, ErrInvalidResetToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict reports whether err is a lifecycle state conflict.
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrAuctionEnded, ErrAuctionStillActive, ErrNoBids, ErrReserveNotMet,
		ErrAlreadySold, ErrProductUnavailable, ErrCartEmpty,
		ErrDuplicateReview, ErrNoCompletedOrder, ErrUserExists,
		ErrAlreadySaved, ErrAlertExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err marks a missing resource.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrProductNotFound, ErrUserNotFound, ErrBidNotFound,
		ErrDisputeNotFound, ErrNotificationNotFound, ErrCartItemNotFound,
		ErrCategoryNotFound, ErrReviewNotFound,
		ErrSavedItemNotFound, ErrSavedSearchNotFound, ErrAlertNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
