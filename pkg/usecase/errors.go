package usecase

import "errors"

var (
	// ErrNotVerified means the Slack user has not completed identity
	// verification, which gates Peloton connections.
	ErrNotVerified = errors.New("slack user is not verified")

	// ErrTokenInvalid means a verification token did not match any pending
	// record, or was already consumed.
	ErrTokenInvalid = errors.New("verification token is invalid or already used")

	// ErrInvalidSlackUserID means the submitted Slack member ID does not look
	// like one.
	ErrInvalidSlackUserID = errors.New("invalid slack user ID")
)
