package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")
	// ErrInvalidAddress will throw if a destination is not a hex wallet address
	ErrInvalidAddress = errors.New("Invalid address")

	// ErrMalformedURL is returned when an API url cannot be constructed
	ErrMalformedURL = errors.New("Unable to construct URL for API calls.")
	// ErrEnsNotFound is returned when an ENS name has no address
	ErrEnsNotFound = errors.New("Unable to find ENS name.")
	// ErrTokenMissing is returned when the login callback carries no token
	ErrTokenMissing = errors.New("Unable to retrieve token from login screen.")
	// ErrSessionExpired is returned when no fresh vendor token is stored
	ErrSessionExpired = errors.New("session expired")
	// ErrLocked is returned when the operator credential does not unlock the stored token
	ErrLocked = errors.New("session locked")
	// ErrSocket is returned for unusable websocket frames
	ErrSocket = errors.New("Unknown type received from WebSocket")

	// ErrNotMintable is returned when the vendor refuses a project for this device
	ErrNotMintable = errors.New("project is not mintable")
	// ErrMintFailed wraps the receipt errors of a failed minting transaction
	ErrMintFailed = errors.New("minting failed")

	// ErrReaderNotConnected is returned when no card reader is available
	ErrReaderNotConnected = errors.New("no card reader connected")
	// ErrPaymentFailed wraps failures of the card payment sequence
	ErrPaymentFailed = errors.New("payment failed")
	// ErrUnexpectedIntentStatus is returned when a processed intent is neither succeeded nor requires_capture
	ErrUnexpectedIntentStatus = errors.New("unexpected payment intent status")
)
