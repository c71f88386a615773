package usecase

import (
	"net/http"

	"github.com/x-xyz/mintingkit/service/mintapi"
)

const (
	MsgForbidden       = "This device does not yet have permission to mint."
	MsgOutdated        = "Please update your app to the latest version to use this API."
	MsgServerError     = "We logged an error processing your request. Please check your minter contract and try again if minting failed."
	MsgConnection      = "Request failed. Please check your connection."
	MsgUnknownMintable = "Unable to verify project status."
)

// UserMessage is the text shown to the collector when creating a minting fails
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	status, ok := mintapi.StatusCode(err)
	switch {
	case !ok:
		return MsgConnection
	case status == http.StatusForbidden:
		return MsgForbidden
	case status >= 400 && status < 500:
		return MsgOutdated
	default:
		return MsgServerError
	}
}
