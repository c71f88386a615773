package mintapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/domain/payment"
	"github.com/x-xyz/mintingkit/domain/project"
)

const (
	// DefaultBaseURL is the production minting API
	DefaultBaseURL = "https://minting-api.artblocks.io"

	defaultTimeout = 15 * time.Second
)

// TokenSource provides the vendor token sent with every request
type TokenSource interface {
	Token(ctx bCtx.Ctx) (string, error)
}

// StaticToken is a TokenSource returning a fixed token
type StaticToken string

func (t StaticToken) Token(bCtx.Ctx) (string, error) {
	return string(t), nil
}

// LoginURL is the browser page issuing device tokens for the API at baseURL
func LoginURL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/app/?appauth=true"
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	// payment endpoints explain declines in the body of a 402
	if e.StatusCode == http.StatusPaymentRequired && e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("mintapi: unexpected status %d", e.StatusCode)
}

// StatusCode returns the http status carried by err, if any
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// Retryable reports whether repeating a failed call can succeed, it cannot without a fresh session
func Retryable(err error) bool {
	return !errors.Is(err, domain.ErrSessionExpired) && !errors.Is(err, domain.ErrLocked)
}

// Client is the minting API of the vendor
type Client interface {
	ListProjects(ctx bCtx.Ctx) ([]*project.Project, error)
	// LookupENS returns domain.ErrEnsNotFound when the vendor has no address for name
	LookupENS(ctx bCtx.Ctx, name string) (domain.Address, error)
	CheckMintable(ctx bCtx.Ctx, projectID string) (*minting.Mintability, error)
	CreateMinting(ctx bCtx.Ctx, projectID string, wallet domain.Address) (*minting.Minting, error)
	RetrieveMinting(ctx bCtx.Ctx, mintID string) (*minting.Minting, error)
	ListMintings(ctx bCtx.Ctx) ([]*minting.Minting, error)
	// SubscribeMinting streams updates of a minting until ctx is done or the socket fails
	SubscribeMinting(ctx bCtx.Ctx, mintID string, onUpdate func(*minting.Minting)) error
	// LoginURL is the browser page issuing a device token
	LoginURL() string
	// Ping reports whether the API is reachable
	Ping(ctx bCtx.Ctx) error

	payment.Backend
}

type ClientCfg struct {
	HttpClient *http.Client
	Dialer     *websocket.Dialer
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
}

type listResp struct {
	Results []*minting.Minting `json:"results"`
}

type projectListResp struct {
	Results []*project.Project `json:"results"`
}

type ensResp struct {
	EthAddress *string `json:"eth_address"`
}

type createMintingReq struct {
	DestinationWallet string `json:"destination_wallet"`
	Project           string `json:"project"`
}

type secretResp struct {
	Secret *string `json:"secret"`
}
