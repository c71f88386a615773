package minting

import (
	"encoding/json"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/x-xyz/mintingkit/base/ctx"
)

const (
	// RenderBlockConfirmations is the number of block confirmations before the artwork is revealed
	RenderBlockConfirmations = 3
	// PollInterval is the fixed delay between two status requests
	PollInterval = 5 * time.Second
)

// Minting is a minting transaction record returned by the vendor API
type Minting struct {
	ID                 string          `json:"id"`
	Project            string          `json:"project,omitempty"`
	DestinationWallet  string          `json:"destination_wallet,omitempty"`
	BlockConfirmations *int            `json:"block_confirmations,omitempty"`
	ShareURL           string          `json:"share_url,omitempty"`
	EmbedURL           string          `json:"embed_url,omitempty"`
	IsPaid             *bool           `json:"is_paid,omitempty"`
	Receipt            json.RawMessage `json:"receipt,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
}

// Confirmations returns the block confirmation count, 0 when unknown
func (m *Minting) Confirmations() int {
	if m.BlockConfirmations == nil {
		return 0
	}
	return *m.BlockConfirmations
}

// KeepConfirmations returns m, or a copy of m counting last confirmations when
// the response omitted them
func (m *Minting) KeepConfirmations(last *int) *Minting {
	if m.BlockConfirmations != nil || last == nil {
		return m
	}
	res := *m
	res.BlockConfirmations = last
	return &res
}

// Revealed reports whether the artwork may be shown: an embed url is present and
// the transaction has at least threshold confirmations.
func (m *Minting) Revealed(threshold int) bool {
	return m.EmbedURL != "" && m.Confirmations() >= threshold
}

// Reveal returns a copy of m whose embed url is withheld below threshold
func (m *Minting) Reveal(threshold int) *Minting {
	res := *m
	if !m.Revealed(threshold) {
		res.EmbedURL = ""
	}
	return &res
}

// ReceiptError returns the error text the vendor reports in receipt.errors
func (m *Minting) ReceiptError() string {
	if len(m.Receipt) == 0 {
		return ""
	}
	receipt := struct {
		Errors interface{} `json:"errors"`
	}{}
	if err := json.Unmarshal(m.Receipt, &receipt); err != nil {
		return ""
	}
	if s, ok := receipt.Errors.(string); ok {
		return s
	}
	return ""
}

// TokenNumber extracts the token number from the embed url, e.g.
// https://generator.artblocks.io/0x0583.../16?render=true -> 16
func (m *Minting) TokenNumber() string {
	if m.EmbedURL == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(m.EmbedURL, "?render=true", ""))
}

// Artist is read from the token metadata
func (m *Minting) Artist() string {
	return m.metadataString("artist")
}

// Series is read from the token metadata
func (m *Minting) Series() string {
	return m.metadataString("series")
}

func (m *Minting) metadataString(key string) string {
	if len(m.Metadata) == 0 {
		return ""
	}
	md := map[string]interface{}{}
	if err := json.Unmarshal(m.Metadata, &md); err != nil {
		return ""
	}
	switch v := md[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Status of a locally tracked minting
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirming Status = "confirming"
	StatusRevealed   Status = "revealed"
	StatusFailed     Status = "failed"
)

// Record is the local history entry of a minting started from this device
type Record struct {
	ID                 string    `json:"id" bson:"id"`
	ProjectID          string    `json:"projectId" bson:"projectId"`
	DestinationWallet  string    `json:"destinationWallet" bson:"destinationWallet"`
	BlockConfirmations int       `json:"blockConfirmations" bson:"blockConfirmations"`
	ShareURL           string    `json:"shareUrl,omitempty" bson:"shareUrl,omitempty"`
	EmbedURL           string    `json:"embedUrl,omitempty" bson:"embedUrl,omitempty"`
	IsPaid             bool      `json:"isPaid" bson:"isPaid"`
	Status             Status    `json:"status" bson:"status"`
	Error              string    `json:"error,omitempty" bson:"error,omitempty"`
	ReceiptURL         string    `json:"receiptUrl,omitempty" bson:"receiptUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Apply copies the latest vendor state into the record
func (r *Record) Apply(m *Minting, now time.Time) {
	if m.BlockConfirmations != nil {
		r.BlockConfirmations = *m.BlockConfirmations
	}
	if m.ShareURL != "" {
		r.ShareURL = m.ShareURL
	}
	if m.IsPaid != nil {
		r.IsPaid = *m.IsPaid
	}
	switch {
	case m.ReceiptError() != "":
		r.Status = StatusFailed
		r.Error = m.ReceiptError()
	case m.EmbedURL != "" && r.BlockConfirmations >= RenderBlockConfirmations:
		r.Status = StatusRevealed
		r.EmbedURL = m.EmbedURL
	case r.BlockConfirmations > 0:
		r.Status = StatusConfirming
	default:
		r.Status = StatusPending
	}
	r.UpdatedAt = now
}

// Mintability is the answer of the vendor's mintable check
type Mintability struct {
	Mintable bool   `json:"mintable"`
	Message  string `json:"message"`
}

// MintRequest starts a minting
type MintRequest struct {
	ProjectID         string `json:"project" validate:"required"`
	DestinationWallet string `json:"destinationWallet" validate:"required"`
}

// Progress is reported on every successful status update of a watched minting
type Progress struct {
	MintID             string `json:"mintId"`
	BlockConfirmations int    `json:"blockConfirmations"`
	ShareURL           string `json:"shareUrl,omitempty"`
	Revealed           bool   `json:"revealed"`
}

type FindAllOptions struct {
	ProjectID         *string
	DestinationWallet *string
	Status            *Status
	Limit             int
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithProjectID(projectID string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.ProjectID = &projectID
		return nil
	}
}

func WithDestinationWallet(wallet string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.DestinationWallet = &wallet
		return nil
	}
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Status = &status
		return nil
	}
}

func WithLimit(limit int) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Limit = limit
		return nil
	}
}

type Usecase interface {
	// CheckMintable verifies the project can be minted by this device
	CheckMintable(ctx ctx.Ctx, projectID string) (*Mintability, error)
	// Mint creates a minting and watches it in the background
	Mint(ctx ctx.Ctx, req *MintRequest) (*Minting, error)
	// Get returns the latest state, embed url withheld below the confirmation threshold
	Get(ctx ctx.Ctx, mintID string) (*Minting, error)
	// Watch blocks until the minting is revealed, failed, or ctx is done
	Watch(ctx ctx.Ctx, mintID string, onUpdate func(Progress)) (*Minting, error)
	// Latest returns the last revealed minting of a project
	Latest(ctx ctx.Ctx, projectID string) (*Minting, error)
	History(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Record, error)
}

// RecordPatch lists record fields to overwrite, nil fields are left as stored
type RecordPatch struct {
	ReceiptURL *string    `bson:"receiptUrl,omitempty"`
	UpdatedAt  *time.Time `bson:"updatedAt,omitempty"`
}

type Repo interface {
	Upsert(ctx ctx.Ctx, record *Record) error
	// Patch returns domain.ErrNotFound when no record has id
	Patch(ctx ctx.Ctx, id string, patch *RecordPatch) error
	FindOne(ctx ctx.Ctx, id string) (*Record, error)
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Record, error)
}

// Notifier announces revealed artworks
type Notifier interface {
	NotifyRevealed(ctx ctx.Ctx, record *Record) error
}

// ReceiptArchive keeps the raw receipt payload of finished mintings
type ReceiptArchive interface {
	Store(ctx ctx.Ctx, mintID string, receipt []byte) (string, error)
}
