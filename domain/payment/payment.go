package payment

import (
	"time"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain/project"
)

const (
	CurrencyUSD              = "usd"
	PaymentMethodCardPresent = "card_present"
)

// DeviceType of a connected card reader
type DeviceType string

const (
	DeviceTypeVerifoneP400     DeviceType = "verifoneP400"
	DeviceTypeWisePosE         DeviceType = "wisePosE"
	DeviceTypeWisePosEDevKit   DeviceType = "wisePosEDevKit"
	DeviceTypeEtna             DeviceType = "etna"
	DeviceTypeStripeS700       DeviceType = "stripeS700"
	DeviceTypeStripeS700DevKit DeviceType = "stripeS700DevKit"
	DeviceTypeStripeM2         DeviceType = "stripeM2"
	DeviceTypeChipper2X        DeviceType = "chipper2X"
	DeviceTypeWisePad3         DeviceType = "wisePad3"
	DeviceTypeSimulated        DeviceType = "simulated"
)

var internetReaders = map[DeviceType]bool{
	DeviceTypeVerifoneP400:     true,
	DeviceTypeWisePosE:         true,
	DeviceTypeWisePosEDevKit:   true,
	DeviceTypeEtna:             true,
	DeviceTypeStripeS700:       true,
	DeviceTypeStripeS700DevKit: true,
}

// IsInternetReader reports whether intents for this reader must be created by the backend
func (d DeviceType) IsInternetReader() bool {
	return internetReaders[d]
}

// CaptureMethod of a payment intent
type CaptureMethod string

const (
	CaptureMethodAutomatic CaptureMethod = "automatic"
	CaptureMethodManual    CaptureMethod = "manual"
)

// IntentStatus of a payment intent
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusCanceled              IntentStatus = "canceled"
	IntentStatusSucceeded             IntentStatus = "succeeded"
)

// IntentParams describes the intent created for a project purchase
type IntentParams struct {
	Amount                 int64         `json:"amount"`
	Currency               string        `json:"currency"`
	CaptureMethod          CaptureMethod `json:"capture_method"`
	Description            string        `json:"description"`
	PaymentMethodTypes     []string      `json:"payment_method_types"`
	RequestExtendedAuth    bool          `json:"-"`
	RequestIncrementalAuth bool          `json:"-"`
}

// NewIntentParams builds the intent parameters for one mint of p
func NewIntentParams(p *project.Project) *IntentParams {
	return &IntentParams{
		Amount:             p.PriceAmountCents,
		Currency:           CurrencyUSD,
		CaptureMethod:      CaptureMethodAutomatic,
		Description:        p.Title,
		PaymentMethodTypes: []string{PaymentMethodCardPresent},
	}
}

// Intent is a payment intent as seen by the reader
type Intent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"-"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	Status       IntentStatus `json:"status"`
}

// CollectConfig tunes how the reader collects the card
type CollectConfig struct {
	SkipTipping bool `json:"skipTipping"`
}

// Step is one call of the payment sequence
type Step string

const (
	StepBackendCreateIntent Step = "backend.createPaymentIntent"
	StepRetrieveIntent      Step = "terminal.retrievePaymentIntent"
	StepCreateIntent        Step = "terminal.createPaymentIntent"
	StepCollect             Step = "terminal.collectPaymentMethod"
	StepProcess             Step = "terminal.processPayment"
	StepCapture             Step = "backend.capturePaymentIntent"
)

// StepResult of an executed step
type StepResult string

const (
	StepResultSucceeded StepResult = "succeeded"
	StepResultErrored   StepResult = "errored"
)

// Event records the outcome of one step
type Event struct {
	Step   Step       `json:"step"`
	Result StepResult `json:"result"`
	Detail string     `json:"detail,omitempty"`
	At     time.Time  `json:"at"`
}

// Charge is the outcome of a card payment for one mint
type Charge struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"projectId"`
	Amount    int64        `json:"amount"`
	Paid      bool         `json:"paid"`
	IntentID  string       `json:"intentId,omitempty"`
	Status    IntentStatus `json:"status,omitempty"`
	Events    []Event      `json:"events"`
}

// Record appends the outcome of a step
func (c *Charge) Record(step Step, err error, detail string, now time.Time) {
	e := Event{Step: step, Result: StepResultSucceeded, Detail: detail, At: now}
	if err != nil {
		e.Result = StepResultErrored
		e.Detail = err.Error()
	}
	c.Events = append(c.Events, e)
}

// Reader is the card terminal driven by the vendor SDK
type Reader interface {
	DeviceType() DeviceType
	// Connected reports whether the reader finished connecting with a connection token
	Connected() bool
	CreatePaymentIntent(ctx ctx.Ctx, params *IntentParams) (*Intent, error)
	RetrievePaymentIntent(ctx ctx.Ctx, clientSecret string) (*Intent, error)
	CollectPaymentMethod(ctx ctx.Ctx, intent *Intent, cfg *CollectConfig) (*Intent, error)
	ProcessPayment(ctx ctx.Ctx, intent *Intent) (*Intent, error)
}

// Backend is the payment side of the vendor API
type Backend interface {
	ConnectionToken(ctx ctx.Ctx) (string, error)
	CreatePaymentIntent(ctx ctx.Ctx, params *IntentParams) (string, error)
	CapturePaymentIntent(ctx ctx.Ctx, intentID string) error
}

// ChargeRequest pays for one mint of a project
type ChargeRequest struct {
	ProjectID   string `json:"project" validate:"required"`
	SkipTipping bool   `json:"skipTipping"`
}

type Usecase interface {
	// Charge runs the reader payment sequence; free projects are paid without a reader
	Charge(ctx ctx.Ctx, req *ChargeRequest) (*Charge, error)
}
