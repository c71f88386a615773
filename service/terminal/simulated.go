package terminal

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/payment"
)

const secretSeparator = "_secret_"

var (
	// ErrCardDeclined is returned by the simulated reader for declined amounts
	ErrCardDeclined = xerrors.New("card declined")
	// ErrIntentNotFound is returned when a secret does not match a created intent
	ErrIntentNotFound = xerrors.New("payment intent not found")
)

// TokenProvider issues connection tokens for a reader
type TokenProvider interface {
	ConnectionToken(ctx ctx.Ctx) (string, error)
}

// SimulatedConfig tunes the simulated reader
type SimulatedConfig struct {
	DeviceType payment.DeviceType
	// DeclineAmounts lists the amounts in cents the reader declines
	DeclineAmounts []int64
}

// Simulated is an in-memory card reader for development and tests
type Simulated struct {
	cfg SimulatedConfig

	mu             sync.Mutex
	connected      bool
	intents        map[string]*payment.Intent
	captureMethods map[string]payment.CaptureMethod
	// params of intents created by a tracked backend, by intent id
	remote map[string]*payment.IntentParams
}

func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.DeviceType == "" {
		cfg.DeviceType = payment.DeviceTypeSimulated
	}
	return &Simulated{
		cfg:            cfg,
		intents:        map[string]*payment.Intent{},
		captureMethods: map[string]payment.CaptureMethod{},
		remote:         map[string]*payment.IntentParams{},
	}
}

// Track wraps backend so the intents it creates keep their amount and capture method
// when the reader retrieves them, as a real reader reads them from the payment provider
func (s *Simulated) Track(backend payment.Backend) payment.Backend {
	return &trackedBackend{Backend: backend, reader: s}
}

type trackedBackend struct {
	payment.Backend
	reader *Simulated
}

func (b *trackedBackend) CreatePaymentIntent(c ctx.Ctx, params *payment.IntentParams) (string, error) {
	secret, err := b.Backend.CreatePaymentIntent(c, params)
	if err != nil {
		return "", err
	}
	if id := intentID(secret); id != "" {
		p := *params
		b.reader.mu.Lock()
		b.reader.remote[id] = &p
		b.reader.mu.Unlock()
	}
	return secret, nil
}

// Connect fetches a connection token the way the reader SDK does before it accepts payments
func (s *Simulated) Connect(c ctx.Ctx, tokens TokenProvider) error {
	token, err := tokens.ConnectionToken(c)
	if err != nil {
		c.WithField("err", err).Error("failed to fetch connection token")
		return err
	}
	if token == "" {
		return domain.ErrReaderNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	c.WithField("deviceType", s.cfg.DeviceType).Info("simulated reader connected")
	return nil
}

func (s *Simulated) DeviceType() payment.DeviceType {
	return s.cfg.DeviceType
}

func (s *Simulated) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Simulated) CreatePaymentIntent(c ctx.Ctx, params *payment.IntentParams) (*payment.Intent, error) {
	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	intent := &payment.Intent{
		ID:           id,
		ClientSecret: id + secretSeparator + uuid.NewString(),
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       payment.IntentStatusRequiresPaymentMethod,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[id] = intent
	s.captureMethods[id] = params.CaptureMethod
	res := *intent
	return &res, nil
}

func (s *Simulated) RetrievePaymentIntent(c ctx.Ctx, clientSecret string) (*payment.Intent, error) {
	id := intentID(clientSecret)
	if id == "" {
		return nil, ErrIntentNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.intents[id]
	if !ok {
		// created by the backend, adopt it like the reader SDK fetching it remotely
		intent = &payment.Intent{
			ID:           id,
			ClientSecret: clientSecret,
			Currency:     payment.CurrencyUSD,
			Status:       payment.IntentStatusRequiresPaymentMethod,
		}
		if p, ok := s.remote[id]; ok {
			intent.Amount = p.Amount
			intent.Currency = p.Currency
			s.captureMethods[id] = p.CaptureMethod
		}
		s.intents[id] = intent
		c.WithField("intent", id).Debug("adopted backend intent")
	} else if intent.ClientSecret != clientSecret {
		return nil, ErrIntentNotFound
	}
	res := *intent
	return &res, nil
}

func (s *Simulated) CollectPaymentMethod(c ctx.Ctx, intent *payment.Intent, cfg *payment.CollectConfig) (*payment.Intent, error) {
	return s.transition(c, intent, payment.IntentStatusRequiresPaymentMethod, func(in *payment.Intent) error {
		in.Status = payment.IntentStatusRequiresConfirmation
		return nil
	})
}

func (s *Simulated) ProcessPayment(c ctx.Ctx, intent *payment.Intent) (*payment.Intent, error) {
	return s.transition(c, intent, payment.IntentStatusRequiresConfirmation, func(in *payment.Intent) error {
		for _, amount := range s.cfg.DeclineAmounts {
			if amount == in.Amount {
				in.Status = payment.IntentStatusRequiresPaymentMethod
				return ErrCardDeclined
			}
		}
		if s.captureMethods[in.ID] == payment.CaptureMethodManual {
			in.Status = payment.IntentStatusRequiresCapture
		} else {
			in.Status = payment.IntentStatusSucceeded
		}
		return nil
	})
}

func (s *Simulated) transition(c ctx.Ctx, intent *payment.Intent, from payment.IntentStatus, apply func(*payment.Intent) error) (*payment.Intent, error) {
	if !s.Connected() {
		return nil, domain.ErrReaderNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.intents[intent.ID]
	if !ok {
		return nil, ErrIntentNotFound
	}
	if stored.Status != from {
		c.WithFields(log.Fields{"intent": stored.ID, "status": stored.Status, "expected": from}).Warn("unexpected intent status")
		return nil, xerrors.Errorf("intent %s is %s: %w", stored.ID, stored.Status, domain.ErrUnexpectedIntentStatus)
	}
	if err := apply(stored); err != nil {
		return nil, err
	}
	res := *stored
	return &res, nil
}

func intentID(secret string) string {
	if i := strings.Index(secret, secretSeparator); i > 0 {
		return secret[:i]
	}
	return ""
}
