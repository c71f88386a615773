package terminal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/payment"
)

type tokenFunc func(ctx.Ctx) (string, error)

func (f tokenFunc) ConnectionToken(c ctx.Ctx) (string, error) { return f(c) }

type simulatedSuite struct {
	suite.Suite

	ctx ctx.Ctx
	im  *Simulated
}

func TestSimulatedSuite(t *testing.T) {
	suite.Run(t, new(simulatedSuite))
}

func (s *simulatedSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.im = NewSimulated(SimulatedConfig{DeclineAmounts: []int64{101}})
	s.Require().NoError(s.im.Connect(s.ctx, tokenFunc(func(ctx.Ctx) (string, error) {
		return "pst_test", nil
	})))
}

func (s *simulatedSuite) params(amount int64, capture payment.CaptureMethod) *payment.IntentParams {
	return &payment.IntentParams{
		Amount:             amount,
		Currency:           payment.CurrencyUSD,
		CaptureMethod:      capture,
		PaymentMethodTypes: []string{payment.PaymentMethodCardPresent},
	}
}

func (s *simulatedSuite) TestConnect() {
	r := NewSimulated(SimulatedConfig{DeviceType: payment.DeviceTypeWisePosE})
	s.False(r.Connected())
	s.Equal(payment.DeviceTypeWisePosE, r.DeviceType())

	errToken := errors.New("402")
	s.Equal(errToken, r.Connect(s.ctx, tokenFunc(func(ctx.Ctx) (string, error) { return "", errToken })))
	s.Equal(domain.ErrReaderNotConnected, r.Connect(s.ctx, tokenFunc(func(ctx.Ctx) (string, error) { return "", nil })))
	s.False(r.Connected())

	_, err := r.CollectPaymentMethod(s.ctx, &payment.Intent{ID: "pi_1"}, &payment.CollectConfig{})
	s.Equal(domain.ErrReaderNotConnected, err)
}

func (s *simulatedSuite) TestAutomaticCapture() {
	intent, err := s.im.CreatePaymentIntent(s.ctx, s.params(12500, payment.CaptureMethodAutomatic))
	s.Require().NoError(err)
	s.Equal(payment.IntentStatusRequiresPaymentMethod, intent.Status)

	intent, err = s.im.CollectPaymentMethod(s.ctx, intent, &payment.CollectConfig{})
	s.Require().NoError(err)
	s.Equal(payment.IntentStatusRequiresConfirmation, intent.Status)

	intent, err = s.im.ProcessPayment(s.ctx, intent)
	s.Require().NoError(err)
	s.Equal(payment.IntentStatusSucceeded, intent.Status)

	// processing twice is rejected
	_, err = s.im.ProcessPayment(s.ctx, intent)
	s.ErrorIs(err, domain.ErrUnexpectedIntentStatus)
}

func (s *simulatedSuite) TestManualCapture() {
	intent, err := s.im.CreatePaymentIntent(s.ctx, s.params(500, payment.CaptureMethodManual))
	s.Require().NoError(err)
	intent, err = s.im.CollectPaymentMethod(s.ctx, intent, &payment.CollectConfig{})
	s.Require().NoError(err)
	intent, err = s.im.ProcessPayment(s.ctx, intent)
	s.Require().NoError(err)
	s.Equal(payment.IntentStatusRequiresCapture, intent.Status)
}

func (s *simulatedSuite) TestDecline() {
	intent, err := s.im.CreatePaymentIntent(s.ctx, s.params(101, payment.CaptureMethodAutomatic))
	s.Require().NoError(err)
	intent, err = s.im.CollectPaymentMethod(s.ctx, intent, &payment.CollectConfig{})
	s.Require().NoError(err)
	_, err = s.im.ProcessPayment(s.ctx, intent)
	s.Equal(ErrCardDeclined, err)
}

func (s *simulatedSuite) TestRetrievePaymentIntent() {
	created, err := s.im.CreatePaymentIntent(s.ctx, s.params(100, payment.CaptureMethodAutomatic))
	s.Require().NoError(err)

	got, err := s.im.RetrievePaymentIntent(s.ctx, created.ClientSecret)
	s.NoError(err)
	s.Equal(created.ID, got.ID)

	_, err = s.im.RetrievePaymentIntent(s.ctx, created.ID+"_secret_forged")
	s.Equal(ErrIntentNotFound, err)

	_, err = s.im.RetrievePaymentIntent(s.ctx, "garbage")
	s.Equal(ErrIntentNotFound, err)

	adopted, err := s.im.RetrievePaymentIntent(s.ctx, "pi_backend_secret_xyz")
	s.NoError(err)
	s.Equal("pi_backend", adopted.ID)
	s.Equal(payment.IntentStatusRequiresPaymentMethod, adopted.Status)
}

type fixedBackend struct {
	secret string
}

func (b *fixedBackend) ConnectionToken(ctx.Ctx) (string, error) { return "pst_test", nil }

func (b *fixedBackend) CreatePaymentIntent(ctx.Ctx, *payment.IntentParams) (string, error) {
	return b.secret, nil
}

func (b *fixedBackend) CapturePaymentIntent(ctx.Ctx, string) error { return nil }

func (s *simulatedSuite) TestTrackedBackendDecline() {
	backend := s.im.Track(&fixedBackend{secret: "pi_remote_secret_abc"})

	secret, err := backend.CreatePaymentIntent(s.ctx, s.params(101, payment.CaptureMethodAutomatic))
	s.Require().NoError(err)
	intent, err := s.im.RetrievePaymentIntent(s.ctx, secret)
	s.Require().NoError(err)
	s.Equal(int64(101), intent.Amount)

	intent, err = s.im.CollectPaymentMethod(s.ctx, intent, &payment.CollectConfig{})
	s.Require().NoError(err)
	_, err = s.im.ProcessPayment(s.ctx, intent)
	s.Equal(ErrCardDeclined, err)
}

func (s *simulatedSuite) TestTrackedBackendManualCapture() {
	backend := s.im.Track(&fixedBackend{secret: "pi_manual_secret_abc"})

	secret, err := backend.CreatePaymentIntent(s.ctx, s.params(500, payment.CaptureMethodManual))
	s.Require().NoError(err)
	intent, err := s.im.RetrievePaymentIntent(s.ctx, secret)
	s.Require().NoError(err)
	intent, err = s.im.CollectPaymentMethod(s.ctx, intent, &payment.CollectConfig{})
	s.Require().NoError(err)
	intent, err = s.im.ProcessPayment(s.ctx, intent)
	s.NoError(err)
	s.Equal(payment.IntentStatusRequiresCapture, intent.Status)
	s.Equal(int64(500), intent.Amount)
}
