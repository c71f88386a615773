package usecase

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/payment"
	"github.com/x-xyz/mintingkit/domain/project"
)

type PaymentUseCaseCfg struct {
	Project project.Usecase
	Backend payment.Backend
	Reader  payment.Reader
	// CaptureMethod of created intents, automatic when empty
	CaptureMethod payment.CaptureMethod
}

type impl struct {
	project       project.Usecase
	backend       payment.Backend
	reader        payment.Reader
	captureMethod payment.CaptureMethod
	met           metrics.Service
	now           func() time.Time
}

func New(cfg *PaymentUseCaseCfg) payment.Usecase {
	if cfg.CaptureMethod == "" {
		cfg.CaptureMethod = payment.CaptureMethodAutomatic
	}
	return &impl{
		project:       cfg.Project,
		backend:       cfg.Backend,
		reader:        cfg.Reader,
		captureMethod: cfg.CaptureMethod,
		met:           metrics.New("payment"),
		now:           time.Now,
	}
}

// Charge runs create intent, collect, process and, when the intent waits for it, capture.
// The returned charge carries every executed step even when err is not nil.
func (im *impl) Charge(c bCtx.Ctx, req *payment.ChargeRequest) (*payment.Charge, error) {
	p, err := im.project.Get(c, req.ProjectID)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"projectId": req.ProjectID,
		}).Error("failed to project.Get")
		return nil, err
	}

	charge := &payment.Charge{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		Amount:    p.PriceAmountCents,
		Events:    []payment.Event{},
	}
	c = bCtx.WithValues(c, map[string]interface{}{"chargeId": charge.ID, "projectId": p.ID})

	if p.IsFree() {
		charge.Paid = true
		im.met.BumpSum("free", 1)
		return charge, nil
	}
	if im.reader == nil || !im.reader.Connected() {
		return charge, domain.ErrReaderNotConnected
	}

	defer im.met.BumpTime("charge.time", "deviceType", string(im.reader.DeviceType())).End()

	params := payment.NewIntentParams(p)
	params.CaptureMethod = im.captureMethod

	intent, err := im.createIntent(c, charge, params)
	if err != nil {
		return charge, err
	}
	charge.IntentID = intent.ID

	intent, err = im.reader.CollectPaymentMethod(c, intent, &payment.CollectConfig{SkipTipping: req.SkipTipping})
	charge.Record(payment.StepCollect, err, charge.IntentID, im.now())
	if err != nil {
		return charge, im.fail(c, payment.StepCollect, err)
	}

	intent, err = im.reader.ProcessPayment(c, intent)
	charge.Record(payment.StepProcess, err, charge.IntentID, im.now())
	if err != nil {
		return charge, im.fail(c, payment.StepProcess, err)
	}
	charge.Status = intent.Status

	switch intent.Status {
	case payment.IntentStatusSucceeded:
	case payment.IntentStatusRequiresCapture:
		err := im.backend.CapturePaymentIntent(c, intent.ID)
		charge.Record(payment.StepCapture, err, intent.ID, im.now())
		if err != nil {
			return charge, im.fail(c, payment.StepCapture, err)
		}
		charge.Status = payment.IntentStatusSucceeded
	default:
		im.met.BumpSum("unexpected_status", 1, "status", string(intent.Status))
		c.WithField("status", intent.Status).Error("unexpected intent status after processing")
		return charge, xerrors.Errorf("%w: %s", domain.ErrUnexpectedIntentStatus, intent.Status)
	}

	charge.Paid = true
	im.met.BumpSum("paid", 1)
	c.WithField("intent", intent.ID).Info("payment succeeded")
	return charge, nil
}

// createIntent lets the backend create intents for internet readers, other readers create their own
func (im *impl) createIntent(c bCtx.Ctx, charge *payment.Charge, params *payment.IntentParams) (*payment.Intent, error) {
	if !im.reader.DeviceType().IsInternetReader() {
		intent, err := im.reader.CreatePaymentIntent(c, params)
		charge.Record(payment.StepCreateIntent, err, "", im.now())
		if err != nil {
			return nil, im.fail(c, payment.StepCreateIntent, err)
		}
		return intent, nil
	}

	secret, err := im.backend.CreatePaymentIntent(c, params)
	charge.Record(payment.StepBackendCreateIntent, err, "", im.now())
	if err != nil {
		return nil, im.fail(c, payment.StepBackendCreateIntent, err)
	}
	intent, err := im.reader.RetrievePaymentIntent(c, secret)
	charge.Record(payment.StepRetrieveIntent, err, "", im.now())
	if err != nil {
		return nil, im.fail(c, payment.StepRetrieveIntent, err)
	}
	return intent, nil
}

func (im *impl) fail(c bCtx.Ctx, step payment.Step, err error) error {
	im.met.BumpSum("step.err", 1, "step", string(step))
	c.WithFields(log.Fields{
		"err":  err,
		"step": step,
	}).Error("payment step failed")
	return xerrors.Errorf("%w: %s", domain.ErrPaymentFailed, err.Error())
}

