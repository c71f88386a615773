package usecase

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/x-xyz/mintingkit/base/backoff"
	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	"github.com/x-xyz/mintingkit/base/validator"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/service/mintapi"
)

const (
	// DefaultRetryInterval is the delay between two failed requests for the latest minting
	DefaultRetryInterval = 2500 * time.Millisecond
	// DefaultWatchTimeout bounds the background watch of a minting
	DefaultWatchTimeout = time.Hour

	scheduleTimeout = 3 * time.Second
)

type MintingUseCaseCfg struct {
	Client mintapi.Client
	Repo   minting.Repo
	// Notifier and Archive are optional
	Notifier minting.Notifier
	Archive  minting.ReceiptArchive
	// WorkerPool runs the background watches
	WorkerPool    *goroutines.Pool
	PollInterval  time.Duration
	RetryInterval time.Duration
	WatchTimeout  time.Duration
	// UseSocket streams updates over the websocket, polling when it fails
	UseSocket bool
}

type impl struct {
	client        mintapi.Client
	repo          minting.Repo
	notifier      minting.Notifier
	archive       minting.ReceiptArchive
	workerPool    *goroutines.Pool
	pollInterval  time.Duration
	retryInterval time.Duration
	watchTimeout  time.Duration
	useSocket     bool
	met           metrics.Service
	now           func() time.Time
}

func New(cfg *MintingUseCaseCfg) minting.Usecase {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = minting.PollInterval
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.WatchTimeout <= 0 {
		cfg.WatchTimeout = DefaultWatchTimeout
	}
	if cfg.WorkerPool == nil {
		cfg.WorkerPool = goroutines.NewPool(32, goroutines.WithTaskQueueLength(256), goroutines.WithPreAllocWorkers(4))
	}
	return &impl{
		client:        cfg.Client,
		repo:          cfg.Repo,
		notifier:      cfg.Notifier,
		archive:       cfg.Archive,
		workerPool:    cfg.WorkerPool,
		pollInterval:  cfg.PollInterval,
		retryInterval: cfg.RetryInterval,
		watchTimeout:  cfg.WatchTimeout,
		useSocket:     cfg.UseSocket,
		met:           metrics.New("minting"),
		now:           time.Now,
	}
}

func (im *impl) CheckMintable(c bCtx.Ctx, projectID string) (*minting.Mintability, error) {
	res, err := im.client.CheckMintable(c, projectID)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"projectId": projectID,
		}).Error("failed to client.CheckMintable")
		return &minting.Mintability{Mintable: false, Message: MsgUnknownMintable}, err
	}
	return res, nil
}

func (im *impl) Mint(c bCtx.Ctx, req *minting.MintRequest) (*minting.Minting, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, domain.ErrBadParamInput
	}
	wallet, ok := validator.ChecksumAddress(strings.TrimSpace(req.DestinationWallet))
	if !ok {
		return nil, xerrors.Errorf("%w: %s", domain.ErrInvalidAddress, req.DestinationWallet)
	}

	c = bCtx.WithValue(c, "projectId", req.ProjectID)
	m, err := im.client.CreateMinting(c, req.ProjectID, domain.Address(wallet))
	if err != nil {
		status, _ := mintapi.StatusCode(err)
		im.met.BumpSum("create.err", 1, "status", statusTag(status))
		c.WithFields(log.Fields{
			"err":    err,
			"wallet": wallet,
		}).Error("failed to client.CreateMinting")
		return nil, err
	}
	im.met.BumpSum("create", 1, "project", req.ProjectID)

	now := im.now()
	record := &minting.Record{
		ID:                m.ID,
		ProjectID:         req.ProjectID,
		DestinationWallet: wallet,
		CreatedAt:         now,
	}
	record.Apply(m, now)
	if err := im.repo.Upsert(c, record); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"mintId": m.ID,
		}).Error("failed to repo.Upsert")
	}

	im.watchInBackground(c, record)
	return m.Reveal(minting.RenderBlockConfirmations), nil
}

func (im *impl) watchInBackground(c bCtx.Ctx, record *minting.Record) {
	if record.Status == minting.StatusRevealed || record.Status == minting.StatusFailed {
		im.finish(bCtx.Detach(c), record, nil)
		return
	}
	err := im.workerPool.ScheduleWithTimeout(scheduleTimeout, func() {
		ctx, cancel := bCtx.WithTimeout(bCtx.Detach(c), im.watchTimeout)
		defer cancel()
		im.track(bCtx.WithValue(ctx, "mintId", record.ID), record)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"mintId": record.ID,
		}).Error("failed to ScheduleWithTimeout")
	}
}

// track keeps the history record in sync with the vendor until the minting settles
func (im *impl) track(c bCtx.Ctx, record *minting.Record) {
	last, err := im.watch(c, record.ID, func(m *minting.Minting) {
		before := *record
		record.Apply(m, im.now())
		if before.Status == record.Status && before.BlockConfirmations == record.BlockConfirmations {
			return
		}
		if err := im.repo.Upsert(c, record); err != nil {
			c.WithField("err", err).Error("failed to repo.Upsert")
		}
	})
	if err != nil && !errors.Is(err, domain.ErrMintFailed) {
		c.WithField("err", err).Warn("stopped watching minting")
		return
	}
	im.finish(c, record, last)
}

func (im *impl) finish(c bCtx.Ctx, record *minting.Record, last *minting.Minting) {
	if record.Status == minting.StatusRevealed {
		im.met.BumpSum("reveal", 1, "project", record.ProjectID)
		if im.notifier != nil {
			if err := im.notifier.NotifyRevealed(c, record); err != nil {
				c.WithField("err", err).Error("failed to notifier.NotifyRevealed")
			}
		}
	} else if record.Status == minting.StatusFailed {
		im.met.BumpSum("failed", 1, "project", record.ProjectID)
	}

	if im.archive == nil || last == nil || len(last.Receipt) == 0 {
		return
	}
	url, err := im.archive.Store(c, record.ID, last.Receipt)
	if err != nil {
		c.WithField("err", err).Error("failed to archive.Store")
		return
	}
	record.ReceiptURL = url
	record.UpdatedAt = im.now()
	patch := &minting.RecordPatch{ReceiptURL: &record.ReceiptURL, UpdatedAt: &record.UpdatedAt}
	if err := im.repo.Patch(c, record.ID, patch); err != nil {
		c.WithField("err", err).Error("failed to repo.Patch")
	}
}

func (im *impl) Get(c bCtx.Ctx, mintID string) (*minting.Minting, error) {
	m, err := im.client.RetrieveMinting(c, mintID)
	if err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"mintId": mintID,
		}).Error("failed to client.RetrieveMinting")
		return nil, err
	}
	return m.Reveal(minting.RenderBlockConfirmations), nil
}

func (im *impl) Watch(c bCtx.Ctx, mintID string, onUpdate func(minting.Progress)) (*minting.Minting, error) {
	m, err := im.watch(c, mintID, func(m *minting.Minting) {
		if onUpdate == nil {
			return
		}
		onUpdate(minting.Progress{
			MintID:             mintID,
			BlockConfirmations: m.Confirmations(),
			ShareURL:           m.ShareURL,
			Revealed:           m.Revealed(minting.RenderBlockConfirmations),
		})
	})
	if m != nil {
		m = m.Reveal(minting.RenderBlockConfirmations)
	}
	return m, err
}

func (im *impl) watch(c bCtx.Ctx, mintID string, onMinting func(*minting.Minting)) (*minting.Minting, error) {
	// responses may omit block_confirmations, the last known count stands then
	var confirmations *int
	onMinting = keepConfirmations(&confirmations, onMinting)
	if im.useSocket {
		m, err := im.subscribe(c, mintID, onMinting)
		if err == nil || errors.Is(err, domain.ErrMintFailed) || !mintapi.Retryable(err) || c.Err() != nil {
			return m, err
		}
		im.met.BumpSum("socket.err", 1)
		c.WithFields(log.Fields{
			"err":    err,
			"mintId": mintID,
		}).Warn("websocket failed, falling back to polling")
	}
	return im.poll(c, mintID, onMinting)
}

// poll requests the minting every poll interval, failures are retried after the same delay
// unless the session is gone
func (im *impl) poll(c bCtx.Ctx, mintID string, onMinting func(*minting.Minting)) (*minting.Minting, error) {
	b := backoff.NewConstant(im.pollInterval)
	for {
		if err := b.Backoff(c); err != nil {
			return nil, err
		}
		m, err := im.client.RetrieveMinting(c, mintID)
		if err != nil && !mintapi.Retryable(err) {
			c.WithFields(log.Fields{
				"err":    err,
				"mintId": mintID,
			}).Error("failed to client.RetrieveMinting")
			return nil, err
		} else if err != nil {
			im.met.BumpSum("poll.err", 1)
			c.WithFields(log.Fields{
				"err":     err,
				"mintId":  mintID,
				"attempt": b.Count(),
			}).Warn("failed to client.RetrieveMinting, retrying")
			continue
		}
		onMinting(m)
		if done, err := settled(m); done {
			return m, err
		}
	}
}

func (im *impl) subscribe(c bCtx.Ctx, mintID string, onMinting func(*minting.Minting)) (*minting.Minting, error) {
	ctx, cancel := bCtx.WithCancel(c)
	defer cancel()

	var (
		last   *minting.Minting
		result error
	)
	err := im.client.SubscribeMinting(ctx, mintID, func(m *minting.Minting) {
		onMinting(m)
		if done, err := settled(m); done {
			last, result = m, err
			cancel()
		}
	})
	if last != nil {
		return last, result
	}
	if err == nil {
		return nil, domain.ErrSocket
	}
	return nil, err
}

// keepConfirmations fills omitted confirmations in place with the last known count
func keepConfirmations(last **int, onMinting func(*minting.Minting)) func(*minting.Minting) {
	return func(m *minting.Minting) {
		*m = *m.KeepConfirmations(*last)
		*last = m.BlockConfirmations
		onMinting(m)
	}
}

// settled reports whether watching can stop, with ErrMintFailed when the receipt carries errors
func settled(m *minting.Minting) (bool, error) {
	if e := m.ReceiptError(); e != "" {
		return true, xerrors.Errorf("%w: %s", domain.ErrMintFailed, e)
	}
	return m.Revealed(minting.RenderBlockConfirmations), nil
}

func (im *impl) Latest(c bCtx.Ctx, projectID string) (*minting.Minting, error) {
	b := backoff.NewConstant(im.retryInterval)
	for {
		list, err := im.client.ListMintings(c)
		if err == nil {
			for _, m := range list {
				if strings.Contains(m.Project, projectID) && m.EmbedURL != "" {
					return m, nil
				}
			}
			return nil, domain.ErrNotFound
		}
		if !mintapi.Retryable(err) {
			c.WithField("err", err).Error("failed to client.ListMintings")
			return nil, err
		}
		c.WithFields(log.Fields{
			"err":       err,
			"projectId": projectID,
		}).Warn("failed to client.ListMintings, retrying")
		if bErr := b.Backoff(c); bErr != nil {
			return nil, err
		}
	}
}

func (im *impl) History(c bCtx.Ctx, opts ...minting.FindAllOptionsFunc) ([]*minting.Record, error) {
	res, err := im.repo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("failed to repo.FindAll")
		return nil, err
	}
	return res, nil
}

func statusTag(status int) string {
	if status == 0 {
		return metrics.TagValueNA
	}
	return strconv.Itoa(status)
}
