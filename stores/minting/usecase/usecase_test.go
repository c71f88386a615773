package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/viney-shih/goroutines"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/ptr"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	mMinting "github.com/x-xyz/mintingkit/domain/minting/mocks"
	"github.com/x-xyz/mintingkit/service/mintapi"
	"github.com/x-xyz/mintingkit/service/mintapi/mocks"
)

const (
	lowerWallet = "0x2ab205962f213ddc525b09b23c4c468b6910da15"
	embedURL    = "https://generator.artblocks.io/0x0583/16?render=true"
)

var wallet = common.HexToAddress(lowerWallet).Hex()

func pending(id string, confirmations int) *minting.Minting {
	return &minting.Minting{
		ID:                 id,
		Project:            "0x0583-p-1",
		BlockConfirmations: ptr.Int(confirmations),
		ShareURL:           "https://artblocks.io/token/16",
	}
}

func revealed(id string) *minting.Minting {
	m := pending(id, minting.RenderBlockConfirmations)
	m.EmbedURL = embedURL
	m.IsPaid = ptr.Bool(true)
	m.Receipt = json.RawMessage(`{"transaction_hash":"0xabc"}`)
	return m
}

type mintingTestSuite struct {
	suite.Suite
	client   *mocks.Client
	repo     *mMinting.Repo
	notifier *mMinting.Notifier
	archive  *mMinting.ReceiptArchive
	pool     *goroutines.Pool
	im       *impl
}

func TestMintingUsecase(t *testing.T) {
	suite.Run(t, new(mintingTestSuite))
}

func (s *mintingTestSuite) SetupTest() {
	s.client = &mocks.Client{}
	s.repo = &mMinting.Repo{}
	s.notifier = &mMinting.Notifier{}
	s.archive = &mMinting.ReceiptArchive{}
	s.pool = goroutines.NewPool(2)
	s.im = s.newUsecase(false)
}

func (s *mintingTestSuite) TearDownTest() {
	s.pool.Release()
}

func (s *mintingTestSuite) newUsecase(useSocket bool) *impl {
	return New(&MintingUseCaseCfg{
		Client:        s.client,
		Repo:          s.repo,
		Notifier:      s.notifier,
		Archive:       s.archive,
		WorkerPool:    s.pool,
		PollInterval:  time.Millisecond,
		RetryInterval: time.Millisecond,
		UseSocket:     useSocket,
	}).(*impl)
}

func (s *mintingTestSuite) TestCheckMintable() {
	s.client.On("CheckMintable", mock.Anything, "p-1").Return(&minting.Mintability{Mintable: true}, nil).Once()
	s.client.On("CheckMintable", mock.Anything, "p-2").Return(nil, errors.New("timeout")).Once()

	res, err := s.im.CheckMintable(bCtx.Background(), "p-1")
	s.NoError(err)
	s.True(res.Mintable)

	res, err = s.im.CheckMintable(bCtx.Background(), "p-2")
	s.EqualError(err, "timeout")
	s.Equal(&minting.Mintability{Mintable: false, Message: "Unable to verify project status."}, res)
}

func (s *mintingTestSuite) TestMintInvalidWallet() {
	_, err := s.im.Mint(bCtx.Background(), &minting.MintRequest{ProjectID: "p-1", DestinationWallet: "vitalik.eth"})
	s.ErrorIs(err, domain.ErrInvalidAddress)

	_, err = s.im.Mint(bCtx.Background(), &minting.MintRequest{DestinationWallet: lowerWallet})
	s.Equal(domain.ErrBadParamInput, err)
	s.client.AssertNotCalled(s.T(), "CreateMinting", mock.Anything, mock.Anything, mock.Anything)
}

func (s *mintingTestSuite) TestMintCreateFails() {
	s.client.On("CreateMinting", mock.Anything, "p-1", domain.Address(wallet)).
		Return(nil, &mintapi.StatusError{StatusCode: 403}).Once()

	_, err := s.im.Mint(bCtx.Background(), &minting.MintRequest{ProjectID: "p-1", DestinationWallet: lowerWallet})
	s.Error(err)
	s.Equal(MsgForbidden, UserMessage(err))
	s.repo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *mintingTestSuite) TestMintWatchesInBackground() {
	archived := make(chan struct{})
	s.client.On("CreateMinting", mock.Anything, "p-1", domain.Address(wallet)).Return(pending("m-1", 0), nil).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(nil, errors.New("reset")).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(pending("m-1", 1), nil).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(revealed("m-1"), nil).Once()
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	s.repo.On("Patch", mock.Anything, "m-1", mock.MatchedBy(func(p *minting.RecordPatch) bool {
		return p.ReceiptURL != nil && *p.ReceiptURL == "https://storage.example/receipts/m-1.json" && p.UpdatedAt != nil
	})).Run(func(mock.Arguments) {
		close(archived)
	}).Return(nil).Once()
	s.notifier.On("NotifyRevealed", mock.Anything, mock.Anything).Return(nil).Once()
	s.archive.On("Store", mock.Anything, "m-1", []byte(`{"transaction_hash":"0xabc"}`)).
		Return("https://storage.example/receipts/m-1.json", nil).Once()

	m, err := s.im.Mint(bCtx.Background(), &minting.MintRequest{ProjectID: "p-1", DestinationWallet: lowerWallet})
	s.NoError(err)
	s.Equal("m-1", m.ID)

	select {
	case <-archived:
	case <-time.After(5 * time.Second):
		s.FailNow("minting was not archived")
	}

	record := s.notifier.Calls[0].Arguments.Get(1).(*minting.Record)
	s.Equal(minting.StatusRevealed, record.Status)
	s.Equal(wallet, record.DestinationWallet)
	s.Equal(embedURL, record.EmbedURL)
	s.True(record.IsPaid)
	s.Equal("https://storage.example/receipts/m-1.json", record.ReceiptURL)
	s.client.AssertExpectations(s.T())
}

func (s *mintingTestSuite) TestWatchPolling() {
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(nil, errors.New("reset")).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(pending("m-1", 1), nil).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(revealed("m-1"), nil).Once()

	progress := []minting.Progress{}
	m, err := s.im.Watch(bCtx.Background(), "m-1", func(p minting.Progress) {
		progress = append(progress, p)
	})
	s.NoError(err)
	s.Equal(embedURL, m.EmbedURL)
	s.Equal([]minting.Progress{
		{MintID: "m-1", BlockConfirmations: 1, ShareURL: "https://artblocks.io/token/16"},
		{MintID: "m-1", BlockConfirmations: 3, ShareURL: "https://artblocks.io/token/16", Revealed: true},
	}, progress)
}

func (s *mintingTestSuite) TestWatchEmbedWithoutConfirmations() {
	early := pending("m-1", 2)
	early.EmbedURL = embedURL
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(early, nil).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(revealed("m-1"), nil).Once()

	m, err := s.im.Watch(bCtx.Background(), "m-1", nil)
	s.NoError(err)
	s.Equal(3, m.Confirmations())
	s.client.AssertNumberOfCalls(s.T(), "RetrieveMinting", 2)
}

func (s *mintingTestSuite) TestWatchReceiptError() {
	failed := pending("m-1", 0)
	failed.Receipt = json.RawMessage(`{"errors":"execution reverted"}`)
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(failed, nil).Once()

	_, err := s.im.Watch(bCtx.Background(), "m-1", nil)
	s.ErrorIs(err, domain.ErrMintFailed)
	s.Contains(err.Error(), "execution reverted")
}

func (s *mintingTestSuite) TestWatchKeepsConfirmations() {
	omitted := revealed("m-1")
	omitted.BlockConfirmations = nil
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(pending("m-1", minting.RenderBlockConfirmations), nil).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(omitted, nil).Once()

	progress := []minting.Progress{}
	m, err := s.im.Watch(bCtx.Background(), "m-1", func(p minting.Progress) {
		progress = append(progress, p)
	})
	s.NoError(err)
	s.Equal(embedURL, m.EmbedURL)
	s.Equal(minting.RenderBlockConfirmations, m.Confirmations())
	s.Require().Len(progress, 2)
	s.Equal(minting.RenderBlockConfirmations, progress[1].BlockConfirmations)
	s.True(progress[1].Revealed)
}

func (s *mintingTestSuite) TestWatchSessionExpired() {
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(nil, domain.ErrSessionExpired).Once()

	c, cancel := bCtx.WithTimeout(bCtx.Background(), time.Second)
	defer cancel()
	_, err := s.im.Watch(c, "m-1", nil)
	s.Equal(domain.ErrSessionExpired, err)
	s.NoError(c.Err())
	s.client.AssertNumberOfCalls(s.T(), "RetrieveMinting", 1)
}

func (s *mintingTestSuite) TestWatchCancelled() {
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(pending("m-1", 0), nil)

	c, cancel := bCtx.WithTimeout(bCtx.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.im.Watch(c, "m-1", nil)
	s.Equal(context.DeadlineExceeded, err)
}

func (s *mintingTestSuite) TestWatchSocket() {
	im := s.newUsecase(true)
	s.client.On("SubscribeMinting", mock.Anything, "m-1", mock.Anything).Return(
		func(c bCtx.Ctx, mintID string, onUpdate func(*minting.Minting)) error {
			onUpdate(pending(mintID, 1))
			onUpdate(revealed(mintID))
			<-c.Done()
			return c.Err()
		}).Once()

	count := 0
	m, err := im.Watch(bCtx.Background(), "m-1", func(minting.Progress) { count++ })
	s.NoError(err)
	s.True(m.Revealed(minting.RenderBlockConfirmations))
	s.Equal(2, count)
	s.client.AssertNotCalled(s.T(), "RetrieveMinting", mock.Anything, mock.Anything)
}

func (s *mintingTestSuite) TestWatchSocketFallsBackToPolling() {
	im := s.newUsecase(true)
	s.client.On("SubscribeMinting", mock.Anything, "m-1", mock.Anything).Return(domain.ErrSocket).Once()
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(revealed("m-1"), nil).Once()

	m, err := im.Watch(bCtx.Background(), "m-1", nil)
	s.NoError(err)
	s.Equal(embedURL, m.EmbedURL)
}

func (s *mintingTestSuite) TestGetWithholdsEmbed() {
	early := pending("m-1", 2)
	early.EmbedURL = embedURL
	s.client.On("RetrieveMinting", mock.Anything, "m-1").Return(early, nil).Once()

	m, err := s.im.Get(bCtx.Background(), "m-1")
	s.NoError(err)
	s.Equal("", m.EmbedURL)
	s.Equal(2, m.Confirmations())
}

func (s *mintingTestSuite) TestLatest() {
	other := revealed("m-0")
	other.Project = "0x0583-p-9"
	s.client.On("ListMintings", mock.Anything).Return(nil, errors.New("reset")).Once()
	s.client.On("ListMintings", mock.Anything).Return([]*minting.Minting{other, pending("m-2", 0), revealed("m-1")}, nil).Once()

	m, err := s.im.Latest(bCtx.Background(), "p-1")
	s.NoError(err)
	s.Equal("m-1", m.ID)
}

func (s *mintingTestSuite) TestLatestNotFound() {
	s.client.On("ListMintings", mock.Anything).Return([]*minting.Minting{pending("m-2", 0)}, nil).Once()

	_, err := s.im.Latest(bCtx.Background(), "p-1")
	s.Equal(domain.ErrNotFound, err)
}

func (s *mintingTestSuite) TestLatestSessionExpired() {
	s.client.On("ListMintings", mock.Anything).Return(nil, domain.ErrSessionExpired).Once()

	_, err := s.im.Latest(bCtx.Background(), "p-1")
	s.Equal(domain.ErrSessionExpired, err)
	s.client.AssertNumberOfCalls(s.T(), "ListMintings", 1)
}

func (s *mintingTestSuite) TestHistory() {
	records := []*minting.Record{{ID: "m-1"}}
	s.repo.On("FindAll", mock.Anything, mock.Anything).Return(records, nil).Once()

	res, err := s.im.History(bCtx.Background(), minting.WithProjectID("p-1"))
	s.NoError(err)
	s.Equal(records, res)
}

func (s *mintingTestSuite) TestUserMessage() {
	s.Equal("", UserMessage(nil))
	s.Equal(MsgForbidden, UserMessage(&mintapi.StatusError{StatusCode: 403}))
	s.Equal(MsgOutdated, UserMessage(&mintapi.StatusError{StatusCode: 410}))
	s.Equal(MsgServerError, UserMessage(&mintapi.StatusError{StatusCode: 500}))
	s.Equal(MsgConnection, UserMessage(errors.New("dial tcp: connection refused")))
}
