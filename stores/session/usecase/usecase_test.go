package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/session"
	"github.com/x-xyz/mintingkit/domain/session/mocks"
)

type sessionTestSuite struct {
	suite.Suite
	repo     *mocks.Repo
	unlocker *mocks.Unlocker
	now      time.Time
	im       *impl
}

func TestSessionUsecase(t *testing.T) {
	suite.Run(t, new(sessionTestSuite))
}

func (s *sessionTestSuite) SetupTest() {
	s.repo = &mocks.Repo{}
	s.unlocker = &mocks.Unlocker{}
	s.now = time.Now()
	s.im = New(&SessionUseCaseCfg{
		Repo:      s.repo,
		Unlocker:  s.unlocker,
		LoginURL:  "https://minting-api.artblocks.io/app/?appauth=true",
		JwtSecret: "jwt-secret",
		DeviceID:  "kiosk-1",
	}).(*impl)
	s.im.now = func() time.Time { return s.now }
}

func (s *sessionTestSuite) TestLoginURL() {
	s.Equal("https://minting-api.artblocks.io/app/?appauth=true", s.im.LoginURL())
}

func (s *sessionTestSuite) TestHandleCallback() {
	s.repo.On("Save", mock.Anything, &session.Session{Token: "abc123", LastOpened: s.now}).Return(nil).Once()

	grant, err := s.im.HandleCallback(ctx.Background(), "txlessauth://abc123")
	s.NoError(err)
	s.NotEmpty(grant.KioskToken)
	s.Equal(s.now.Add(DefaultKioskTokenTTL), grant.ExpiresAt)

	device, err := s.im.ParseToken(ctx.Background(), grant.KioskToken)
	s.NoError(err)
	s.Equal("kiosk-1", device)
	s.repo.AssertExpectations(s.T())
}

func (s *sessionTestSuite) TestHandleCallbackWithoutToken() {
	_, err := s.im.HandleCallback(ctx.Background(), "txlessauth://")
	s.Equal(domain.ErrTokenMissing, err)

	_, err = s.im.HandleCallback(ctx.Background(), "https://evil.example/abc")
	s.ErrorIs(err, domain.ErrBadParamInput)
	s.repo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *sessionTestSuite) TestRestoreFresh() {
	s.repo.On("Get", mock.Anything).Return(&session.Session{Token: "abc123", LastOpened: s.now.Add(-5*24*time.Hour - time.Hour)}, nil)
	s.unlocker.On("Unlock", mock.Anything, unlockReason, "1234").Return(true, nil).Once()

	grant, err := s.im.Restore(ctx.Background(), "1234")
	s.NoError(err)
	s.NotEmpty(grant.KioskToken)

	tkn, err := s.im.Token(ctx.Background())
	s.NoError(err)
	s.Equal("abc123", tkn)
}

func (s *sessionTestSuite) TestRestoreExpired() {
	s.repo.On("Get", mock.Anything).Return(&session.Session{Token: "abc123", LastOpened: s.now.Add(-6 * 24 * time.Hour)}, nil)

	_, err := s.im.Restore(ctx.Background(), "1234")
	s.Equal(domain.ErrSessionExpired, err)
	_, err = s.im.Token(ctx.Background())
	s.Equal(domain.ErrSessionExpired, err)
	s.unlocker.AssertNotCalled(s.T(), "Unlock", mock.Anything, mock.Anything, mock.Anything)
}

func (s *sessionTestSuite) TestRestoreMissing() {
	s.repo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound)

	_, err := s.im.Restore(ctx.Background(), "1234")
	s.Equal(domain.ErrSessionExpired, err)
}

func (s *sessionTestSuite) TestRestoreLocked() {
	s.repo.On("Get", mock.Anything).Return(&session.Session{Token: "abc123", LastOpened: s.now}, nil)
	s.unlocker.On("Unlock", mock.Anything, unlockReason, "0000").Return(false, nil).Once()

	_, err := s.im.Restore(ctx.Background(), "0000")
	s.Equal(domain.ErrLocked, err)
}

func (s *sessionTestSuite) TestRestoreDeniedByDefault() {
	s.repo.On("Get", mock.Anything).Return(&session.Session{Token: "abc123", LastOpened: s.now}, nil)
	im := New(&SessionUseCaseCfg{Repo: s.repo, JwtSecret: "jwt-secret", DeviceID: "kiosk-1"})

	_, err := im.Restore(ctx.Background(), "")
	s.Equal(domain.ErrLocked, err)
	_, err = im.Restore(ctx.Background(), "1234")
	s.Equal(domain.ErrLocked, err)
}

func (s *sessionTestSuite) TestPinUnlocker() {
	u := PinUnlocker{Pin: "1234"}
	for credential, want := range map[string]bool{"1234": true, "": false, "123": false, "12345": false} {
		ok, err := u.Unlock(ctx.Background(), unlockReason, credential)
		s.NoError(err)
		s.Equal(want, ok, credential)
	}

	ok, err := PinUnlocker{}.Unlock(ctx.Background(), unlockReason, "")
	s.NoError(err)
	s.False(ok)
}

func (s *sessionTestSuite) TestUnlockError() {
	s.unlocker.On("Unlock", mock.Anything, unlockReason, "1234").Return(false, errors.New("prompt failed")).Once()
	s.EqualError(s.im.Unlock(ctx.Background(), "1234"), "prompt failed")
}

func (s *sessionTestSuite) TestLogout() {
	s.repo.On("Delete", mock.Anything).Return(errors.New("redis down")).Once()
	s.EqualError(s.im.Logout(ctx.Background()), "redis down")
}

func (s *sessionTestSuite) TestParseTokenWrongSecret() {
	other := New(&SessionUseCaseCfg{Repo: s.repo, JwtSecret: "other", DeviceID: "kiosk-2"}).(*impl)
	grant, err := other.grant(ctx.Background())
	s.NoError(err)

	_, err = s.im.ParseToken(ctx.Background(), grant.KioskToken)
	s.Error(err)
}
