package usecase

import (
	"crypto/subtle"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/xerrors"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/session"
)

const (
	// DefaultKioskTokenTTL is the lifetime of a kiosk operator token
	DefaultKioskTokenTTL = 24 * time.Hour

	unlockReason = "We need to unlock your data."
)

type SessionUseCaseCfg struct {
	Repo          session.Repo
	Unlocker      session.Unlocker
	LoginURL      string
	JwtSecret     string
	DeviceID      string
	KioskTokenTTL time.Duration
}

type impl struct {
	repo          session.Repo
	unlocker      session.Unlocker
	loginURL      string
	jwtSecret     []byte
	deviceID      string
	kioskTokenTTL time.Duration
	now           func() time.Time
}

func New(cfg *SessionUseCaseCfg) session.Usecase {
	if cfg.KioskTokenTTL <= 0 {
		cfg.KioskTokenTTL = DefaultKioskTokenTTL
	}
	unlocker := cfg.Unlocker
	if unlocker == nil {
		unlocker = PinUnlocker{}
	}
	return &impl{
		repo:          cfg.Repo,
		unlocker:      unlocker,
		loginURL:      cfg.LoginURL,
		jwtSecret:     []byte(cfg.JwtSecret),
		deviceID:      cfg.DeviceID,
		kioskTokenTTL: cfg.KioskTokenTTL,
		now:           time.Now,
	}
}

// PinUnlocker unlocks with the operator pin of the kiosk, it never unlocks without a configured pin
type PinUnlocker struct {
	Pin string
}

func (u PinUnlocker) Unlock(_ ctx.Ctx, _, credential string) (bool, error) {
	if u.Pin == "" || credential == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(u.Pin), []byte(credential)) == 1, nil
}

func (im *impl) LoginURL() string {
	return im.loginURL
}

// HandleCallback reads the token from the host of a txlessauth://<token> redirect
func (im *impl) HandleCallback(c ctx.Ctx, callbackURL string) (*session.Grant, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		c.WithField("err", err).Warn("failed to parse callback url")
		return nil, domain.ErrTokenMissing
	}
	if u.Scheme != "" && u.Scheme != session.CallbackScheme {
		c.WithField("scheme", u.Scheme).Warn("unexpected callback scheme")
		return nil, xerrors.Errorf("%w: scheme %s", domain.ErrBadParamInput, u.Scheme)
	}
	if u.Host == "" {
		return nil, domain.ErrTokenMissing
	}

	s := &session.Session{Token: u.Host, LastOpened: im.now()}
	if err := im.repo.Save(c, s); err != nil {
		c.WithField("err", err).Error("repo.Save failed")
		return nil, err
	}
	return im.grant(c)
}

func (im *impl) Restore(c ctx.Ctx, credential string) (*session.Grant, error) {
	if _, err := im.fresh(c); err != nil {
		return nil, err
	}
	if err := im.Unlock(c, credential); err != nil {
		return nil, err
	}
	return im.grant(c)
}

func (im *impl) Unlock(c ctx.Ctx, credential string) error {
	ok, err := im.unlocker.Unlock(c, unlockReason, credential)
	if err != nil {
		c.WithField("err", err).Error("unlocker.Unlock failed")
		return err
	}
	if !ok {
		c.Warn("unlock declined")
		return domain.ErrLocked
	}
	return nil
}

func (im *impl) Token(c ctx.Ctx) (string, error) {
	s, err := im.fresh(c)
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

func (im *impl) Logout(c ctx.Ctx) error {
	if err := im.repo.Delete(c); err != nil {
		c.WithField("err", err).Error("repo.Delete failed")
		return err
	}
	return nil
}

func (im *impl) fresh(c ctx.Ctx) (*session.Session, error) {
	s, err := im.repo.Get(c)
	if err == domain.ErrNotFound {
		return nil, domain.ErrSessionExpired
	} else if err != nil {
		c.WithField("err", err).Error("repo.Get failed")
		return nil, err
	}
	if !s.IsFresh(im.now()) {
		return nil, domain.ErrSessionExpired
	}
	return s, nil
}

func (im *impl) grant(c ctx.Ctx) (*session.Grant, error) {
	expiresAt := im.now().Add(im.kioskTokenTTL)
	claims := session.KioskClaims{
		DeviceID: im.deviceID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return nil, err
	} else {
		return &session.Grant{KioskToken: ss, ExpiresAt: expiresAt}, nil
	}
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &session.KioskClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})

	if token != nil {
		if claims, ok := token.Claims.(*session.KioskClaims); ok && token.Valid {
			return claims.DeviceID, nil
		}
	}

	return "", err
}
