package session

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/x-xyz/mintingkit/base/ctx"
)

const (
	// FreshnessDays is how many whole days a stored token may be reused without logging in again
	FreshnessDays = 6
	// CallbackScheme is the url scheme the browser login redirects to
	CallbackScheme = "txlessauth"
)

// Session is the vendor token stored on the device
type Session struct {
	Token      string    `json:"token"`
	LastOpened time.Time `json:"lastOpened"`
}

// ElapsedDays counts whole days between the last login and now
func (s *Session) ElapsedDays(now time.Time) int {
	if now.Before(s.LastOpened) {
		return 0
	}
	return int(now.Sub(s.LastOpened) / (24 * time.Hour))
}

// IsFresh reports whether the stored token is still inside the freshness window
func (s *Session) IsFresh(now time.Time) bool {
	return s.Token != "" && !s.LastOpened.IsZero() && s.ElapsedDays(now) < FreshnessDays
}

// Grant is handed to the kiosk front end after a successful login
type Grant struct {
	KioskToken string    `json:"kioskToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// KioskClaims are carried by the kiosk operator token
type KioskClaims struct {
	DeviceID string `json:"device"`
	jwt.StandardClaims
}

// Unlocker gates the stored token behind the kiosk operator, e.g. a pin or a biometric prompt
type Unlocker interface {
	Unlock(ctx ctx.Ctx, reason, credential string) (bool, error)
}

type Usecase interface {
	// LoginURL is the browser login page of the vendor
	LoginURL() string
	// HandleCallback stores the token carried by the login redirect
	HandleCallback(ctx ctx.Ctx, callbackURL string) (*Grant, error)
	// Restore reuses a fresh stored token once credential unlocks it
	Restore(ctx ctx.Ctx, credential string) (*Grant, error)
	// Unlock returns domain.ErrLocked unless credential is accepted by the Unlocker
	Unlock(ctx ctx.Ctx, credential string) error
	// Token returns the vendor token for API calls
	Token(ctx ctx.Ctx) (string, error)
	Logout(ctx ctx.Ctx) error
	// ParseToken validates a kiosk operator token and returns its device id
	ParseToken(ctx ctx.Ctx, token string) (string, error)
}

type Repo interface {
	Get(ctx ctx.Ctx) (*Session, error)
	Save(ctx ctx.Ctx, s *Session) error
	Delete(ctx ctx.Ctx) error
}
