package mintapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
)

// socketURL maps the api base url onto the websocket endpoint of a minting
func socketURL(baseURL, mintID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", domain.ErrMalformedURL
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", domain.ErrMalformedURL
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/minting/" + mintID
	return u.String(), nil
}

func (c *client) SubscribeMinting(ctx bCtx.Ctx, mintID string, onUpdate func(*minting.Minting)) error {
	u, err := socketURL(c.baseURL, mintID)
	if err != nil {
		ctx.WithFields(log.Fields{"baseURL": c.baseURL, "err": err}).Error("failed to build socket url")
		return err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Authorization", "Token "+token)

	conn, _, err := c.dialer.DialContext(ctx, u, header)
	if err != nil {
		ctx.WithFields(log.Fields{"url": u, "err": err}).Error("websocket dial failed")
		return xerrors.Errorf("%s: %w", err.Error(), domain.ErrSocket)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// unblocks ReadMessage
			conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ctx.WithFields(log.Fields{"url": u, "err": err}).Warn("websocket read failed")
			return xerrors.Errorf("%s: %w", err.Error(), domain.ErrSocket)
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			return domain.ErrSocket
		}

		m := &minting.Minting{}
		if err := json.Unmarshal(data, m); err != nil {
			ctx.WithFields(log.Fields{"err": err, "frame": string(data)}).Warn("failed to decode minting frame")
			return xerrors.Errorf("%s: %w", err.Error(), domain.ErrSocket)
		}
		if m.ID == "" {
			m.ID = mintID
		}
		onUpdate(m)
	}
}
