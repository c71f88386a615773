package mintapi

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/domain/payment"
)

const testToken = "device-token"

type clientSuite struct {
	suite.Suite

	mux    *http.ServeMux
	server *httptest.Server
	im     Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(clientSuite))
}

func (s *clientSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.im = NewClient(&ClientCfg{
		BaseURL: s.server.URL,
		Timeout: 5 * time.Second,
		Tokens:  StaticToken(testToken),
	})
}

func (s *clientSuite) TearDownTest() {
	s.server.Close()
}

// handle registers a handler checking the vendor auth headers
func (s *clientSuite) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Token "+testToken, r.Header.Get("Authorization"))
		s.Equal("application/json", r.Header.Get("Accept"))
		h(w, r)
	})
}

func (s *clientSuite) TestListProjects() {
	s.handle("/project", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodGet, r.Method)
		w.Write([]byte(`{"results":[
			{"id":"0x0583-16","title":"Fidenza","price_amount_cents":12500,"payment_details":{"eth_address":"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"}},
			{"id":"0x0583-17","title":"Free Drop","price_amount_cents":0}
		]}`))
	})

	res, err := s.im.ListProjects(bCtx.Background())
	s.Require().NoError(err)
	s.Require().Len(res, 2)
	s.Equal("Fidenza", res[0].Title)
	s.Equal(int64(12500), res[0].PriceAmountCents)
	s.Equal("ethereum:0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", res[0].PaymentURI())
	s.True(res[1].IsFree())
	s.Equal("", res[1].PaymentURI())
}

func (s *clientSuite) TestLookupENS() {
	s.handle("/wallet/ens", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("ens_name") {
		case "artblocks.eth":
			w.Write([]byte(`{"eth_address":"0x3C6A5d2D4D5b2B3bA6E4a1F8C6d2E8fA3e5d1C9B"}`))
		default:
			w.Write([]byte(`{"eth_address":null}`))
		}
	})

	addr, err := s.im.LookupENS(bCtx.Background(), "artblocks.eth")
	s.NoError(err)
	s.Equal(domain.Address("0x3C6A5d2D4D5b2B3bA6E4a1F8C6d2E8fA3e5d1C9B"), addr)

	_, err = s.im.LookupENS(bCtx.Background(), "nobody.eth")
	s.ErrorIs(err, domain.ErrEnsNotFound)
}

func (s *clientSuite) TestCheckMintable() {
	s.handle("/project/p-1/mintable", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mintable":false,"message":"Project is paused"}`))
	})

	res, err := s.im.CheckMintable(bCtx.Background(), "p-1")
	s.NoError(err)
	s.False(res.Mintable)
	s.Equal("Project is paused", res.Message)
}

func (s *clientSuite) TestCreateMinting() {
	s.handle("/minting", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		body := map[string]string{}
		s.NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal(map[string]string{
			"destination_wallet": "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
			"project":            "p-1",
		}, body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"m-1","block_confirmations":0}`))
	})

	m, err := s.im.CreateMinting(bCtx.Background(), "p-1", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	s.NoError(err)
	s.Equal("m-1", m.ID)
	s.Equal(0, m.Confirmations())
}

func (s *clientSuite) TestStatusError() {
	s.handle("/minting", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"not allowed"}`))
	})

	_, err := s.im.CreateMinting(bCtx.Background(), "p-1", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	s.Require().Error(err)
	code, ok := StatusCode(err)
	s.True(ok)
	s.Equal(http.StatusForbidden, code)
}

func (s *clientSuite) TestTransportError() {
	s.server.Close()

	_, err := s.im.RetrieveMinting(bCtx.Background(), "m-1")
	s.Require().Error(err)
	_, ok := StatusCode(err)
	s.False(ok)
}

func (s *clientSuite) TestRetryable() {
	s.True(Retryable(&StatusError{StatusCode: http.StatusBadGateway}))
	s.False(Retryable(domain.ErrSessionExpired))
	s.False(Retryable(xerrors.Errorf("token: %w", domain.ErrLocked)))
}

func (s *clientSuite) TestRetrieveAndListMintings() {
	s.handle("/minting/m-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"m-1","block_confirmations":3,"embed_url":"https://generator.artblocks.io/0x0583/16","share_url":"https://artblocks.io/token/16"}`))
	})
	s.handle("/minting", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":"m-2","project":"0x0583-17"},{"id":"m-1","project":"0x0583-16","embed_url":"https://generator.artblocks.io/0x0583/16"}]}`))
	})

	m, err := s.im.RetrieveMinting(bCtx.Background(), "m-1")
	s.NoError(err)
	s.True(m.Revealed(minting.RenderBlockConfirmations))

	list, err := s.im.ListMintings(bCtx.Background())
	s.NoError(err)
	s.Len(list, 2)
	s.Equal("0x0583-16", list[1].Project)
}

func (s *clientSuite) TestLoginURL() {
	s.Equal(s.server.URL+"/app/?appauth=true", s.im.LoginURL())
	s.Equal("https://minting-api.artblocks.io/app/?appauth=true", NewClient(&ClientCfg{}).LoginURL())
	s.Equal("http://localhost:8000/app/?appauth=true", LoginURL("http://localhost:8000/"))
}

func (s *clientSuite) TestPaymentBackend() {
	s.handle("/minting/stripe_terminal_token", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		w.Write([]byte(`{"secret":"pst_test_123"}`))
	})
	s.handle("/create_payment_intent", func(w http.ResponseWriter, r *http.Request) {
		s.NoError(r.ParseForm())
		s.Equal("12500", r.PostForm.Get("amount"))
		s.Equal("usd", r.PostForm.Get("currency"))
		s.Equal("automatic", r.PostForm.Get("capture_method"))
		s.Equal([]string{"card_present"}, r.PostForm["payment_method_types[]"])
		w.Write([]byte(`{"intent":"pi_1","secret":"pi_1_secret_abc"}`))
	})
	s.handle("/minting/capture_payment_intent", func(w http.ResponseWriter, r *http.Request) {
		s.NoError(r.ParseForm())
		if r.PostForm.Get("payment_intent_id") == "pi_declined" {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte("Your card was declined."))
			return
		}
		w.Write([]byte(`{}`))
	})

	token, err := s.im.ConnectionToken(bCtx.Background())
	s.NoError(err)
	s.Equal("pst_test_123", token)

	secret, err := s.im.CreatePaymentIntent(bCtx.Background(), &payment.IntentParams{
		Amount:             12500,
		Currency:           payment.CurrencyUSD,
		CaptureMethod:      payment.CaptureMethodAutomatic,
		PaymentMethodTypes: []string{payment.PaymentMethodCardPresent},
	})
	s.NoError(err)
	s.Equal("pi_1_secret_abc", secret)

	s.NoError(s.im.CapturePaymentIntent(bCtx.Background(), "pi_1"))
	err = s.im.CapturePaymentIntent(bCtx.Background(), "pi_declined")
	s.EqualError(err, "Your card was declined.")
}

func (s *clientSuite) TestPing() {
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	s.NoError(s.im.Ping(bCtx.Background()))

	s.server.Close()
	s.Error(s.im.Ping(bCtx.Background()))
}

func (s *clientSuite) TestSubscribeMinting() {
	upgrader := websocket.Upgrader{}
	s.mux.HandleFunc("/ws/minting/m-1", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Token "+testToken, r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if !s.NoError(err) {
			return
		}
		defer conn.Close()
		for i := 1; i <= 3; i++ {
			frame := map[string]interface{}{"id": "m-1", "block_confirmations": i}
			if i == 3 {
				frame["embed_url"] = "https://generator.artblocks.io/0x0583/16"
			}
			s.NoError(conn.WriteJSON(frame))
		}
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	})

	updates := []*minting.Minting{}
	err := s.im.SubscribeMinting(bCtx.Background(), "m-1", func(m *minting.Minting) {
		updates = append(updates, m)
	})
	s.ErrorIs(err, domain.ErrSocket)
	s.Require().Len(updates, 3)
	s.Equal(1, updates[0].Confirmations())
	s.True(updates[2].Revealed(minting.RenderBlockConfirmations))
}

func (s *clientSuite) TestSubscribeMintingCancel() {
	upgrader := websocket.Upgrader{}
	s.mux.HandleFunc("/ws/minting/m-1", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// keep the socket open until the client leaves
		ioutil.ReadAll(conn.UnderlyingConn())
	})

	ctx, cancel := bCtx.WithTimeout(bCtx.Background(), 200*time.Millisecond)
	defer cancel()
	err := s.im.SubscribeMinting(ctx, "m-1", func(*minting.Minting) {})
	s.Error(err)
	s.NotErrorIs(err, domain.ErrSocket)
}

func TestSocketURL(t *testing.T) {
	s := assert.New(t)

	u, err := socketURL("https://minting-api.artblocks.io", "m-1")
	s.NoError(err)
	s.Equal("wss://minting-api.artblocks.io/ws/minting/m-1", u)

	u, err = socketURL("http://127.0.0.1:8080/api", "m 2")
	s.NoError(err)
	parsed, _ := url.Parse(u)
	s.Equal("ws", parsed.Scheme)
	s.Equal("/api/ws/minting/m 2", parsed.Path)

	_, err = socketURL("ftp://example.com", "m-1")
	s.Equal(domain.ErrMalformedURL, err)

	_, err = socketURL("::not a url", "m-1")
	s.Equal(domain.ErrMalformedURL, err)
}
