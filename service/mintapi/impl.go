package mintapi

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/domain/payment"
	"github.com/x-xyz/mintingkit/domain/project"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type client struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	baseURL    string
	cfg        ClientCfg
	tokens     TokenSource
	met        metrics.Service
}

func NewClient(cfg *ClientCfg) Client {
	c := &client{
		httpClient: cfg.HttpClient,
		dialer:     cfg.Dialer,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        *cfg,
		tokens:     cfg.Tokens,
		met:        metrics.New("mintapi"),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.cfg.Timeout <= 0 {
		c.cfg.Timeout = defaultTimeout
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	return c
}

func (c *client) endpoint(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", xerrors.Errorf("%s: %w", err.Error(), domain.ErrMalformedURL)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *client) do(ctx bCtx.Ctx, name, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	defer c.met.BumpTime("latency", "endpoint", name).End()

	ctx, cancel := bCtx.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	u, err := c.endpoint(path, query)
	if err != nil {
		ctx.WithFields(log.Fields{"path": path, "err": err}).Error("failed to build url")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": u,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("failed to get token")
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.met.BumpSum("request.err", 1, "endpoint", name)
		ctx.WithFields(log.Fields{
			"url": u,
			"err": err,
		}).Error("client.Do failed")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": u,
			"err": err,
		}).Error("failed to read body")
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.met.BumpSum("status.err", 1, "endpoint", name, "code", strconv.Itoa(resp.StatusCode))
		ctx.WithFields(log.Fields{
			"url":        u,
			"statusCode": resp.StatusCode,
		}).Warn("unexpected status code")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *client) getJSON(ctx bCtx.Ctx, name, path string, query url.Values, out interface{}) error {
	data, err := c.do(ctx, name, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		ctx.WithFields(log.Fields{"err": err, "endpoint": name}).Error("json.Unmarshal failed")
		return err
	}
	return nil
}

func (c *client) ListProjects(ctx bCtx.Ctx) ([]*project.Project, error) {
	resp := &projectListResp{}
	if err := c.getJSON(ctx, "project.list", "project", nil, resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *client) LookupENS(ctx bCtx.Ctx, name string) (domain.Address, error) {
	resp := &ensResp{}
	if err := c.getJSON(ctx, "wallet.ens", "wallet/ens", url.Values{"ens_name": {name}}, resp); err != nil {
		return "", err
	}
	if resp.EthAddress == nil || *resp.EthAddress == "" {
		return "", xerrors.Errorf("%s: %w", name, domain.ErrEnsNotFound)
	}
	return domain.Address(*resp.EthAddress), nil
}

func (c *client) CheckMintable(ctx bCtx.Ctx, projectID string) (*minting.Mintability, error) {
	resp := &minting.Mintability{}
	if err := c.getJSON(ctx, "project.mintable", "project/"+url.PathEscape(projectID)+"/mintable", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *client) CreateMinting(ctx bCtx.Ctx, projectID string, wallet domain.Address) (*minting.Minting, error) {
	body, err := json.Marshal(&createMintingReq{
		DestinationWallet: string(wallet),
		Project:           projectID,
	})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, "minting.create", http.MethodPost, "minting", nil, bytes.NewReader(body), contentTypeJSON)
	if err != nil {
		return nil, err
	}
	m := &minting.Minting{}
	if err := json.Unmarshal(data, m); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, err
	}
	return m, nil
}

func (c *client) RetrieveMinting(ctx bCtx.Ctx, mintID string) (*minting.Minting, error) {
	m := &minting.Minting{}
	if err := c.getJSON(ctx, "minting.retrieve", "minting/"+url.PathEscape(mintID), nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *client) ListMintings(ctx bCtx.Ctx) ([]*minting.Minting, error) {
	resp := &listResp{}
	if err := c.getJSON(ctx, "minting.list", "minting", nil, resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *client) LoginURL() string {
	return LoginURL(c.baseURL)
}

func (c *client) Ping(ctx bCtx.Ctx) error {
	ctx, cancel := bCtx.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *client) ConnectionToken(ctx bCtx.Ctx) (string, error) {
	data, err := c.do(ctx, "terminal.token", http.MethodPost, "minting/stripe_terminal_token", nil, nil, "")
	if err != nil {
		return "", err
	}
	return parseSecret(data, "Failed to decode connection token")
}

func (c *client) CreatePaymentIntent(ctx bCtx.Ctx, params *payment.IntentParams) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("capture_method", string(params.CaptureMethod))
	form.Set("description", params.Description)
	for _, t := range params.PaymentMethodTypes {
		form.Add("payment_method_types[]", t)
	}
	if params.RequestExtendedAuth {
		form.Set("payment_method_options[card_present][request_extended_authorization]", "true")
	}
	if params.RequestIncrementalAuth {
		form.Set("payment_method_options[card_present][request_incremental_authorization_support]", "true")
	}

	data, err := c.do(ctx, "terminal.intent.create", http.MethodPost, "create_payment_intent", nil, strings.NewReader(form.Encode()), contentTypeForm)
	if err != nil {
		return "", err
	}
	return parseSecret(data, "Failed to create PaymentIntent")
}

func (c *client) CapturePaymentIntent(ctx bCtx.Ctx, intentID string) error {
	form := url.Values{"payment_intent_id": {intentID}}
	_, err := c.do(ctx, "terminal.intent.capture", http.MethodPost, "minting/capture_payment_intent", nil, strings.NewReader(form.Encode()), contentTypeForm)
	return err
}

func parseSecret(data []byte, fallback string) (string, error) {
	resp := &secretResp{}
	if err := json.Unmarshal(data, resp); err != nil || resp.Secret == nil {
		if len(data) > 0 {
			return "", xerrors.New(string(data))
		}
		return "", xerrors.New(fallback)
	}
	return *resp.Secret, nil
}
