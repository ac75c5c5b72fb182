package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	stockPath = "/InventoryBalance/ViewInventoryBalanceStatus"
	pricePath = "/InventoryBasic/ViewBasicProduct"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
	logBodyBytes   = 500
)

// selling price columns, first non-empty wins
var priceFields = []string{"OUT_PRICE", "OUT_PRICE1", "OUTSIDE_PRICE"}

// Config holds Ecount connection settings.
type Config struct {
	BaseURL    string        // e.g. https://sboapiia.ecount.com/OAPI/V2
	SessionID  string        // pre-shared session, sent as SESSION_ID on every call
	Timeout    time.Duration // per call, 10s when zero
	RatePerSec float64       // outbound throttle, 0 disables
}

// Client queries price and stock from the Ecount open API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessionID  string
	limiter    *rate.Limiter
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new Ecount API client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		sessionID:  cfg.SessionID,
		limiter:    limiter,
		logger:     logger.With().Str("component", "ecount").Logger(),
		now:        time.Now,
	}
}

type stockRequest struct {
	ProdCD   string `json:"PROD_CD"`
	WhCD     string `json:"WH_CD"`
	BaseDate string `json:"BASE_DATE"`
}

type priceRequest struct {
	ProdCD   string `json:"PROD_CD"`
	ProdType string `json:"PROD_TYPE"`
}

type envelope struct {
	Status string `json:"Status"`
	Data   *struct {
		Result json.RawMessage `json:"Result"`
	} `json:"Data"`
}

func (e envelope) result() json.RawMessage {
	if e.Data == nil {
		return nil
	}
	return e.Data.Result
}

// Stock returns the on-hand balance of itemCode across all warehouses as of today.
// No balance row means zero; a non-numeric BAL_QTY is passed through as text.
func (c *Client) Stock(ctx context.Context, itemCode string) (Value, error) {
	req := stockRequest{
		ProdCD:   itemCode,
		WhCD:     "",
		BaseDate: c.now().Format("20060102"),
	}
	var env envelope
	if err := c.post(ctx, stockPath, req, &env); err != nil {
		return Value{}, err
	}

	list, err := unwrapResult(env.result())
	if err != nil {
		return Value{}, err
	}
	rows, err := decodeRows(list)
	if err != nil {
		return Value{}, err
	}
	if len(rows) == 0 {
		c.logger.Debug().Str("item_code", itemCode).Msg("stock: empty result")
		return Num(0), nil
	}

	qty, ok := rows[0]["BAL_QTY"]
	if !ok {
		qty = "0"
	}
	return coerce(qty), nil
}

// Price returns the selling price of itemCode, or the NoPrice text when the ERP
// does not know the product.
func (c *Client) Price(ctx context.Context, itemCode string) (Value, error) {
	req := priceRequest{ProdCD: itemCode, ProdType: ""}
	var env envelope
	if err := c.post(ctx, pricePath, req, &env); err != nil {
		return Value{}, err
	}

	list, err := unwrapResult(env.result())
	if err != nil {
		// a Result string that is not JSON is treated as "no rows"
		c.logger.Warn().Err(err).Str("item_code", itemCode).Msg("price: unreadable result")
		list = nil
	}
	rows, err := decodeRows(list)
	if err != nil {
		return Value{}, err
	}
	if len(rows) == 0 {
		c.logger.Debug().Str("item_code", itemCode).Msg("price: empty result")
		return Raw(NoPrice), nil
	}

	var price any = "0"
	for _, f := range priceFields {
		if v := rows[0][f]; !isEmpty(v) {
			price = v
			break
		}
	}
	return coerce(price), nil
}

// PriceAndStock fetches price, then stock. The first failure aborts both.
func (c *Client) PriceAndStock(ctx context.Context, itemCode string) (price, stock Value, err error) {
	if price, err = c.Price(ctx, itemCode); err != nil {
		return Value{}, Value{}, fmt.Errorf("price %s: %w", itemCode, err)
	}
	if stock, err = c.Stock(ctx, itemCode); err != nil {
		return Value{}, Value{}, fmt.Errorf("stock %s: %w", itemCode, err)
	}
	return price, stock, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out *envelope) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	params := url.Values{}
	params.Set("SESSION_ID", c.sessionID)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("path", path).RawJSON("payload", body).Msg("request")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrERPFailure, err)
	}
	defer resp.Body.Close()

	raw, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrERPFailure, err)
	}
	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("dur", time.Since(start)).
		Str("body", truncate(raw, logBodyBytes)).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrERPFailure, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// unwrapResult returns Result as raw JSON, decoding it first when the ERP sent it
// as a string. A blank or null Result yields nil.
func unwrapResult(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("%w: Result string is not JSON", ErrDecode)
	}
	return json.RawMessage(s), nil
}

// decodeRows wants a list of objects. Anything else, including a first row
// that is not an object, is ErrDecode.
func decodeRows(list json.RawMessage) ([]map[string]any, error) {
	if len(list) == 0 || bytes.Equal(list, []byte("null")) {
		return nil, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(list, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(rows) > 0 && rows[0] == nil {
		return nil, fmt.Errorf("%w: first row is null", ErrDecode)
	}
	return rows, nil
}

// isEmpty mirrors how the ERP leaves price columns blank: missing, null, "" or 0.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0
	case bool:
		return !x
	}
	return false
}

func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
