package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

const krakenPageSize = 50

// KrakenClient talks to the Kraken REST API. Private endpoints are signed
// with HMAC-SHA512 over the URI path and the SHA256 of nonce+postdata, keyed
// by the base64-decoded API secret.
type KrakenClient struct {
	rest    *RESTClient
	baseURL string
	key     string
	secret  string
}

func NewKrakenClient(baseURL, key, secret string, logger *zap.Logger) *KrakenClient {
	return &KrakenClient{
		rest:    NewRESTClient("kraken", 1, logger),
		baseURL: baseURL,
		key:     key,
		secret:  secret,
	}
}

type krakenResponse struct {
	Error  []string            `json:"error"`
	Result jsoniter.RawMessage `json:"result"`
}

func (c *KrakenClient) public(ctx context.Context, path string, dst any) error {
	var env krakenResponse
	if err := c.rest.Get(ctx, c.baseURL+path, &env); err != nil {
		return err
	}
	if len(env.Error) > 0 {
		return &domain.ExchangeReportedError{Source: "kraken", Messages: env.Error}
	}
	return json.Unmarshal(env.Result, dst)
}

func (c *KrakenClient) private(ctx context.Context, path string, form url.Values, dst any) error {
	if form == nil {
		form = url.Values{}
	}
	nonce := strconv.FormatInt(time.Now().UnixMilli(), 10)
	form.Set("nonce", nonce)
	postdata := form.Encode()

	sig, err := krakenSign(path, nonce, postdata, c.secret)
	if err != nil {
		return &domain.AuthError{Source: "kraken", Err: err}
	}

	body, err := c.rest.Do(ctx, fasthttp.MethodPost, c.baseURL+path, []byte(postdata),
		Header{"Content-Type", "application/x-www-form-urlencoded"},
		Header{"API-Key", c.key},
		Header{"API-Sign", sig},
	)
	if err != nil {
		return err
	}

	var env krakenResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "failed to decode kraken response")
	}
	if len(env.Error) > 0 {
		return &domain.ExchangeReportedError{Source: "kraken", Messages: env.Error}
	}
	return json.Unmarshal(env.Result, dst)
}

func krakenSign(path, nonce, postdata, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", errors.Wrap(err, "api secret is not valid base64")
	}
	digest := sha256.Sum256([]byte(nonce + postdata))
	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(digest[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Balances returns the account balance keyed by Kraken's raw asset codes.
func (c *KrakenClient) Balances(ctx context.Context) (map[string]decimal.Decimal, error) {
	var out map[string]decimal.Decimal
	if err := c.private(ctx, "/0/private/Balance", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Assets returns Kraken's raw asset codes.
func (c *KrakenClient) Assets(ctx context.Context) ([]string, error) {
	var raw map[string]jsoniter.RawMessage
	if err := c.public(ctx, "/0/public/Assets", &raw); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for code := range raw {
		out = append(out, code)
	}
	return out, nil
}

// AssetPairs returns Kraken's raw tradable pair codes.
func (c *KrakenClient) AssetPairs(ctx context.Context) ([]string, error) {
	var raw map[string]jsoniter.RawMessage
	if err := c.public(ctx, "/0/public/AssetPairs", &raw); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for code := range raw {
		out = append(out, code)
	}
	return out, nil
}

type krakenTrade struct {
	Pair string          `json:"pair"`
	Type string          `json:"type"`
	Vol  decimal.Decimal `json:"vol"`
	Cost decimal.Decimal `json:"cost"`
	Fee  decimal.Decimal `json:"fee"`
	Time float64         `json:"time"`
}

// TradesHistory pages through the full trade history.
func (c *KrakenClient) TradesHistory(ctx context.Context) ([]domain.TradeRecord, error) {
	var out []domain.TradeRecord
	for offset := 0; ; offset += krakenPageSize {
		form := url.Values{}
		form.Set("ofs", strconv.Itoa(offset))

		var page struct {
			Trades map[string]krakenTrade `json:"trades"`
			Count  int                    `json:"count"`
		}
		if err := c.private(ctx, "/0/private/TradesHistory", form, &page); err != nil {
			return nil, err
		}
		for _, t := range page.Trades {
			out = append(out, domain.TradeRecord{
				Pair:   t.Pair,
				Side:   domain.TradeSide(t.Type),
				Volume: t.Vol,
				Cost:   t.Cost,
				Fee:    t.Fee,
				Time:   int64(t.Time),
			})
		}
		if offset+krakenPageSize >= page.Count {
			return out, nil
		}
	}
}

type krakenLedgerEntry struct {
	Asset  string          `json:"asset"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	Time   float64         `json:"time"`
}

// Ledgers pages through the full ledger history.
func (c *KrakenClient) Ledgers(ctx context.Context) ([]domain.LedgerRecord, error) {
	var out []domain.LedgerRecord
	for offset := 0; ; offset += krakenPageSize {
		form := url.Values{}
		form.Set("ofs", strconv.Itoa(offset))

		var page struct {
			Ledger map[string]krakenLedgerEntry `json:"ledger"`
			Count  int                          `json:"count"`
		}
		if err := c.private(ctx, "/0/private/Ledgers", form, &page); err != nil {
			return nil, err
		}
		for _, l := range page.Ledger {
			out = append(out, domain.LedgerRecord{
				Asset:  domain.Asset(l.Asset),
				Type:   l.Type,
				Amount: l.Amount,
				Fee:    l.Fee,
				Time:   int64(l.Time),
			})
		}
		if offset+krakenPageSize >= page.Count {
			return out, nil
		}
	}
}

// OHLC returns the daily candle history for a pair.
func (c *KrakenClient) OHLC(ctx context.Context, pair string) ([]domain.Candle, error) {
	var raw map[string]jsoniter.RawMessage
	path := "/0/public/OHLC?pair=" + url.QueryEscape(pair) + "&interval=1440"
	if err := c.public(ctx, path, &raw); err != nil {
		return nil, err
	}

	var out []domain.Candle
	for key, v := range raw {
		if key == "last" {
			continue
		}
		var rows [][]any
		if err := json.Unmarshal(v, &rows); err != nil {
			return nil, errors.Wrapf(err, "failed to decode ohlc rows for %s", pair)
		}
		for _, row := range rows {
			if len(row) < 5 {
				continue
			}
			ts, ok := row[0].(float64)
			if !ok {
				continue
			}
			out = append(out, domain.Candle{
				Day:   domain.DayOfUnix(int64(ts)),
				Open:  decimalFromAny(row[1]),
				High:  decimalFromAny(row[2]),
				Low:   decimalFromAny(row[3]),
				Close: decimalFromAny(row[4]),
			})
		}
	}
	return out, nil
}

func decimalFromAny(v any) decimal.Decimal {
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Decimal{}
		}
		return d
	case float64:
		return decimal.NewFromFloat(x)
	default:
		return decimal.Decimal{}
	}
}
