package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

const coinbaseAPIVersion = "2016-05-13"

// CoinbaseClient talks to the Coinbase wallet API and the public market data
// API. Wallet endpoints are signed with hex HMAC-SHA256 over
// timestamp+method+path+body.
type CoinbaseClient struct {
	rest      *RESTClient
	baseURL   string
	marketURL string
	key       string
	secret    string
}

func NewCoinbaseClient(baseURL, marketURL, key, secret string, logger *zap.Logger) *CoinbaseClient {
	return &CoinbaseClient{
		rest:      NewRESTClient("coinbase", 2, logger),
		baseURL:   baseURL,
		marketURL: marketURL,
		key:       key,
		secret:    secret,
	}
}

type coinbaseMoney struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CoinbaseAccount is one wallet account under the API key.
type CoinbaseAccount struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Currency string        `json:"currency"`
	Balance  coinbaseMoney `json:"balance"`
}

type coinbaseEnvelope struct {
	Data       jsoniter.RawMessage `json:"data"`
	Pagination struct {
		NextURI string `json:"next_uri"`
	} `json:"pagination"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *CoinbaseClient) signed(ctx context.Context, pathWithQuery string, dst any) (string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(timestamp + fasthttp.MethodGet + pathWithQuery))
	sig := hex.EncodeToString(mac.Sum(nil))

	body, err := c.rest.Do(ctx, fasthttp.MethodGet, c.baseURL+pathWithQuery, nil,
		Header{"CB-ACCESS-SIGN", sig},
		Header{"CB-ACCESS-TIMESTAMP", timestamp},
		Header{"CB-ACCESS-KEY", c.key},
		Header{"CB-VERSION", coinbaseAPIVersion},
	)
	if err != nil {
		return "", err
	}

	var env coinbaseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", errors.Wrap(err, "failed to decode coinbase response")
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return "", &domain.ExchangeReportedError{Source: "coinbase", Messages: msgs}
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return "", errors.Wrap(err, "failed to decode coinbase data")
	}
	return env.Pagination.NextURI, nil
}

// Accounts returns all wallet accounts, following pagination.
func (c *CoinbaseClient) Accounts(ctx context.Context) ([]CoinbaseAccount, error) {
	var out []CoinbaseAccount
	path := "/v2/accounts?limit=100&order=desc"
	for path != "" {
		var page []CoinbaseAccount
		next, err := c.signed(ctx, path, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		path = next
	}
	return out, nil
}

// CoinbaseTransaction is one wallet movement: a buy, an on-chain send, an
// internal trade leg or a staking reward.
type CoinbaseTransaction struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	CreatedAt    time.Time     `json:"created_at"`
	Amount       coinbaseMoney `json:"amount"`
	NativeAmount coinbaseMoney `json:"native_amount"`
	Network      *struct {
		Status            string         `json:"status"`
		TransactionAmount *coinbaseMoney `json:"transaction_amount"`
		TransactionFee    *coinbaseMoney `json:"transaction_fee"`
	} `json:"network"`
}

// Transactions returns the movements of one wallet account.
func (c *CoinbaseClient) Transactions(ctx context.Context, accountID string) ([]CoinbaseTransaction, error) {
	var out []CoinbaseTransaction
	path := "/v2/accounts/" + accountID + "/transactions?limit=100&order=desc"
	for path != "" {
		var page []CoinbaseTransaction
		next, err := c.signed(ctx, path, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		path = next
	}
	return out, nil
}

// Candles returns the public daily candle history for a dashed product code
// such as BTC-USD. Rows arrive as [unix, low, high, open, close, volume].
func (c *CoinbaseClient) Candles(ctx context.Context, product string) ([]domain.Candle, error) {
	var rows [][]float64
	url := c.marketURL + "/products/" + product + "/candles?granularity=86400"
	if err := c.rest.Get(ctx, url, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		out = append(out, domain.Candle{
			Day:   domain.DayOfUnix(int64(row[0])),
			Low:   decimal.NewFromFloat(row[1]),
			High:  decimal.NewFromFloat(row[2]),
			Open:  decimal.NewFromFloat(row[3]),
			Close: decimal.NewFromFloat(row[4]),
		})
	}
	return out, nil
}
