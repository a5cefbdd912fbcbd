package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

// BittrexClient talks to the Bittrex v3 REST API. Authenticated requests
// carry a SHA512 content hash of the body and an uppercased hex HMAC-SHA512
// signature over timestamp+url+method+contenthash.
type BittrexClient struct {
	rest    *RESTClient
	baseURL string
	key     string
	secret  string
}

func NewBittrexClient(baseURL, key, secret string, logger *zap.Logger) *BittrexClient {
	return &BittrexClient{
		rest:    NewRESTClient("bittrex", 2, logger),
		baseURL: baseURL,
		key:     key,
		secret:  secret,
	}
}

func (c *BittrexClient) signed(ctx context.Context, path string, dst any) error {
	url := c.baseURL + path
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	bodyHash := sha512.Sum512(nil)
	contentHash := hex.EncodeToString(bodyHash[:])

	mac := hmac.New(sha512.New, []byte(c.secret))
	mac.Write([]byte(timestamp + url + fasthttp.MethodGet + contentHash))
	sig := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	return c.rest.Get(ctx, url, dst,
		Header{"Api-Key", c.key},
		Header{"Api-Timestamp", timestamp},
		Header{"Api-Content-Hash", contentHash},
		Header{"Api-Signature", sig},
	)
}

// BittrexBalance is one per-asset balance line.
type BittrexBalance struct {
	CurrencySymbol string          `json:"currencySymbol"`
	Total          decimal.Decimal `json:"total"`
	Available      decimal.Decimal `json:"available"`
}

// Balances returns all per-asset balances on the account.
func (c *BittrexClient) Balances(ctx context.Context) ([]BittrexBalance, error) {
	var out []BittrexBalance
	if err := c.signed(ctx, "/balances", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarketSymbols returns all dashed market codes such as BTC-USD.
func (c *BittrexClient) MarketSymbols(ctx context.Context) ([]string, error) {
	var tickers []struct {
		Symbol string `json:"symbol"`
	}
	if err := c.rest.Get(ctx, c.baseURL+"/markets/tickers", &tickers); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, t.Symbol)
	}
	return out, nil
}

type bittrexCandle struct {
	StartsAt time.Time       `json:"startsAt"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
}

// Candles returns the recent daily candle history for a dashed market code.
func (c *BittrexClient) Candles(ctx context.Context, market string) ([]domain.Candle, error) {
	var rows []bittrexCandle
	url := c.baseURL + "/markets/" + market + "/candles/DAY_1/recent"
	if err := c.rest.Get(ctx, url, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Candle, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Candle{
			Day:   domain.DayOf(r.StartsAt),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		})
	}
	return out, nil
}
