package clients

import (
	"context"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

// CoinGeckoClient serves reference spot prices for assets no connected
// exchange can price. Tickers are resolved to coingecko ids through the
// public coin list.
type CoinGeckoClient struct {
	rest    *RESTClient
	baseURL string
}

func NewCoinGeckoClient(baseURL string, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		rest:    NewRESTClient("coingecko", 0.5, logger),
		baseURL: baseURL,
	}
}

type coinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// CoinList returns the id registry keyed by uppercased ticker. Tickers that
// map to several ids keep the first one listed.
func (c *CoinGeckoClient) CoinList(ctx context.Context) (map[domain.Asset]string, error) {
	var entries []coinListEntry
	if err := c.rest.Get(ctx, c.baseURL+"/coins/list", &entries); err != nil {
		return nil, err
	}

	out := make(map[domain.Asset]string, len(entries))
	for _, e := range entries {
		ticker := domain.Asset(strings.ToUpper(e.Symbol))
		if _, ok := out[ticker]; !ok {
			out[ticker] = e.ID
		}
	}
	return out, nil
}

// SpotPrices returns current prices for the given ids against one native
// currency, keyed by id.
func (c *CoinGeckoClient) SpotPrices(ctx context.Context, ids []string, native domain.Asset) (map[string]decimal.Decimal, error) {
	if len(ids) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	vs := strings.ToLower(string(native))
	reqURL := c.baseURL + "/simple/price?ids=" + url.QueryEscape(strings.Join(ids, ",")) + "&vs_currencies=" + vs

	var raw map[string]map[string]decimal.Decimal
	if err := c.rest.Get(ctx, reqURL, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(raw))
	for id, prices := range raw {
		if p, ok := prices[vs]; ok {
			out[id] = p
		}
	}
	return out, nil
}
