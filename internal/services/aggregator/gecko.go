package aggregator

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

const geckoCoinListKey = "coinlist"

// GeckoSource prices symbols with a current-day spot value from
// coingecko. It sits first in the source priority list; exchange history
// covers the symbols it cannot quote.
type GeckoSource struct {
	client *clients.CoinGeckoClient
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewGeckoSource(baseURL string, logger *zap.Logger) *GeckoSource {
	return &GeckoSource{
		client: clients.NewCoinGeckoClient(baseURL, logger),
		cache:  gocache.New(time.Hour, 2*time.Hour),
		logger: logger.Named("gecko"),
	}
}

func (g *GeckoSource) Name() string { return "CoinGecko" }

func (g *GeckoSource) coinList(ctx context.Context) (map[domain.Asset]string, error) {
	if v, ok := g.cache.Get(geckoCoinListKey); ok {
		return v.(map[domain.Asset]string), nil
	}
	list, err := g.client.CoinList(ctx)
	if err != nil {
		return nil, err
	}
	g.cache.SetDefault(geckoCoinListKey, list)
	return list, nil
}

// DailyPrices returns a single-day column holding today's spot price.
func (g *GeckoSource) DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error) {
	list, err := g.coinList(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := list[symbol.Base]
	if !ok {
		return nil, errors.Errorf("asset %s has no coingecko id", symbol.Base)
	}

	prices, err := g.client.SpotPrices(ctx, []string{id}, symbol.Quote)
	if err != nil {
		return nil, err
	}
	price, ok := prices[id]
	if !ok {
		return nil, errors.Errorf("no %s quote for %s", symbol.Quote, symbol.Base)
	}

	table := domain.NewPriceTable()
	table.SetCell(domain.DayOf(time.Now()), symbol.String(), price)
	return table, nil
}
