package exchange

import (
	"context"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

// Bittrex serves balances, the market universe and daily prices. The v3 API
// exposes no usable trade or ledger history here, so those come back empty.
type Bittrex struct {
	client *clients.BittrexClient
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewBittrex(cred domain.Credential, opts Options, logger *zap.Logger) *Bittrex {
	return &Bittrex{
		client: clients.NewBittrexClient(opts.BittrexURL, cred.APIKey, cred.APISecret, logger),
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger.Named("bittrex"),
	}
}

func (b *Bittrex) Name() string { return "Bittrex" }

func (b *Bittrex) Balances(ctx context.Context) (map[domain.Asset]decimal.Decimal, error) {
	if v, ok := b.cache.Get(keyBalances); ok {
		return v.(map[domain.Asset]decimal.Decimal), nil
	}
	lines, err := b.client.Balances(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Asset]decimal.Decimal)
	for _, line := range lines {
		if line.Total.IsZero() {
			continue
		}
		out[domain.Asset(line.CurrencySymbol)] = line.Total
	}
	b.cache.SetDefault(keyBalances, out)
	return out, nil
}

func (b *Bittrex) ValidSymbols(ctx context.Context) ([]string, error) {
	if v, ok := b.cache.Get(keySymbols); ok {
		return v.([]string), nil
	}
	markets, err := b.client.MarketSymbols(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(markets))
	for _, m := range markets {
		out = append(out, strings.ReplaceAll(m, "-", "/"))
	}
	b.cache.SetDefault(keySymbols, out)
	return out, nil
}

// ValidAssets derives the asset universe from the left side of the market
// universe.
func (b *Bittrex) ValidAssets(ctx context.Context) ([]domain.Asset, error) {
	symbols, err := b.ValidSymbols(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Asset
	for _, s := range symbols {
		base, _, _ := strings.Cut(s, "/")
		if asset := domain.Asset(base); !domain.ContainsAsset(out, asset) {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (b *Bittrex) Trades(ctx context.Context) ([]domain.TradeRecord, error) {
	return nil, nil
}

func (b *Bittrex) Ledger(ctx context.Context) ([]domain.LedgerRecord, error) {
	return nil, nil
}

func (b *Bittrex) DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error) {
	symbols, err := b.ValidSymbols(ctx)
	if err != nil {
		return nil, err
	}
	valid := false
	for _, s := range symbols {
		if s == symbol.String() {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errors.Errorf("symbol %s is not traded on bittrex", symbol)
	}

	candles, err := b.client.Candles(ctx, symbol.Dashed())
	if err != nil {
		return nil, err
	}
	return domain.ColumnFromCandles(symbol.String(), candles), nil
}
