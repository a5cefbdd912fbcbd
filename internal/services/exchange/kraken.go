package exchange

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

// Kraken covers the full surface: balances, asset and pair universes, trade
// history, ledger history and daily price candles.
type Kraken struct {
	client *clients.KrakenClient
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewKraken(cred domain.Credential, opts Options, logger *zap.Logger) *Kraken {
	return &Kraken{
		client: clients.NewKrakenClient(opts.KrakenURL, cred.APIKey, cred.APISecret, logger),
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger.Named("kraken"),
	}
}

func (k *Kraken) Name() string { return "Kraken" }

func (k *Kraken) Balances(ctx context.Context) (map[domain.Asset]decimal.Decimal, error) {
	if v, ok := k.cache.Get(keyBalances); ok {
		return v.(map[domain.Asset]decimal.Decimal), nil
	}
	raw, err := k.client.Balances(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Asset]decimal.Decimal, len(raw))
	for code, amount := range raw {
		out[domain.Asset(code)] = amount
	}
	k.cache.SetDefault(keyBalances, out)
	return out, nil
}

func (k *Kraken) ValidAssets(ctx context.Context) ([]domain.Asset, error) {
	if v, ok := k.cache.Get(keyAssets); ok {
		return v.([]domain.Asset), nil
	}
	codes, err := k.client.Assets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Asset, 0, len(codes))
	for _, code := range codes {
		out = append(out, domain.Asset(code))
	}
	k.cache.SetDefault(keyAssets, out)
	return out, nil
}

func (k *Kraken) ValidSymbols(ctx context.Context) ([]string, error) {
	if v, ok := k.cache.Get(keySymbols); ok {
		return v.([]string), nil
	}
	out, err := k.client.AssetPairs(ctx)
	if err != nil {
		return nil, err
	}
	k.cache.SetDefault(keySymbols, out)
	return out, nil
}

func (k *Kraken) Trades(ctx context.Context) ([]domain.TradeRecord, error) {
	if v, ok := k.cache.Get(keyTrades); ok {
		return v.([]domain.TradeRecord), nil
	}
	out, err := k.client.TradesHistory(ctx)
	if err != nil {
		return nil, err
	}
	k.cache.SetDefault(keyTrades, out)
	return out, nil
}

// Ledger returns non-trade ledger movements. Trade rows duplicate the trade
// history and are dropped here.
func (k *Kraken) Ledger(ctx context.Context) ([]domain.LedgerRecord, error) {
	if v, ok := k.cache.Get(keyLedger); ok {
		return v.([]domain.LedgerRecord), nil
	}
	raw, err := k.client.Ledgers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LedgerRecord, 0, len(raw))
	for _, rec := range raw {
		if rec.Type == domain.LedgerTypeTrade {
			continue
		}
		out = append(out, rec)
	}
	k.cache.SetDefault(keyLedger, out)
	return out, nil
}

func (k *Kraken) DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error) {
	candles, err := k.client.OHLC(ctx, symbol.Concat())
	if err != nil {
		return nil, err
	}
	return domain.ColumnFromCandles(symbol.String(), candles), nil
}
