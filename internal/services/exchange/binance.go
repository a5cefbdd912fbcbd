package exchange

import (
	"context"

	"github.com/adshao/go-binance/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

// Binance serves balances, the symbol universe and daily klines through the
// spot SDK. Trade and ledger history are not collected from this venue.
type Binance struct {
	client *binance.Client
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewBinance(cred domain.Credential, _ Options, logger *zap.Logger) *Binance {
	return &Binance{
		client: clients.NewBinanceClient(cred.APIKey, cred.APISecret),
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger.Named("binance"),
	}
}

func (b *Binance) Name() string { return "Binance" }

func (b *Binance) Balances(ctx context.Context) (map[domain.Asset]decimal.Decimal, error) {
	if v, ok := b.cache.Get(keyBalances); ok {
		return v.(map[domain.Asset]decimal.Decimal), nil
	}
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Asset]decimal.Decimal)
	for _, bal := range account.Balances {
		free, _ := decimal.NewFromString(bal.Free)
		locked, _ := decimal.NewFromString(bal.Locked)
		total := free.Add(locked)
		if total.IsZero() {
			continue
		}
		out[domain.Asset(bal.Asset)] = total
	}
	b.cache.SetDefault(keyBalances, out)
	return out, nil
}

func (b *Binance) symbols(ctx context.Context) ([]binance.Symbol, error) {
	if v, ok := b.cache.Get(keySymbols); ok {
		return v.([]binance.Symbol), nil
	}
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.SetDefault(keySymbols, info.Symbols)
	return info.Symbols, nil
}

func (b *Binance) ValidSymbols(ctx context.Context) ([]string, error) {
	symbols, err := b.symbols(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, domain.NewSymbol(domain.Asset(s.BaseAsset), domain.Asset(s.QuoteAsset)).String())
	}
	return out, nil
}

func (b *Binance) ValidAssets(ctx context.Context) ([]domain.Asset, error) {
	symbols, err := b.symbols(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Asset
	for _, s := range symbols {
		if asset := domain.Asset(s.BaseAsset); !domain.ContainsAsset(out, asset) {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (b *Binance) Trades(ctx context.Context) ([]domain.TradeRecord, error) {
	return nil, nil
}

func (b *Binance) Ledger(ctx context.Context) ([]domain.LedgerRecord, error) {
	return nil, nil
}

func (b *Binance) DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol.Concat()).
		Interval("1d").
		Do(ctx)
	if err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := decimal.NewFromString(k.Open)
		high, _ := decimal.NewFromString(k.High)
		low, _ := decimal.NewFromString(k.Low)
		closePrice, _ := decimal.NewFromString(k.Close)
		candles = append(candles, domain.Candle{
			Day:   domain.DayOfUnix(k.OpenTime / 1000),
			Open:  open,
			High:  high,
			Low:   low,
			Close: closePrice,
		})
	}
	return domain.ColumnFromCandles(symbol.String(), candles), nil
}
