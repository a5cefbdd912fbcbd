package exchange

import (
	"context"
	"strconv"

	bybit "github.com/hirokisan/bybit/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

// Bybit serves unified-account balances, the spot symbol universe and daily
// klines. Trade and ledger history are not collected from this venue.
type Bybit struct {
	client *bybit.Client
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewBybit(cred domain.Credential, _ Options, logger *zap.Logger) *Bybit {
	return &Bybit{
		client: clients.NewBybitClient(cred.APIKey, cred.APISecret),
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger.Named("bybit"),
	}
}

func (b *Bybit) Name() string { return "Bybit" }

func (b *Bybit) Balances(ctx context.Context) (map[domain.Asset]decimal.Decimal, error) {
	if v, ok := b.cache.Get(keyBalances); ok {
		return v.(map[domain.Asset]decimal.Decimal), nil
	}
	res, err := b.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5UNIFIED, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Asset]decimal.Decimal)
	for _, acc := range res.Result.List {
		for _, coin := range acc.Coin {
			balance, _ := decimal.NewFromString(coin.WalletBalance)
			if balance.IsZero() {
				continue
			}
			asset := domain.Asset(coin.Coin)
			out[asset] = out[asset].Add(balance)
		}
	}
	b.cache.SetDefault(keyBalances, out)
	return out, nil
}

func (b *Bybit) instruments(ctx context.Context) ([]bybit.V5GetInstrumentsInfoSpotItem, error) {
	if v, ok := b.cache.Get(keySymbols); ok {
		return v.([]bybit.V5GetInstrumentsInfoSpotItem), nil
	}
	res, err := b.client.V5().Market().GetInstrumentsInfo(bybit.V5GetInstrumentsInfoParam{
		Category: bybit.CategoryV5Spot,
	})
	if err != nil {
		return nil, err
	}
	items := res.Result.Spot.List
	b.cache.SetDefault(keySymbols, items)
	return items, nil
}

func (b *Bybit) ValidSymbols(ctx context.Context) ([]string, error) {
	items, err := b.instruments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, domain.NewSymbol(domain.Asset(it.BaseCoin), domain.Asset(it.QuoteCoin)).String())
	}
	return out, nil
}

func (b *Bybit) ValidAssets(ctx context.Context) ([]domain.Asset, error) {
	items, err := b.instruments(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Asset
	for _, it := range items {
		if asset := domain.Asset(it.BaseCoin); !domain.ContainsAsset(out, asset) {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (b *Bybit) Trades(ctx context.Context) ([]domain.TradeRecord, error) {
	return nil, nil
}

func (b *Bybit) Ledger(ctx context.Context) ([]domain.LedgerRecord, error) {
	return nil, nil
}

func (b *Bybit) DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error) {
	res, err := b.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   bybit.SymbolV5(symbol.Concat()),
		Interval: bybit.IntervalD,
	})
	if err != nil {
		return nil, err
	}

	var candles []domain.Candle
	for _, k := range res.Result.List {
		startMs, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			continue
		}
		open, _ := decimal.NewFromString(k.Open)
		high, _ := decimal.NewFromString(k.High)
		low, _ := decimal.NewFromString(k.Low)
		closePrice, _ := decimal.NewFromString(k.Close)
		candles = append(candles, domain.Candle{
			Day:   domain.DayOfUnix(startMs / 1000),
			Open:  open,
			High:  high,
			Low:   low,
			Close: closePrice,
		})
	}
	return domain.ColumnFromCandles(symbol.String(), candles), nil
}
