package exchange

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

const (
	cacheTTL    = 5 * time.Minute
	cacheSweep  = 10 * time.Minute
	keyBalances = "balances"
	keyAssets   = "assets"
	keySymbols  = "symbols"
	keyTrades   = "trades"
	keyLedger   = "ledger"
	keyAccounts = "accounts"
)

// Exchange is the uniform surface over one connected exchange account.
// Balances and asset codes come back raw, exactly as the venue names them;
// normalization against the accepted set happens downstream.
//
// Implementations cache venue responses per instance, so a fresh instance
// per aggregation pass sees fresh data.
type Exchange interface {
	Name() string
	Balances(ctx context.Context) (map[domain.Asset]decimal.Decimal, error)
	ValidAssets(ctx context.Context) ([]domain.Asset, error)
	ValidSymbols(ctx context.Context) ([]string, error)
	Trades(ctx context.Context) ([]domain.TradeRecord, error)
	Ledger(ctx context.Context) ([]domain.LedgerRecord, error)
	DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error)
}

// Options carries the endpoints and currency sets shared by all adapters.
type Options struct {
	KrakenURL         string
	CoinbaseURL       string
	CoinbaseMarketURL string
	BittrexURL        string
	Native            domain.Asset
	Fiat              []domain.Asset
}

// New builds the adapter for a named exchange with decrypted credentials.
// Credentials live only inside the returned instance.
func New(name string, cred domain.Credential, opts Options, logger *zap.Logger) (Exchange, error) {
	switch strings.ToLower(name) {
	case "kraken":
		return NewKraken(cred, opts, logger), nil
	case "coinbase":
		return NewCoinbase(cred, opts, logger), nil
	case "bittrex":
		return NewBittrex(cred, opts, logger), nil
	case "binance":
		return NewBinance(cred, opts, logger), nil
	case "bybit":
		return NewBybit(cred, opts, logger), nil
	default:
		return nil, errors.Errorf("unknown exchange %q", name)
	}
}

// Names lists the exchanges New can build, in dispatch order.
func Names() []string {
	return []string{"kraken", "coinbase", "bittrex", "binance", "bybit"}
}
