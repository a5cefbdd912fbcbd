package exchange

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

// Coinbase reads wallet accounts and their transaction history. Buys surface
// as trades while trade legs, on-chain sends and staking rewards surface as
// ledger movements.
type Coinbase struct {
	client *clients.CoinbaseClient
	fiat   []domain.Asset
	native domain.Asset
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewCoinbase(cred domain.Credential, opts Options, logger *zap.Logger) *Coinbase {
	return &Coinbase{
		client: clients.NewCoinbaseClient(opts.CoinbaseURL, opts.CoinbaseMarketURL, cred.APIKey, cred.APISecret, logger),
		fiat:   opts.Fiat,
		native: opts.Native,
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger.Named("coinbase"),
	}
}

func (c *Coinbase) Name() string { return "Coinbase" }

func (c *Coinbase) accounts(ctx context.Context) ([]clients.CoinbaseAccount, error) {
	if v, ok := c.cache.Get(keyAccounts); ok {
		return v.([]clients.CoinbaseAccount), nil
	}
	accounts, err := c.client.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(keyAccounts, accounts)
	return accounts, nil
}

func (c *Coinbase) Balances(ctx context.Context) (map[domain.Asset]decimal.Decimal, error) {
	accounts, err := c.accounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Asset]decimal.Decimal)
	for _, acc := range accounts {
		if acc.Balance.Amount.IsZero() {
			continue
		}
		asset := domain.Asset(acc.Balance.Currency)
		out[asset] = out[asset].Add(acc.Balance.Amount)
	}
	return out, nil
}

func (c *Coinbase) ValidAssets(ctx context.Context) ([]domain.Asset, error) {
	accounts, err := c.accounts(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Asset
	for _, acc := range accounts {
		asset := domain.Asset(acc.Currency)
		if domain.ContainsAsset(c.fiat, asset) || domain.ContainsAsset(out, asset) {
			continue
		}
		out = append(out, asset)
	}
	return out, nil
}

func (c *Coinbase) ValidSymbols(ctx context.Context) ([]string, error) {
	assets, err := c.ValidAssets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(assets))
	for _, asset := range assets {
		out = append(out, domain.NewSymbol(asset, c.native).String())
	}
	return out, nil
}

func (c *Coinbase) transactions(ctx context.Context) ([]clients.CoinbaseTransaction, error) {
	if v, ok := c.cache.Get(keyLedger); ok {
		return v.([]clients.CoinbaseTransaction), nil
	}
	accounts, err := c.accounts(ctx)
	if err != nil {
		return nil, err
	}
	var out []clients.CoinbaseTransaction
	for _, acc := range accounts {
		if domain.ContainsAsset(c.fiat, domain.Asset(acc.Currency)) {
			continue
		}
		c.logger.Debug("pulling transactions", zap.String("account", acc.Name))
		txs, err := c.client.Transactions(ctx, acc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	c.cache.SetDefault(keyLedger, out)
	return out, nil
}

func (c *Coinbase) Trades(ctx context.Context) ([]domain.TradeRecord, error) {
	txs, err := c.transactions(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.TradeRecord
	for _, tx := range txs {
		if tx.Type != "buy" {
			continue
		}
		pair := domain.NewSymbol(domain.Asset(tx.Amount.Currency), domain.Asset(tx.NativeAmount.Currency))
		out = append(out, domain.TradeRecord{
			Pair:   pair.String(),
			Side:   domain.SideBuy,
			Volume: tx.Amount.Amount,
			Cost:   tx.NativeAmount.Amount,
			Time:   tx.CreatedAt.Unix(),
		})
	}
	return out, nil
}

// Ledger flattens non-buy transactions into ledger movements. Staking
// rewards arrive without an asset attribution upstream and keep that shape.
func (c *Coinbase) Ledger(ctx context.Context) ([]domain.LedgerRecord, error) {
	txs, err := c.transactions(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.LedgerRecord
	for _, tx := range txs {
		rec := domain.LedgerRecord{Type: tx.Type, Time: tx.CreatedAt.Unix()}
		switch tx.Type {
		case "trade":
			// conversion legs are not covered by Trades, which only
			// sees buys, so they must survive the trade-row filter
			rec.Type = "conversion"
			rec.Asset = domain.Asset(tx.Amount.Currency)
			rec.Amount = tx.Amount.Amount
		case "send":
			if tx.Network == nil {
				continue
			}
			switch tx.Network.Status {
			case "confirmed", "unconfirmed":
				if tx.Network.TransactionAmount == nil {
					continue
				}
				rec.Asset = domain.Asset(tx.Amount.Currency)
				rec.Amount = tx.Network.TransactionAmount.Amount
				if tx.Amount.Amount.IsNegative() {
					rec.Amount = rec.Amount.Neg()
				}
				if tx.Network.TransactionFee != nil {
					rec.Fee = tx.Network.TransactionFee.Amount
				}
			case "off_blockchain":
				rec.Asset = domain.Asset(tx.Amount.Currency)
				rec.Amount = tx.Amount.Amount
			default:
				c.logger.Warn("unsupported send status", zap.String("status", tx.Network.Status))
				continue
			}
		case "staking_reward":
			rec.Amount = tx.Amount.Amount
		case "buy":
			continue
		default:
			c.logger.Warn("unsupported transaction type", zap.String("type", tx.Type))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Coinbase) DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error) {
	candles, err := c.client.Candles(ctx, symbol.Dashed())
	if err != nil {
		return nil, err
	}
	return domain.ColumnFromCandles(symbol.String(), candles), nil
}
