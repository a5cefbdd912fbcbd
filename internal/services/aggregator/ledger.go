package aggregator

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
	"github.com/hodlboard/hodlboard/internal/services/exchange"
)

// LedgerAmountMode selects how the amount leg of ledger movements is
// applied.
type LedgerAmountMode int

const (
	// FiatDepositsOnly debits the fee for every movement and applies the
	// amount leg only to fiat deposits and withdrawals. On-chain principal
	// is not tracked, only its fee.
	FiatDepositsOnly LedgerAmountMode = iota

	// AllAssetAmounts credits amount minus fee for every attributed
	// movement.
	AllAssetAmounts
)

// DailyDeltas pulls trades and ledger history from one adapter and folds
// them into per-day, per-asset balance changes.
func (a *Aggregator) DailyDeltas(ctx context.Context, adapter exchange.Exchange) (*domain.DeltaTable, error) {
	trades, err := adapter.Trades(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := adapter.Ledger(ctx)
	if err != nil {
		return nil, err
	}

	mode := FiatDepositsOnly
	if strings.EqualFold(adapter.Name(), "coinbase") {
		mode = AllAssetAmounts
	}

	table := a.TradeDeltas(trades)
	table.Merge(a.LedgerDeltas(ledger, mode))
	return table, nil
}

// TradeDeltas converts executed trades into signed daily quantity changes.
// For each trade of (base, quote) with volume V, cost C and fee F: base
// gains V on buy and loses V on sell, quote loses C on buy and gains C on
// sell, and F is always debited from the quote side. A pair that matches
// on one side only still contributes that side's delta; pairs that match
// nothing are logged and skipped.
func (a *Aggregator) TradeDeltas(trades []domain.TradeRecord) *domain.DeltaTable {
	table := domain.NewDeltaTable()
	for _, tr := range trades {
		symbol, err := domain.Split(tr.Pair, a.cfg.Accepted, a.cfg.Remap)
		if err != nil {
			if !errors.Is(err, domain.ErrPartialMatch) {
				a.logger.Warn("trade pair not normalizable, skipped",
					zap.String("pair", tr.Pair), zap.Error(err))
				continue
			}
			a.logger.Warn("trade pair matched on one side only",
				zap.String("pair", tr.Pair), zap.Error(err))
		}
		day := domain.DayOfUnix(tr.Time)

		if domain.ContainsAsset(a.cfg.Accepted, symbol.Base) {
			switch tr.Side {
			case domain.SideBuy:
				table.Add(day, symbol.Base, tr.Volume)
			case domain.SideSell:
				table.Add(day, symbol.Base, tr.Volume.Neg())
			}
		}
		if domain.ContainsAsset(a.cfg.Accepted, symbol.Quote) {
			switch tr.Side {
			case domain.SideBuy:
				table.Add(day, symbol.Quote, tr.Cost.Neg())
			case domain.SideSell:
				table.Add(day, symbol.Quote, tr.Cost)
			}
			table.Add(day, symbol.Quote, tr.Fee.Neg())
		}
	}
	return table
}

// LedgerDeltas converts non-trade ledger movements into signed daily
// quantity changes under the given amount mode.
func (a *Aggregator) LedgerDeltas(ledger []domain.LedgerRecord, mode LedgerAmountMode) *domain.DeltaTable {
	table := domain.NewDeltaTable()
	for _, rec := range ledger {
		if rec.Type == domain.LedgerTypeTrade {
			continue
		}
		asset, ok := domain.Resolve(string(rec.Asset), a.cfg.Accepted, a.cfg.Remap)
		if !ok {
			continue
		}
		day := domain.DayOfUnix(rec.Time)

		switch mode {
		case AllAssetAmounts:
			table.Add(day, asset, rec.Amount.Sub(rec.Fee))
		default:
			table.Add(day, asset, rec.Fee.Neg())
			if domain.ContainsAsset(a.cfg.Fiat, asset) {
				switch rec.Type {
				case "deposit":
					table.Add(day, asset, rec.Amount)
				case "withdrawal":
					table.Add(day, asset, rec.Amount.Neg())
				}
			}
		}
	}
	return table
}
