package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TradeSide is the direction of an executed trade.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// TradeRecord is one executed trade in normalized form. Cost and Fee are
// denominated in the quote asset of Pair.
type TradeRecord struct {
	Pair   string
	Side   TradeSide
	Volume decimal.Decimal
	Cost   decimal.Decimal
	Fee    decimal.Decimal
	Time   int64
}

// LedgerRecord is one non-trade ledger movement: a deposit, withdrawal,
// staking reward or transfer. Amount and Fee are denominated in Asset.
type LedgerRecord struct {
	Asset  Asset
	Type   string
	Amount decimal.Decimal
	Fee    decimal.Decimal
	Time   int64
}

// LedgerTypeTrade marks ledger rows that duplicate trade history. Trades are
// taken from the trade endpoint only, so these rows are skipped.
const LedgerTypeTrade = "trade"

// DeltaTable accumulates signed per-day, per-asset quantity changes derived
// from trades and ledger movements.
type DeltaTable struct {
	days   []Day
	assets []Asset
	cells  map[Day]map[Asset]decimal.Decimal
}

// NewDeltaTable returns an empty delta table.
func NewDeltaTable() *DeltaTable {
	return &DeltaTable{cells: make(map[Day]map[Asset]decimal.Decimal)}
}

// Add accumulates a signed delta into the given day and asset cell.
func (t *DeltaTable) Add(day Day, asset Asset, delta decimal.Decimal) {
	row, ok := t.cells[day]
	if !ok {
		row = make(map[Asset]decimal.Decimal)
		t.cells[day] = row
		t.days = append(t.days, day)
	}
	if !ContainsAsset(t.assets, asset) {
		t.assets = append(t.assets, asset)
	}
	row[asset] = row[asset].Add(delta)
}

// Days returns the date axis in ascending order.
func (t *DeltaTable) Days() []Day {
	out := append([]Day(nil), t.days...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Assets returns the assets seen, in first-seen order.
func (t *DeltaTable) Assets() []Asset {
	return append([]Asset(nil), t.assets...)
}

// At returns the accumulated delta for a cell, zero when absent.
func (t *DeltaTable) At(day Day, asset Asset) decimal.Decimal {
	return t.cells[day][asset]
}

// Merge folds other into t.
func (t *DeltaTable) Merge(other *DeltaTable) {
	if other == nil {
		return
	}
	for day, row := range other.cells {
		for asset, v := range row {
			t.Add(day, asset, v)
		}
	}
}

// IsEmpty reports whether the table has no cells.
func (t *DeltaTable) IsEmpty() bool { return len(t.days) == 0 }
