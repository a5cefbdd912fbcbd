package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TotalColumn is the derived column appended after all sources are merged.
const TotalColumn = "Total"

// BalanceTable holds one row per canonical asset and one column per balance
// source. Tables are snapshots: aggregation always builds a fresh one, rows
// are never mutated after Finalize.
type BalanceTable struct {
	assets  []Asset
	columns []string
	cells   map[Asset]map[string]decimal.Decimal
}

// NewBalanceTable returns an empty table.
func NewBalanceTable() *BalanceTable {
	return &BalanceTable{cells: make(map[Asset]map[string]decimal.Decimal)}
}

// Set records a balance for (asset, column), adding the row and column on
// first sight. Setting the same cell twice accumulates, so several entries
// feeding one column (multiple addresses of one asset) sum up.
func (t *BalanceTable) Set(asset Asset, column string, amount decimal.Decimal) {
	if asset == "" || column == "" {
		return
	}
	row, ok := t.cells[asset]
	if !ok {
		row = make(map[string]decimal.Decimal)
		t.cells[asset] = row
		t.assets = append(t.assets, asset)
	}
	if !t.hasColumn(column) {
		t.columns = append(t.columns, column)
	}
	row[column] = row[column].Add(amount)
}

func (t *BalanceTable) hasColumn(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

// Columns returns the source columns in insertion order, excluding Total.
func (t *BalanceTable) Columns() []string {
	out := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c != TotalColumn {
			out = append(out, c)
		}
	}
	return out
}

// Assets returns the row keys in their current order.
func (t *BalanceTable) Assets() []Asset {
	return append([]Asset(nil), t.assets...)
}

// At returns the cell value and whether it is present.
func (t *BalanceTable) At(asset Asset, column string) (decimal.Decimal, bool) {
	row, ok := t.cells[asset]
	if !ok {
		return decimal.Decimal{}, false
	}
	v, ok := row[column]
	return v, ok
}

// Total returns the derived total for an asset, zero when absent.
func (t *BalanceTable) Total(asset Asset) decimal.Decimal {
	v, _ := t.At(asset, TotalColumn)
	return v
}

// Len returns the number of asset rows.
func (t *BalanceTable) Len() int { return len(t.assets) }

// Finalize computes the Total column (missing cells count as zero), drops
// rows whose total is zero, and orders rows by total descending. It returns
// a new table and leaves the receiver untouched.
func (t *BalanceTable) Finalize() *BalanceTable {
	out := NewBalanceTable()
	for _, asset := range t.assets {
		total := decimal.Zero
		for _, col := range t.Columns() {
			if v, ok := t.At(asset, col); ok {
				total = total.Add(v)
			}
		}
		if total.IsZero() {
			continue
		}
		for _, col := range t.Columns() {
			if v, ok := t.At(asset, col); ok {
				out.Set(asset, col, v)
			}
		}
		out.Set(asset, TotalColumn, total)
	}
	sort.SliceStable(out.assets, func(i, j int) bool {
		return out.Total(out.assets[i]).GreaterThan(out.Total(out.assets[j]))
	})
	return out
}

// BalanceSnapshot is the serializable form of a finalized table, persisted
// to the snapshot WAL and served to the dashboard.
type BalanceSnapshot struct {
	Timestamp time.Time            `json:"ts"`
	Columns   []string             `json:"columns"`
	Rows      []BalanceSnapshotRow `json:"rows"`
}

// BalanceSnapshotRow is one asset row with string-encoded amounts.
type BalanceSnapshotRow struct {
	Asset Asset             `json:"asset"`
	Cells map[string]string `json:"cells"`
	Total string            `json:"total"`
}

// Snapshot converts a finalized table into its serializable form.
func (t *BalanceTable) Snapshot(at time.Time) BalanceSnapshot {
	snap := BalanceSnapshot{Timestamp: at, Columns: t.Columns()}
	for _, asset := range t.assets {
		row := BalanceSnapshotRow{
			Asset: asset,
			Cells: make(map[string]string),
			Total: t.Total(asset).String(),
		}
		for _, col := range t.Columns() {
			if v, ok := t.At(asset, col); ok {
				row.Cells[col] = v.String()
			}
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap
}

// BalanceSnapshotRecord bundles a snapshot with its WAL index.
type BalanceSnapshotRecord struct {
	Index    uint64
	Snapshot BalanceSnapshot
}
