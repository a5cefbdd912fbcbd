package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Candle is one day of OHLC data as returned by an exchange's daily history
// endpoint. Zero-volume days are omitted upstream, never zero-filled.
type Candle struct {
	Day   Day
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// Midpoint returns the day's (high+low)/2 price.
func (c Candle) Midpoint() decimal.Decimal {
	return c.High.Add(c.Low).Div(decimal.NewFromInt(2))
}

// PriceTable is a date-indexed table with one column per symbol. Gaps are
// explicit: a missing cell means the source had no data for that day, not a
// zero price. Tables are merged by outer join on the date axis.
type PriceTable struct {
	days    []Day
	columns []string
	cells   map[Day]map[string]decimal.Decimal
}

// NewPriceTable returns an empty table.
func NewPriceTable() *PriceTable {
	return &PriceTable{cells: make(map[Day]map[string]decimal.Decimal)}
}

// HasColumn reports whether the symbol already has a column.
func (t *PriceTable) HasColumn(symbol string) bool {
	for _, c := range t.columns {
		if c == symbol {
			return true
		}
	}
	return false
}

// Columns returns the column names in insertion order.
func (t *PriceTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Days returns the date axis in ascending order.
func (t *PriceTable) Days() []Day {
	return append([]Day(nil), t.days...)
}

// At returns the cell value and whether it is present.
func (t *PriceTable) At(day Day, symbol string) (decimal.Decimal, bool) {
	row, ok := t.cells[day]
	if !ok {
		return decimal.Decimal{}, false
	}
	v, ok := row[symbol]
	return v, ok
}

// Latest returns the most recent value in a column.
func (t *PriceTable) Latest(symbol string) (decimal.Decimal, bool) {
	for i := len(t.days) - 1; i >= 0; i-- {
		if v, ok := t.At(t.days[i], symbol); ok {
			return v, true
		}
	}
	return decimal.Decimal{}, false
}

func (t *PriceTable) set(day Day, symbol string, v decimal.Decimal) {
	row, ok := t.cells[day]
	if !ok {
		row = make(map[string]decimal.Decimal)
		t.cells[day] = row
		t.days = append(t.days, day)
	}
	if !t.HasColumn(symbol) {
		t.columns = append(t.columns, symbol)
	}
	row[symbol] = v
}

// SetCell records a single value, extending the axes as needed and keeping
// the date axis sorted.
func (t *PriceTable) SetCell(day Day, symbol string, v decimal.Decimal) {
	t.set(day, symbol, v)
	sort.Slice(t.days, func(i, j int) bool { return t.days[i] < t.days[j] })
}

// ColumnFromCandles reduces a daily candle series to one midpoint value per
// day and returns it as a single-column table.
func ColumnFromCandles(symbol string, candles []Candle) *PriceTable {
	out := NewPriceTable()
	for _, c := range candles {
		out.set(c.Day, symbol, c.Midpoint())
	}
	sort.Slice(out.days, func(i, j int) bool { return out.days[i] < out.days[j] })
	return out
}

// Join outer-joins other into a copy of t: the date axis becomes the sorted
// union and cells absent on either side stay absent. Neither input is
// modified.
func (t *PriceTable) Join(other *PriceTable) *PriceTable {
	out := NewPriceTable()
	for _, src := range []*PriceTable{t, other} {
		if src == nil {
			continue
		}
		for _, col := range src.columns {
			if !out.HasColumn(col) {
				out.columns = append(out.columns, col)
			}
		}
		for _, day := range src.days {
			for col, v := range src.cells[day] {
				out.set(day, col, v)
			}
		}
	}
	sort.Slice(out.days, func(i, j int) bool { return out.days[i] < out.days[j] })
	return out
}

// DuplicateColumn copies an existing column under a new name, used to alias
// a staked symbol to its unstaked base without refetching.
func (t *PriceTable) DuplicateColumn(src, dst string) {
	if !t.HasColumn(src) || t.HasColumn(dst) {
		return
	}
	t.columns = append(t.columns, dst)
	for _, day := range t.days {
		if v, ok := t.cells[day][src]; ok {
			t.cells[day][dst] = v
		}
	}
}

// RenameColumn relabels a column, used when a series fetched under a
// substitute quote asset is recorded under the requested symbol.
func (t *PriceTable) RenameColumn(src, dst string) {
	if !t.HasColumn(src) || t.HasColumn(dst) {
		return
	}
	for i, c := range t.columns {
		if c == src {
			t.columns[i] = dst
		}
	}
	for _, day := range t.days {
		if v, ok := t.cells[day][src]; ok {
			t.cells[day][dst] = v
			delete(t.cells[day], src)
		}
	}
}

// IsEmpty reports whether the table has no cells.
func (t *PriceTable) IsEmpty() bool { return len(t.days) == 0 }

// PriceSnapshot is the serializable form of a price table.
type PriceSnapshot struct {
	Columns []string                  `json:"columns"`
	Rows    map[Day]map[string]string `json:"rows"`
}

// Snapshot converts the table into its serializable form.
func (t *PriceTable) Snapshot() PriceSnapshot {
	snap := PriceSnapshot{Columns: t.Columns(), Rows: make(map[Day]map[string]string, len(t.days))}
	for _, day := range t.days {
		row := make(map[string]string, len(t.cells[day]))
		for col, v := range t.cells[day] {
			row[col] = v.String()
		}
		snap.Rows[day] = row
	}
	return snap
}
