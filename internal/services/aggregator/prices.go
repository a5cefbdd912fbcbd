package aggregator

import (
	"context"

	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

// PriceSource serves a daily price series for one symbol. Exchange adapters
// satisfy it directly; the reference source wraps coingecko.
type PriceSource interface {
	Name() string
	DailyPrices(ctx context.Context, symbol domain.Symbol) (*domain.PriceTable, error)
}

// Prices extends existing with one column per requested "BASE/QUOTE" symbol.
// Symbols already present are skipped without any network call. Staked
// symbols are fetched under their unstaked base and the resolved column is
// duplicated under the staked name. Sources are tried in order until one
// returns data; per source, configured stable-coin alternates are tried for
// the quote side before giving up on it. The returned table is a new value;
// existing is not modified.
func (a *Aggregator) Prices(ctx context.Context, symbols []string, sources []PriceSource, existing *domain.PriceTable) *domain.PriceTable {
	table := domain.NewPriceTable()
	if existing != nil {
		table = table.Join(existing)
	}

	for _, name := range symbols {
		if table.HasColumn(name) {
			continue
		}
		symbol, err := domain.ParseSymbol(name)
		if err != nil {
			a.logger.Warn("unparseable symbol, skipped", zap.String("symbol", name))
			continue
		}

		unstaked := symbol.Unstaked()
		if unstaked.String() != name && table.HasColumn(unstaked.String()) {
			table.DuplicateColumn(unstaked.String(), name)
			continue
		}

		a.logger.Info("new pair found, pulling data",
			zap.String("symbol", name), zap.String("fetched_as", unstaked.String()))
		series := a.fetchSeries(ctx, sources, unstaked)
		if series == nil {
			a.logger.Warn("no source could price the symbol", zap.String("symbol", name))
			continue
		}

		table = table.Join(series)
		if unstaked.String() != name {
			table.DuplicateColumn(unstaked.String(), name)
		}
	}
	return table
}

func (a *Aggregator) fetchSeries(ctx context.Context, sources []PriceSource, symbol domain.Symbol) *domain.PriceTable {
	for _, src := range sources {
		series, err := src.DailyPrices(ctx, symbol)
		if err == nil && series != nil && !series.IsEmpty() {
			return series
		}
		if err != nil {
			a.logger.Debug("source could not price symbol",
				zap.String("source", src.Name()), zap.String("symbol", symbol.String()), zap.Error(err))
		}

		for _, alt := range a.cfg.StableAlts[symbol.Quote] {
			altSymbol := symbol.WithQuote(alt)
			a.logger.Info("trying stable-coin alternative", zap.String("symbol", altSymbol.String()))
			series, err := src.DailyPrices(ctx, altSymbol)
			if err != nil || series == nil || series.IsEmpty() {
				continue
			}
			a.logger.Warn("priced under a substitute quote asset",
				zap.String("requested", symbol.String()), zap.String("used", altSymbol.String()))
			series.RenameColumn(altSymbol.String(), symbol.String())
			return series
		}
	}
	return nil
}
