package domain

import (
	"fmt"
	"strings"
)

// Symbol is an ordered pair of canonical assets, rendered as "BASE/QUOTE".
type Symbol struct {
	Base  Asset
	Quote Asset
}

// NewSymbol builds a symbol from two canonical assets.
func NewSymbol(base, quote Asset) Symbol {
	return Symbol{Base: base, Quote: quote}
}

// ParseSymbol parses a "BASE/QUOTE" string without normalization.
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Symbol{}, fmt.Errorf("invalid symbol %q, want BASE/QUOTE", s)
	}
	return Symbol{Base: Asset(parts[0]), Quote: Asset(parts[1])}, nil
}

// String returns the "BASE/QUOTE" form.
func (s Symbol) String() string {
	return fmt.Sprintf("%s/%s", s.Base, s.Quote)
}

// Concat returns the concatenated "BASEQUOTE" form used by Kraken-style
// OHLC endpoints.
func (s Symbol) Concat() string {
	return string(s.Base) + string(s.Quote)
}

// Dashed returns the "BASE-QUOTE" form used by Bittrex and Coinbase markets.
func (s Symbol) Dashed() string {
	return fmt.Sprintf("%s-%s", s.Base, s.Quote)
}

// IsZero reports whether both sides are empty.
func (s Symbol) IsZero() bool { return s.Base == "" && s.Quote == "" }

// WithQuote returns the symbol with the quote side replaced, used for
// stable-coin alternate retries (BTC/USD -> BTC/USDT).
func (s Symbol) WithQuote(quote Asset) Symbol {
	return Symbol{Base: s.Base, Quote: quote}
}

// stakingSuffix marks staked positions on Kraken, e.g. "ETH2.S", "DOT.S".
const stakingSuffix = ".S"

// Unstaked returns the symbol with staking decorations stripped from the
// base: the ".S" suffix is removed and an "ETH2" base becomes "ETH". The
// result aliases the unstaked asset's price.
func (s Symbol) Unstaked() Symbol {
	base := strings.TrimSuffix(string(s.Base), stakingSuffix)
	if strings.HasPrefix(base, "ETH2") {
		base = strings.Replace(base, "ETH2", "ETH", 1)
	}
	return Symbol{Base: Asset(base), Quote: s.Quote}
}

// Split breaks a raw exchange pair string into two accepted assets. Matching
// walks the accepted set in order and tries each asset's prefix variants:
// a whole-string match yields the degenerate single-asset pair, otherwise a
// variant prefix locks the left side and a variant suffix locks the right.
// Each side keeps its first match.
//
// A one-sided match returns the matched side and ErrPartialMatch; no match
// returns empty assets and ErrUnsupportedSymbol unless the input is the
// empty-string sentinel. Both errors are warnings, never fatal.
func Split(pair string, accepted []Asset, remap Remap) (Symbol, error) {
	var (
		left, right           Asset
		leftLong, rightLong   Asset
		leftFound, rightFound bool
	)

	for _, curr := range accepted {
		for _, variant := range curr.Variants() {
			if string(variant) == pair && !leftFound && !rightFound {
				left, right = curr, curr
				leftLong, rightLong = variant, variant
				leftFound, rightFound = true, true
			}
			if strings.HasPrefix(pair, string(variant)) && !leftFound {
				left, leftLong = curr, variant
				leftFound = true
			}
			if strings.HasSuffix(pair, string(variant)) && !rightFound {
				right, rightLong = curr, variant
				rightFound = true
			}
		}
	}
	sym := Symbol{Base: remap.Apply(left), Quote: remap.Apply(right)}
	switch {
	case leftFound && rightFound:
		return sym, nil
	case !leftFound && !rightFound:
		if pair == "" {
			return Symbol{}, nil
		}
		return Symbol{}, fmt.Errorf("pair %q: %w", pair, ErrUnsupportedSymbol)
	default:
		matched := leftLong
		if rightFound {
			matched = rightLong
		}
		rest := strings.Replace(pair, string(matched), "", 1)
		return sym, fmt.Errorf("pair %q: currency %q not in accepted set: %w", pair, rest, ErrPartialMatch)
	}
}
