// Package domain defines the canonical asset, symbol and table types shared
// by the adapters and aggregators.
package domain

// Asset is a canonical ticker for a tradeable currency or token, e.g. "BTC".
type Asset string

// String returns the ticker string.
func (a Asset) String() string { return string(a) }

// Variants returns the ticker forms an exchange may report this asset under:
// the asset itself plus the legacy "X", "XX" and "Z" prefixed spellings
// (Kraken reports "XXBT" for XBT and "ZUSD" for USD).
func (a Asset) Variants() []Asset {
	return []Asset{a, "X" + a, "XX" + a, "Z" + a}
}

// Remap is a static table correcting legacy or alternate tickers to
// canonical ones, e.g. XDG->DOGE, XBT->BTC.
type Remap map[Asset]Asset

// Apply returns the canonical spelling of a, or a itself when no rule exists.
func (r Remap) Apply(a Asset) Asset {
	if mapped, ok := r[a]; ok {
		return mapped
	}
	return a
}

// Resolve matches a raw exchange ticker against the accepted set, honouring
// prefix variants and the remap table on both sides of the comparison. The
// first accepted asset to match wins; iteration order is the tie-break.
// The returned asset is always the remapped canonical form.
func Resolve(raw string, accepted []Asset, remap Remap) (Asset, bool) {
	mappedRaw := remap.Apply(Asset(raw))
	for _, curr := range accepted {
		for _, variant := range curr.Variants() {
			if variant == Asset(raw) || remap.Apply(variant) == mappedRaw {
				return remap.Apply(curr), true
			}
		}
	}
	return "", false
}

// RemapAndDedupe applies the remap table to every ticker in the list, drops
// empty entries, and returns the unique assets preserving first-seen order.
func RemapAndDedupe(assets []Asset, remap Remap) []Asset {
	seen := make(map[Asset]struct{}, len(assets))
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		a = remap.Apply(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// ContainsAsset reports whether a is present in the set.
func ContainsAsset(set []Asset, a Asset) bool {
	for _, s := range set {
		if s == a {
			return true
		}
	}
	return false
}
