package domain

// Credential is one stored API key set for an exchange. Key material is kept
// encrypted at rest and only decrypted into short-lived adapter instances.
type Credential struct {
	ID        int    `json:"id"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_sec"`
	APIPass   string `json:"api_pass,omitempty"`
	TimeAdded int64  `json:"time_added"`
}

// AddressEntry is one stored on-chain address for an asset.
type AddressEntry struct {
	ID        int    `json:"id"`
	Address   string `json:"address"`
	TimeAdded int64  `json:"time_added"`
}

// WalletConfig is the persisted wallet registry: API credentials grouped by
// exchange name and addresses grouped by asset.
type WalletConfig struct {
	APIs      map[string][]Credential  `json:"APIs"`
	Addresses map[Asset][]AddressEntry `json:"Addresses"`
}

// NewWalletConfig returns an empty registry with both maps allocated.
func NewWalletConfig() *WalletConfig {
	return &WalletConfig{
		APIs:      make(map[string][]Credential),
		Addresses: make(map[Asset][]AddressEntry),
	}
}

// NextAPIID returns the next free credential id for an exchange.
func (w *WalletConfig) NextAPIID(exchange string) int {
	max := -1
	for _, c := range w.APIs[exchange] {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// NextAddressID returns the next free address id for an asset.
func (w *WalletConfig) NextAddressID(asset Asset) int {
	max := -1
	for _, a := range w.Addresses[asset] {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

// Prune removes exchanges and assets that no longer hold any entries, so an
// empty subtype never lingers in the stored file.
func (w *WalletConfig) Prune() {
	for exchange, creds := range w.APIs {
		if len(creds) == 0 {
			delete(w.APIs, exchange)
		}
	}
	for asset, addrs := range w.Addresses {
		if len(addrs) == 0 {
			delete(w.Addresses, asset)
		}
	}
}

// IsEmpty reports whether the registry holds no entries at all.
func (w *WalletConfig) IsEmpty() bool {
	return len(w.APIs) == 0 && len(w.Addresses) == 0
}
