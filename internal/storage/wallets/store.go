// Package wallets persists the wallet registry: encrypted exchange
// credentials and on-chain addresses, grouped by subtype.
package wallets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/hodlboard/hodlboard/internal/domain"
)

// Store reads and writes the wallet registry file. Empty subtypes are pruned
// on every save so the stored file never carries dead keys.
type Store struct {
	path string
}

type fileSchema struct {
	Wallets *domain.WalletConfig `json:"Wallets"`
}

func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create wallet store dir")
	}
	return &Store{path: path}, nil
}

// Load reads the registry from disk. A missing or empty file yields an
// empty registry, not an error.
func (s *Store) Load() (*domain.WalletConfig, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewWalletConfig(), nil
		}
		return nil, errors.Wrap(err, "read wallet store")
	}
	if len(payload) == 0 {
		return domain.NewWalletConfig(), nil
	}

	var file fileSchema
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, errors.Wrap(err, "decode wallet store")
	}
	if file.Wallets == nil {
		return domain.NewWalletConfig(), nil
	}
	if file.Wallets.APIs == nil {
		file.Wallets.APIs = make(map[string][]domain.Credential)
	}
	if file.Wallets.Addresses == nil {
		file.Wallets.Addresses = make(map[domain.Asset][]domain.AddressEntry)
	}
	return file.Wallets, nil
}

// Save prunes empty subtypes and writes the registry atomically via a temp
// file.
func (s *Store) Save(cfg *domain.WalletConfig) error {
	cfg.Prune()

	payload, err := json.MarshalIndent(fileSchema{Wallets: cfg}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode wallet store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "write wallet store temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist wallet store")
	}
	return nil
}

// AddCredential appends an encrypted credential entry under an exchange
// name, assigns the next free id and saves.
func (s *Store) AddCredential(exchange string, cred domain.Credential) (*domain.WalletConfig, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	cred.ID = cfg.NextAPIID(exchange)
	if cred.TimeAdded == 0 {
		cred.TimeAdded = time.Now().Unix()
	}
	cfg.APIs[exchange] = append(cfg.APIs[exchange], cred)
	return cfg, s.Save(cfg)
}

// AddAddress appends an address entry under an asset, assigns the next free
// id and saves.
func (s *Store) AddAddress(asset domain.Asset, entry domain.AddressEntry) (*domain.WalletConfig, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	entry.ID = cfg.NextAddressID(asset)
	if entry.TimeAdded == 0 {
		entry.TimeAdded = time.Now().Unix()
	}
	cfg.Addresses[asset] = append(cfg.Addresses[asset], entry)
	return cfg, s.Save(cfg)
}

// RemoveCredential deletes the credential with the given id under an
// exchange name and saves.
func (s *Store) RemoveCredential(exchange string, id int) (*domain.WalletConfig, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	kept := cfg.APIs[exchange][:0]
	for _, c := range cfg.APIs[exchange] {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	cfg.APIs[exchange] = kept
	return cfg, s.Save(cfg)
}

// RemoveAddress deletes the address with the given id under an asset and
// saves.
func (s *Store) RemoveAddress(asset domain.Asset, id int) (*domain.WalletConfig, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	kept := cfg.Addresses[asset][:0]
	for _, a := range cfg.Addresses[asset] {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	cfg.Addresses[asset] = kept
	return cfg, s.Save(cfg)
}
