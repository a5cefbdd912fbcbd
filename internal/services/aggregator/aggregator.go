package aggregator

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
	"github.com/hodlboard/hodlboard/internal/services/exchange"
	"github.com/hodlboard/hodlboard/internal/services/lookup"
)

// Config is the currency universe the aggregator normalizes into.
type Config struct {
	Accepted   []domain.Asset
	Fiat       []domain.Asset
	Native     domain.Asset
	Remap      domain.Remap
	StableAlts map[domain.Asset][]domain.Asset
}

// AdapterFactory builds a fresh exchange adapter holding decrypted
// credentials. Every aggregation pass gets new instances so cached venue
// state never leaks between passes.
type AdapterFactory func(name string, cred domain.Credential) (exchange.Exchange, error)

// Decryptor recovers a plaintext credential field with a caller-supplied key.
type Decryptor func(ciphertext, key string) (string, error)

// Aggregator merges balances, prices and history deltas from all configured
// sources into unified tables. One aggregation call runs sequentially; a
// failing source degrades the result instead of aborting it.
type Aggregator struct {
	cfg     Config
	factory AdapterFactory
	lookup  *lookup.Service
	decrypt Decryptor
	logger  *zap.Logger
}

func New(cfg Config, factory AdapterFactory, lookup *lookup.Service, decrypt Decryptor, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		cfg:     cfg,
		factory: factory,
		lookup:  lookup,
		decrypt: decrypt,
		logger:  logger.Named("aggregator"),
	}
}

// Balances builds the merged balance table: one column per configured
// source, one row per canonical asset, a fresh Total column, zero-total rows
// dropped. Failing sources are logged and skipped.
func (a *Aggregator) Balances(ctx context.Context, wallets *domain.WalletConfig, key string) *domain.BalanceTable {
	table := domain.NewBalanceTable()

	for _, name := range sortedKeys(wallets.APIs) {
		creds := wallets.APIs[name]
		for i, cred := range creds {
			column := name
			if len(creds) > 1 {
				column = fmt.Sprintf("%s_%d", name, i)
			}
			if err := a.mergeExchange(ctx, table, column, name, cred, key); err != nil {
				a.logger.Warn("source unavailable, continuing without it",
					zap.String("source", column), zap.Error(err))
			}
		}
	}

	for _, asset := range sortedAssetKeys(wallets.Addresses) {
		entries := wallets.Addresses[asset]
		for i, entry := range entries {
			column := string(asset)
			if len(entries) > 1 {
				column = fmt.Sprintf("%s_%d", asset, i)
			}
			if err := a.mergeAddress(ctx, table, column, asset, entry, key); err != nil {
				a.logger.Warn("address lookup failed, continuing without it",
					zap.String("source", column), zap.Error(err))
			}
		}
	}

	return table.Finalize()
}

func (a *Aggregator) mergeExchange(ctx context.Context, table *domain.BalanceTable, column, name string, cred domain.Credential, key string) error {
	adapter, err := a.adapter(name, cred, key)
	if err != nil {
		return err
	}

	balances, err := adapter.Balances(ctx)
	if err != nil {
		return err
	}
	universe, err := adapter.ValidAssets(ctx)
	if err != nil {
		return err
	}

	for raw, amount := range balances {
		if !domain.ContainsAsset(universe, raw) {
			a.logger.Warn("balance asset outside the venue universe, dropped",
				zap.String("source", column), zap.String("asset", string(raw)))
			continue
		}
		asset, ok := domain.Resolve(string(raw), a.cfg.Accepted, a.cfg.Remap)
		if !ok {
			a.logger.Warn("balance asset not in the accepted set, dropped",
				zap.String("source", column), zap.String("asset", string(raw)))
			continue
		}
		table.Set(asset, column, amount)
	}
	return nil
}

func (a *Aggregator) mergeAddress(ctx context.Context, table *domain.BalanceTable, column string, asset domain.Asset, entry domain.AddressEntry, key string) error {
	canonical, ok := domain.Resolve(string(asset), a.cfg.Accepted, a.cfg.Remap)
	if !ok {
		return errors.Errorf("address asset %q not in the accepted set", asset)
	}

	// addresses are stored encrypted, same as credential fields
	address, err := a.decrypt(entry.Address, key)
	if err != nil {
		return &domain.AuthError{Source: column, Err: errors.Wrap(err, "address")}
	}

	balances, err := a.lookup.Balances(ctx, asset, []string{address})
	if err != nil {
		return err
	}
	for _, amount := range balances {
		table.Set(canonical, column, amount)
	}
	return nil
}

// Adapter builds a ready venue adapter for one stored credential. Callers
// needing direct venue access, price history or history deltas, go through
// this instead of handling decrypted material themselves.
func (a *Aggregator) Adapter(name string, cred domain.Credential, key string) (exchange.Exchange, error) {
	return a.adapter(name, cred, key)
}

// adapter decrypts the credential fields and builds the adapter around them.
// The decrypted material lives only inside the returned instance.
func (a *Aggregator) adapter(name string, cred domain.Credential, key string) (exchange.Exchange, error) {
	apiKey, err := a.decrypt(cred.APIKey, key)
	if err != nil {
		return nil, &domain.AuthError{Source: name, Err: errors.Wrap(err, "api key")}
	}
	apiSecret, err := a.decrypt(cred.APISecret, key)
	if err != nil {
		return nil, &domain.AuthError{Source: name, Err: errors.Wrap(err, "api secret")}
	}
	plain := domain.Credential{ID: cred.ID, APIKey: apiKey, APISecret: apiSecret, TimeAdded: cred.TimeAdded}
	if cred.APIPass != "" {
		if plain.APIPass, err = a.decrypt(cred.APIPass, key); err != nil {
			return nil, &domain.AuthError{Source: name, Err: errors.Wrap(err, "api passphrase")}
		}
	}
	return a.factory(name, plain)
}

func sortedKeys(m map[string][]domain.Credential) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedAssetKeys(m map[domain.Asset][]domain.AddressEntry) []domain.Asset {
	out := make([]domain.Asset, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
