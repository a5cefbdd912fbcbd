// Command hodlboard aggregates cryptocurrency balances from exchange
// accounts and on-chain addresses, values them in a native fiat currency
// and serves a live dashboard.
//
// Usage:
//
//	hodlboard setup
//	hodlboard history -exchange kraken
//	hodlboard [--config config.yaml]
//
// The wallet passphrase is read from the environment variable named by
// the passphrase_env config param (HODLBOARD_PASSPHRASE by default).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hodlboard/hodlboard/config"
	"github.com/hodlboard/hodlboard/internal/domain"
	"github.com/hodlboard/hodlboard/internal/secrets"
	"github.com/hodlboard/hodlboard/internal/services/aggregator"
	"github.com/hodlboard/hodlboard/internal/services/exchange"
	"github.com/hodlboard/hodlboard/internal/services/lookup"
	"github.com/hodlboard/hodlboard/internal/setup"
	"github.com/hodlboard/hodlboard/internal/storage/snapshots"
	"github.com/hodlboard/hodlboard/internal/storage/wallets"
	"github.com/hodlboard/hodlboard/internal/web"
)

func main() {
	args := os.Args[1:]
	command := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	var err error
	switch command {
	case "setup":
		err = runSetup(args)
	case "history":
		err = runHistory(args)
	case "":
		err = run(args)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runSetup(args []string) error {
	cfg, err := config.Get(args)
	if err != nil {
		return err
	}
	store, err := wallets.NewStore(cfg.WalletsPath)
	if err != nil {
		return err
	}
	return setup.RunTUI(store)
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	name := fs.String("exchange", "", "exchange to compute daily deltas for")
	configPath := fs.String("config", "", "path to yaml config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-exchange is required")
	}

	var cfgArgs []string
	if *configPath != "" {
		cfgArgs = append(cfgArgs, "-config", *configPath)
	}
	cfg, err := config.Get(cfgArgs)
	if err != nil {
		return err
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	walletCfg, err := app.store.Load()
	if err != nil {
		return err
	}
	creds, ok := walletCfg.APIs[*name]
	if !ok || len(creds) == 0 {
		return fmt.Errorf("no stored credential for exchange %q", *name)
	}

	adapter, err := app.agg.Adapter(*name, creds[0], app.passphrase())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deltas, err := app.agg.DailyDeltas(ctx, adapter)
	if err != nil {
		return err
	}
	printDeltas(deltas)
	return nil
}

func printDeltas(t *domain.DeltaTable) {
	if t.IsEmpty() {
		fmt.Println("no history found")
		return
	}
	assets := t.Assets()
	fmt.Printf("%-12s", "day")
	for _, asset := range assets {
		fmt.Printf("  %14s", asset)
	}
	fmt.Println()
	for _, day := range t.Days() {
		fmt.Printf("%-12s", day)
		for _, asset := range assets {
			fmt.Printf("  %14s", t.At(day, asset).StringFixed(8))
		}
		fmt.Println()
	}
}

// app ties together everything a running instance needs.
type app struct {
	cfg    config.Config
	store  *wallets.Store
	snaps  *snapshots.WALStore
	agg    *aggregator.Aggregator
	gecko  *aggregator.GeckoSource
	logger *zap.Logger

	priceMu sync.RWMutex
	prices  *domain.PriceTable
}

func buildApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := wallets.NewStore(cfg.WalletsPath)
	if err != nil {
		return nil, err
	}

	look := lookup.New(lookup.Options{
		BlockchainInfoURL: cfg.BlockchainInfoURL,
		EthRPCURL:         cfg.EthRPCURL,
		CoinExplorerURL:   cfg.CoinExplorerURL,
	}, logger)

	opts := exchange.Options{
		KrakenURL:         cfg.KrakenURL,
		CoinbaseURL:       cfg.CoinbaseURL,
		CoinbaseMarketURL: cfg.CoinbaseMarketURL,
		BittrexURL:        cfg.BittrexURL,
		Native:            cfg.Native,
		Fiat:              cfg.Fiat,
	}
	factory := func(name string, cred domain.Credential) (exchange.Exchange, error) {
		return exchange.New(name, cred, opts, logger)
	}

	agg := aggregator.New(aggregator.Config{
		Accepted:   cfg.Accepted,
		Fiat:       cfg.Fiat,
		Native:     cfg.Native,
		Remap:      cfg.Remap,
		StableAlts: cfg.StableAlts,
	}, factory, look, secrets.Decrypt, logger)

	return &app{
		cfg:    cfg,
		store:  store,
		agg:    agg,
		gecko:  aggregator.NewGeckoSource(cfg.CoinGeckoURL, logger),
		logger: logger,
		prices: domain.NewPriceTable(),
	}, nil
}

func (a *app) passphrase() string {
	return os.Getenv(a.cfg.PassphraseEnv)
}

func run(args []string) error {
	cfg, err := config.Get(args)
	if err != nil {
		return err
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	app.snaps, err = snapshots.NewWALStore(cfg.WALDir)
	if err != nil {
		return err
	}
	defer app.snaps.Close()

	if app.passphrase() == "" {
		logger.Warn("wallet passphrase env is empty, exchange credentials cannot be decrypted",
			zap.String("env", cfg.PassphraseEnv))
	}

	server := web.NewServer(cfg.WebAddr, app.snaps, app.priceSnapshot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			app.refresh(ctx)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	logger.Info("started", zap.String("addr", cfg.WebAddr), zap.Duration("refresh", cfg.RefreshInterval))
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// refresh runs one aggregation pass: balances from every configured source,
// price columns for every held asset, one snapshot appended to the log.
func (a *app) refresh(ctx context.Context) {
	started := time.Now()

	walletCfg, err := a.store.Load()
	if err != nil {
		a.logger.Error("failed to load wallets", zap.Error(err))
		return
	}
	if walletCfg.IsEmpty() {
		a.logger.Warn("no sources configured, run `hodlboard setup` first")
		return
	}

	table := a.agg.Balances(ctx, walletCfg, a.passphrase())
	if table.Len() == 0 {
		a.logger.Warn("aggregation produced no balances, keeping previous snapshot")
		return
	}

	sources := a.priceSources(walletCfg)
	symbols := priceSymbols(table.Assets(), a.cfg.Fiat, a.cfg.Native)

	a.priceMu.RLock()
	current := a.prices
	a.priceMu.RUnlock()
	updated := a.agg.Prices(ctx, symbols, sources, current)
	a.priceMu.Lock()
	a.prices = updated
	a.priceMu.Unlock()

	if err := a.snaps.Save(table.Snapshot(time.Now())); err != nil {
		a.logger.Error("failed to persist balance snapshot", zap.Error(err))
	}

	a.logger.Info("aggregation pass complete",
		zap.Int("assets", table.Len()),
		zap.Int("price_columns", len(updated.Columns())),
		zap.Duration("took", time.Since(started)))
}

// priceSymbols pairs every held crypto asset with the native currency.
// Fiat holdings need no quote, they are already denominated.
func priceSymbols(assets []domain.Asset, fiat []domain.Asset, native domain.Asset) []string {
	symbols := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset == native || domain.ContainsAsset(fiat, asset) {
			continue
		}
		symbols = append(symbols, domain.NewSymbol(asset, native).String())
	}
	return symbols
}

// priceSources puts the reference source first, then one adapter per
// configured venue for symbols coingecko cannot quote.
func (a *app) priceSources(walletCfg *domain.WalletConfig) []aggregator.PriceSource {
	names := make([]string, 0, len(walletCfg.APIs))
	for name := range walletCfg.APIs {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]aggregator.PriceSource, 0, len(names)+1)
	sources = append(sources, a.gecko)
	for _, name := range names {
		creds := walletCfg.APIs[name]
		if len(creds) == 0 {
			continue
		}
		adapter, err := a.agg.Adapter(name, creds[0], a.passphrase())
		if err != nil {
			a.logger.Warn("venue unavailable for pricing", zap.String("source", name), zap.Error(err))
			continue
		}
		sources = append(sources, adapter)
	}
	return sources
}

func (a *app) priceSnapshot() domain.PriceSnapshot {
	a.priceMu.RLock()
	defer a.priceMu.RUnlock()
	return a.prices.Snapshot()
}
