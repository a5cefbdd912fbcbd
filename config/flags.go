package config

import (
	"flag"
	"strings"
	"time"

	"github.com/hodlboard/hodlboard/internal/domain"
)

type cliFlags struct {
	native          *string
	accepted        *string
	fiat            *string
	walletsPath     *string
	walDir          *string
	webAddr         *string
	refreshInterval *time.Duration
	passphraseEnv   *string
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		native:          fs.String("native", "", "native fiat currency balances are valued in, example: USD"),
		accepted:        fs.String("accepted", "", "comma-separated list of accepted asset codes, example: BTC,ETH,USD"),
		fiat:            fs.String("fiat", "", "comma-separated list of fiat asset codes, example: USD,GBP"),
		walletsPath:     fs.String("wallets", "", "path to the wallets file"),
		walDir:          fs.String("waldir", "", "directory for balance snapshot logs"),
		webAddr:         fs.String("webaddr", "", "address for the web dashboard, example: :8080"),
		refreshInterval: fs.Duration("refreshinterval", 0, "interval between aggregation passes"),
		passphraseEnv:   fs.String("passenv", "", "environment variable holding the wallet passphrase"),
	}
}

func (f *cliFlags) apply(cfg Config) Config {
	if *f.native != "" {
		cfg.Native = domain.Asset(*f.native)
	}
	if *f.accepted != "" {
		cfg.Accepted = toAssets(strings.Split(*f.accepted, ","))
	}
	if *f.fiat != "" {
		cfg.Fiat = toAssets(strings.Split(*f.fiat, ","))
	}
	if *f.walletsPath != "" {
		cfg.WalletsPath = *f.walletsPath
	}
	if *f.walDir != "" {
		cfg.WALDir = *f.walDir
	}
	if *f.webAddr != "" {
		cfg.WebAddr = *f.webAddr
	}
	if *f.refreshInterval > 0 {
		cfg.RefreshInterval = *f.refreshInterval
	}
	if *f.passphraseEnv != "" {
		cfg.PassphraseEnv = *f.passphraseEnv
	}
	return cfg
}
