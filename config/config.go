package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hodlboard/hodlboard/internal/domain"
)

type Config struct {
	Accepted   []domain.Asset
	Fiat       []domain.Asset
	Native     domain.Asset
	Remap      map[domain.Asset]domain.Asset
	StableAlts map[domain.Asset][]domain.Asset

	KrakenURL         string
	CoinbaseURL       string
	CoinbaseMarketURL string
	BittrexURL        string
	BlockchainInfoURL string
	EthRPCURL         string
	CoinExplorerURL   string
	CoinGeckoURL      string

	WalletsPath     string
	WALDir          string
	WebAddr         string
	RefreshInterval time.Duration
	PassphraseEnv   string
}

type configTmp struct {
	Accepted   []string            `yaml:"accepted"`
	Fiat       []string            `yaml:"fiat"`
	Native     string              `yaml:"native"`
	Remap      map[string]string   `yaml:"remap"`
	StableAlts map[string][]string `yaml:"stable_alts"`

	KrakenURL         string `yaml:"kraken_url"`
	CoinbaseURL       string `yaml:"coinbase_url"`
	CoinbaseMarketURL string `yaml:"coinbase_market_url"`
	BittrexURL        string `yaml:"bittrex_url"`
	BlockchainInfoURL string `yaml:"blockchain_info_url"`
	EthRPCURL         string `yaml:"eth_rpc_url"`
	CoinExplorerURL   string `yaml:"coinexplorer_url"`
	CoinGeckoURL      string `yaml:"coingecko_url"`

	WalletsPath     string `yaml:"wallets_path"`
	WALDir          string `yaml:"wal_dir"`
	WebAddr         string `yaml:"web_addr"`
	RefreshInterval string `yaml:"refresh_interval"`
	PassphraseEnv   string `yaml:"passphrase_env"`
}

func defaults() Config {
	return Config{
		Accepted: []domain.Asset{"XDG", "DOGE", "USD", "XMR", "BTC", "XBT", "ETH", "ADA", "DOT", "VTC"},
		Fiat:     []domain.Asset{"USD", "GBP"},
		Native:   "USD",
		Remap: map[domain.Asset]domain.Asset{
			"XDG": "DOGE",
			"XBT": "BTC",
		},
		StableAlts: map[domain.Asset][]domain.Asset{
			"USD": {"USDT", "DAI"},
		},

		KrakenURL:         "https://api.kraken.com",
		CoinbaseURL:       "https://api.coinbase.com",
		CoinbaseMarketURL: "https://api.exchange.coinbase.com",
		BittrexURL:        "https://api.bittrex.com/v3",
		BlockchainInfoURL: "https://blockchain.info",
		EthRPCURL:         "https://ethereum-rpc.publicnode.com",
		CoinExplorerURL:   "https://www.coinexplorer.net/api/v1",
		CoinGeckoURL:      "https://api.coingecko.com/api/v3",

		WalletsPath:     "wallets.json",
		WALDir:          "./wal/balances",
		WebAddr:         ":8080",
		RefreshInterval: 15 * time.Minute,
		PassphraseEnv:   "HODLBOARD_PASSPHRASE",
	}
}

func Get(args []string) (Config, error) {
	fs := flag.NewFlagSet("hodlboard", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	return flags.apply(defaults()), nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := defaults()
	if len(tmp.Accepted) > 0 {
		cfg.Accepted = toAssets(tmp.Accepted)
	}
	if len(tmp.Fiat) > 0 {
		cfg.Fiat = toAssets(tmp.Fiat)
	}
	if tmp.Native != "" {
		cfg.Native = domain.Asset(tmp.Native)
	}
	if len(tmp.Remap) > 0 {
		cfg.Remap = make(map[domain.Asset]domain.Asset, len(tmp.Remap))
		for from, to := range tmp.Remap {
			cfg.Remap[domain.Asset(from)] = domain.Asset(to)
		}
	}
	if len(tmp.StableAlts) > 0 {
		cfg.StableAlts = make(map[domain.Asset][]domain.Asset, len(tmp.StableAlts))
		for quote, alts := range tmp.StableAlts {
			cfg.StableAlts[domain.Asset(quote)] = toAssets(alts)
		}
	}

	setIfNotEmpty(&cfg.KrakenURL, tmp.KrakenURL)
	setIfNotEmpty(&cfg.CoinbaseURL, tmp.CoinbaseURL)
	setIfNotEmpty(&cfg.CoinbaseMarketURL, tmp.CoinbaseMarketURL)
	setIfNotEmpty(&cfg.BittrexURL, tmp.BittrexURL)
	setIfNotEmpty(&cfg.BlockchainInfoURL, tmp.BlockchainInfoURL)
	setIfNotEmpty(&cfg.EthRPCURL, tmp.EthRPCURL)
	setIfNotEmpty(&cfg.CoinExplorerURL, tmp.CoinExplorerURL)
	setIfNotEmpty(&cfg.CoinGeckoURL, tmp.CoinGeckoURL)
	setIfNotEmpty(&cfg.WalletsPath, tmp.WalletsPath)
	setIfNotEmpty(&cfg.WALDir, tmp.WALDir)
	setIfNotEmpty(&cfg.WebAddr, tmp.WebAddr)
	setIfNotEmpty(&cfg.PassphraseEnv, tmp.PassphraseEnv)
	if tmp.RefreshInterval != "" {
		interval, err := time.ParseDuration(tmp.RefreshInterval)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'refresh_interval' param in yaml config: %w", err)
		}
		cfg.RefreshInterval = interval
	}

	if len(cfg.Fiat) == 0 || !domain.ContainsAsset(cfg.Fiat, cfg.Native) {
		return Config{}, fmt.Errorf("incorrect 'native' param in yaml config: %s must be listed in 'fiat'", cfg.Native)
	}

	return cfg, nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func toAssets(s []string) []domain.Asset {
	out := make([]domain.Asset, 0, len(s))
	for _, v := range s {
		out = append(out, domain.Asset(v))
	}
	return out
}
