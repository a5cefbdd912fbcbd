package lookup

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/clients"
	"github.com/hodlboard/hodlboard/internal/domain"
)

// Service resolves on-chain balances for stored addresses. Each supported
// asset has its own upstream: blockchain.info for BTC, a JSON-RPC node for
// ETH and coinexplorer.net for VTC. Asking for anything else fails before a
// network call is made.
type Service struct {
	btc    *clients.BlockchainInfoClient
	eth    *clients.EthNodeClient
	vtc    *clients.CoinExplorerClient
	logger *zap.Logger
}

// Options carries the upstream endpoints.
type Options struct {
	BlockchainInfoURL string
	EthRPCURL         string
	CoinExplorerURL   string
}

func New(opts Options, logger *zap.Logger) *Service {
	return &Service{
		btc:    clients.NewBlockchainInfoClient(opts.BlockchainInfoURL, logger),
		eth:    clients.NewEthNodeClient(opts.EthRPCURL, logger),
		vtc:    clients.NewCoinExplorerClient(opts.CoinExplorerURL, logger),
		logger: logger.Named("lookup"),
	}
}

// Supported reports whether Balances can serve the asset.
func (s *Service) Supported(asset domain.Asset) bool {
	switch asset {
	case "BTC", "ETH", "VTC":
		return true
	default:
		return false
	}
}

// Balances returns per-address balances for one asset, already converted to
// whole coins.
func (s *Service) Balances(ctx context.Context, asset domain.Asset, addresses []string) (map[string]decimal.Decimal, error) {
	switch asset {
	case "BTC":
		return s.btc.Balances(ctx, addresses)
	case "ETH":
		return s.eth.Balances(ctx, addresses)
	case "VTC":
		return s.vtc.Balances(ctx, asset, addresses)
	default:
		return nil, &domain.UnsupportedAssetError{Asset: string(asset)}
	}
}
