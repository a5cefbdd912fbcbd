package clients

import (
	"context"
	"math/big"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

var (
	satoshiPerBTC = decimal.New(1, 8)
	weiPerETH     = decimal.New(1, 18)
)

// BlockchainInfoClient queries bitcoin address balances from the
// blockchain.info API. All requested addresses go out in one call, joined
// with "|".
type BlockchainInfoClient struct {
	rest    *RESTClient
	baseURL string
}

func NewBlockchainInfoClient(baseURL string, logger *zap.Logger) *BlockchainInfoClient {
	return &BlockchainInfoClient{
		rest:    NewRESTClient("blockchain.info", 1, logger),
		baseURL: baseURL,
	}
}

// Balances returns per-address BTC balances. The API reports satoshis.
func (c *BlockchainInfoClient) Balances(ctx context.Context, addresses []string) (map[string]decimal.Decimal, error) {
	if len(addresses) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	var raw map[string]struct {
		FinalBalance decimal.Decimal `json:"final_balance"`
	}
	reqURL := c.baseURL + "/balance?active=" + url.QueryEscape(strings.Join(addresses, "|"))
	if err := c.rest.Get(ctx, reqURL, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(raw))
	for addr, b := range raw {
		out[addr] = b.FinalBalance.Div(satoshiPerBTC)
	}
	return out, nil
}

// EthNodeClient queries ether address balances over JSON-RPC.
type EthNodeClient struct {
	rpcURL string
	logger *zap.Logger
}

func NewEthNodeClient(rpcURL string, logger *zap.Logger) *EthNodeClient {
	return &EthNodeClient{rpcURL: rpcURL, logger: logger.Named("ethnode")}
}

// Balances returns per-address ETH balances, converted from wei.
func (c *EthNodeClient) Balances(ctx context.Context, addresses []string) (map[string]decimal.Decimal, error) {
	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to eth node")
	}
	defer client.Close()

	out := make(map[string]decimal.Decimal, len(addresses))
	for _, addr := range addresses {
		if !common.IsHexAddress(addr) {
			return nil, errors.Errorf("invalid eth address %q", addr)
		}
		wei, err := client.BalanceAt(ctx, common.HexToAddress(addr), nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get balance for %s", addr)
		}
		out[addr] = decimal.NewFromBigInt(new(big.Int).Set(wei), 0).Div(weiPerETH)
	}
	return out, nil
}

// CoinExplorerClient queries address balances from coinexplorer.net. Only
// vertcoin is served there.
type CoinExplorerClient struct {
	rest    *RESTClient
	baseURL string
}

func NewCoinExplorerClient(baseURL string, logger *zap.Logger) *CoinExplorerClient {
	return &CoinExplorerClient{
		rest:    NewRESTClient("coinexplorer", 1, logger),
		baseURL: baseURL,
	}
}

// Balances returns per-address balances for the given asset, one call per
// address. Balances arrive already denominated in whole coins.
func (c *CoinExplorerClient) Balances(ctx context.Context, asset domain.Asset, addresses []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(addresses))
	for _, addr := range addresses {
		var resp struct {
			Success bool                       `json:"success"`
			Error   []string                   `json:"error"`
			Result  map[string]decimal.Decimal `json:"result"`
		}
		reqURL := c.baseURL + "/" + string(asset) + "/address/balance?address=" + url.QueryEscape(addr)
		if err := c.rest.Get(ctx, reqURL, &resp); err != nil {
			return nil, err
		}
		if len(resp.Error) > 0 {
			return nil, &domain.ExchangeReportedError{Source: "coinexplorer", Messages: resp.Error}
		}
		out[addr] = resp.Result[addr]
	}
	return out, nil
}
