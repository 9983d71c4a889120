package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/lifeevents/les/internal/config"
)

// ERC-20 read surface used for balance lookups
const erc20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "_owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "balance", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "decimals",
		"outputs": [{"name": "", "type": "uint8"}],
		"type": "function"
	}
]`

// Client wraps the chain RPC used for platform token balance lookups.
// It is constructed once in main and passed to whoever needs it; there
// is no lazily-initialized package state.
type Client struct {
	client    *ethclient.Client
	tokenAddr common.Address
	tokenABI  abi.ABI
}

// Init connects to the chain RPC and prepares the token ABI.
func Init(cfg config.ChainConfig) (*Client, error) {
	client, err := ethclient.Dial(cfg.RpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain rpc: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	return &Client{
		client:    client,
		tokenAddr: common.HexToAddress(cfg.TokenAddress),
		tokenABI:  parsedABI,
	}, nil
}

// TokenBalance reads the platform token balance of a wallet.
func (c *Client) TokenBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	owner := common.HexToAddress(walletAddress)

	input, err := c.tokenABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	output, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.tokenAddr,
		Data: input,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	results, err := c.tokenABI.Unpack("balanceOf", output)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf result count: %d", len(results))
	}

	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", results[0])
	}

	return balance, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.client.Close()
}
