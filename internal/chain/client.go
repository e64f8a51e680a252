package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"cenvorto/internal/logger"
)

// ErrTransactionReverted reports a mined but failed winner-marking call.
var ErrTransactionReverted = errors.New("transaction reverted")

// Client is the contract capability the reward bridge consumes: one write
// (markAsWinner) and two reads backing the cooldown check.
type Client interface {
	MarkAsWinner(ctx context.Context, chainID uint64, user string) (string, error)
	EligibleToClaim(ctx context.Context, chainID uint64, user string) (bool, error)
	LastClaimBlock(ctx context.Context, chainID uint64, user string) (uint64, error)
}

const rewardABI = `[
	{"type":"function","name":"markAsWinner","stateMutability":"nonpayable","inputs":[{"name":"user","type":"address"}],"outputs":[]},
	{"type":"function","name":"eligibleToClaim","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"lastClaimBlock","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// EvmClient talks to the reward contract over JSON-RPC, signing writes with
// the operator key. RPC connections are dialed lazily and cached per chain.
type EvmClient struct {
	registry    *Registry
	key         *ecdsa.PrivateKey
	from        common.Address
	abi         abi.ABI
	waitTimeout time.Duration

	mu      sync.Mutex
	clients map[uint64]*ethclient.Client
}

func NewEvmClient(registry *Registry, operatorKey string, waitTimeout time.Duration) (*EvmClient, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing operator key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(rewardABI))
	if err != nil {
		return nil, fmt.Errorf("parsing reward ABI: %w", err)
	}

	return &EvmClient{
		registry:    registry,
		key:         key,
		from:        crypto.PubkeyToAddress(key.PublicKey),
		abi:         parsed,
		waitTimeout: waitTimeout,
		clients:     make(map[uint64]*ethclient.Client),
	}, nil
}

func (c *EvmClient) dial(ctx context.Context, entry ChainConfig) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[entry.ChainID]; ok {
		return client, nil
	}

	client, err := ethclient.DialContext(ctx, entry.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing chain %d: %w", entry.ChainID, err)
	}
	c.clients[entry.ChainID] = client
	return client, nil
}

// call performs a read-only contract call and unpacks its outputs.
func (c *EvmClient) call(ctx context.Context, chainID uint64, method, user string) ([]interface{}, error) {
	entry, err := c.registry.Lookup(chainID)
	if err != nil {
		return nil, err
	}

	client, err := c.dial(ctx, entry)
	if err != nil {
		return nil, err
	}

	data, err := c.abi.Pack(method, common.HexToAddress(user))
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &entry.ContractAddress, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s on chain %d: %w", method, chainID, err)
	}

	return c.abi.Unpack(method, out)
}

func (c *EvmClient) EligibleToClaim(ctx context.Context, chainID uint64, user string) (bool, error) {
	out, err := c.call(ctx, chainID, "eligibleToClaim", user)
	if err != nil {
		return false, err
	}
	eligible, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected eligibleToClaim output %T", out[0])
	}
	return eligible, nil
}

func (c *EvmClient) LastClaimBlock(ctx context.Context, chainID uint64, user string) (uint64, error) {
	out, err := c.call(ctx, chainID, "lastClaimBlock", user)
	if err != nil {
		return 0, err
	}
	block, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected lastClaimBlock output %T", out[0])
	}
	return block.Uint64(), nil
}

// MarkAsWinner submits the winner-marking transaction and waits, bounded by
// the configured timeout, for it to be mined. A timeout is reported as a
// failure, never a silent hang.
func (c *EvmClient) MarkAsWinner(ctx context.Context, chainID uint64, user string) (string, error) {
	entry, err := c.registry.Lookup(chainID)
	if err != nil {
		return "", err
	}

	client, err := c.dial(ctx, entry)
	if err != nil {
		return "", err
	}

	data, err := c.abi.Pack("markAsWinner", common.HexToAddress(user))
	if err != nil {
		return "", fmt.Errorf("packing markAsWinner: %w", err)
	}

	nonce, err := client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("fetching nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching gas price: %w", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &entry.ContractAddress,
		Data: data,
	})
	if err != nil {
		return "", fmt.Errorf("estimating gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &entry.ContractAddress,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)), c.key)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	txHash := signed.Hash().Hex()
	logger.Info("winner transaction broadcast",
		zap.Uint64("chainId", chainID),
		zap.String("user", user),
		zap.String("txHash", txHash))

	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, client, signed)
	if err != nil {
		return "", fmt.Errorf("waiting for %s: %w", txHash, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: %s", ErrTransactionReverted, txHash)
	}

	return txHash, nil
}
