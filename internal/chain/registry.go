package chain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"cenvorto/internal/config"
)

// ErrUnknownChain is returned for chain IDs with no configured contract.
// Unconfigured chains are a hard failure, never a silent fallback.
var ErrUnknownChain = errors.New("no contract configured for chain")

// ChainConfig is one resolved row of the chain table.
type ChainConfig struct {
	ChainID         uint64
	ContractAddress common.Address
	RPCURL          string
}

// Registry is the static chain-ID lookup table, loaded once at process start.
type Registry struct {
	chains map[uint64]ChainConfig
}

// NewRegistry resolves the configured chain table, validating chain IDs and
// contract addresses up front.
func NewRegistry(table map[string]config.ChainConfig) (*Registry, error) {
	chains := make(map[uint64]ChainConfig, len(table))
	for key, entry := range table {
		chainID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain ID %q: %w", key, err)
		}
		if !common.IsHexAddress(entry.ContractAddress) {
			return nil, fmt.Errorf("invalid contract address %q for chain %d", entry.ContractAddress, chainID)
		}
		if entry.RPCURL == "" {
			return nil, fmt.Errorf("missing rpc_url for chain %d", chainID)
		}
		chains[chainID] = ChainConfig{
			ChainID:         chainID,
			ContractAddress: common.HexToAddress(entry.ContractAddress),
			RPCURL:          entry.RPCURL,
		}
	}
	return &Registry{chains: chains}, nil
}

// Lookup returns the chain entry or ErrUnknownChain.
func (r *Registry) Lookup(chainID uint64) (ChainConfig, error) {
	entry, ok := r.chains[chainID]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}
	return entry, nil
}

// ChainIDs lists the configured chains in ascending order.
func (r *Registry) ChainIDs() []uint64 {
	ids := lo.Keys(r.chains)
	slices.Sort(ids)
	return ids
}
