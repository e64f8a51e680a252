package chain

import (
	"errors"
	"testing"

	"cenvorto/internal/config"
)

func TestRegistryLookup(t *testing.T) {
	registry, err := NewRegistry(config.New().Chains)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	entry, err := registry.Lookup(11155111)
	if err != nil {
		t.Fatalf("Lookup sepolia: %v", err)
	}
	if entry.RPCURL == "" {
		t.Error("resolved entry must carry an RPC URL")
	}

	if _, err := registry.Lookup(999999); !errors.Is(err, ErrUnknownChain) {
		t.Errorf("unknown chain: got %v, want ErrUnknownChain", err)
	}

	if ids := registry.ChainIDs(); len(ids) != 3 {
		t.Errorf("chain ids = %v, want 3 entries", ids)
	}
}

func TestRegistryValidation(t *testing.T) {
	tests := []struct {
		name  string
		table map[string]config.ChainConfig
	}{
		{
			name: "non-numeric chain id",
			table: map[string]config.ChainConfig{
				"mainnet": {ContractAddress: "0x0000000000000000000000000000000000000001", RPCURL: "http://x"},
			},
		},
		{
			name: "bad contract address",
			table: map[string]config.ChainConfig{
				"1": {ContractAddress: "not-an-address", RPCURL: "http://x"},
			},
		},
		{
			name: "missing rpc url",
			table: map[string]config.ChainConfig{
				"1": {ContractAddress: "0x0000000000000000000000000000000000000001"},
			},
		},
	}

	for _, tt := range tests {
		if _, err := NewRegistry(tt.table); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
