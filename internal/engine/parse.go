package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"swapPool/internal/model"
)

// ParseAddress validates and converts a hex address string.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// LoadGenesis reads and validates a genesis balance file.
func LoadGenesis(path string) (model.Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("read genesis: %w", err)
	}

	var genesis model.Genesis
	if err := json.Unmarshal(data, &genesis); err != nil {
		return model.Genesis{}, fmt.Errorf("parse genesis: %w", err)
	}

	seen := make(map[common.Address]struct{}, len(genesis.Accounts))
	for i, account := range genesis.Accounts {
		addr, err := ParseAddress(account.Address)
		if err != nil {
			return model.Genesis{}, fmt.Errorf("genesis account %d: %w", i, err)
		}
		if _, ok := seen[addr]; ok {
			return model.Genesis{}, fmt.Errorf("genesis account %d: duplicate address %s", i, account.Address)
		}
		seen[addr] = struct{}{}
	}

	return genesis, nil
}
