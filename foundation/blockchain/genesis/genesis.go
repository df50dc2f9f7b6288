// Package genesis maintains access to the genesis settings.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// The well known settings used when no genesis file is provided.
const (
	DefaultLabel          = "Genesis Block"
	DefaultInitialBalance = 5000
	DefaultMiningReward   = 1
)

// Genesis represents the genesis settings.
type Genesis struct {
	Date           time.Time  `json:"date"`
	Label          string     `json:"label"`           // Hashed to produce the address holding the initial supply.
	InitialBalance uint64     `json:"initial_balance"` // Amount minted by the genesis block.
	Difficulty     pow.Target `json:"difficulty"`      // Target every block must be mined against.
	MiningReward   uint64     `json:"mining_reward"`   // Reward for mining a block.
}

// Default returns the genesis settings the chain starts with.
func Default() Genesis {
	return Genesis{
		Label:          DefaultLabel,
		InitialBalance: DefaultInitialBalance,
		Difficulty:     pow.DefaultTarget,
		MiningReward:   DefaultMiningReward,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Missing fields take their
// default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("unmarshal genesis: %w", err)
	}

	if genesis.Label == "" {
		return Genesis{}, fmt.Errorf("genesis label is required")
	}

	if genesis.Difficulty.IsZero() {
		return Genesis{}, fmt.Errorf("genesis difficulty can't be zero")
	}

	return genesis, nil
}
