package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// ClaimRecord is the last epoch an address claimed.
type ClaimRecord struct {
	Address          string `json:"address"`
	LastClaimedEpoch uint64 `json:"last_claimed_epoch"`
}

// GenesisState defines the bonding manager genesis state
type GenesisState struct {
	Config       Config        `json:"config"`
	Epochs       []Epoch       `json:"epochs"`
	GlobalIndex  GlobalIndex   `json:"global_index"`
	Bonds        []Bond        `json:"bonds"`
	Unbondings   []Unbonding   `json:"unbondings"`
	ClaimRecords []ClaimRecord `json:"claim_records"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Config:       DefaultConfig(),
		Epochs:       []Epoch{},
		GlobalIndex:  NewGlobalIndex(),
		Bonds:        []Bond{},
		Unbondings:   []Unbonding{},
		ClaimRecords: []ClaimRecord{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Config.Validate(); err != nil {
		return err
	}
	for i, e := range gs.Epochs {
		if e.ID != uint64(i+1) {
			return ErrEpochNotFound.Wrapf("epoch ids must run 1..n, got %d at %d", e.ID, i)
		}
		if err := e.Validate(); err != nil {
			return err
		}
	}
	if gs.GlobalIndex.Bonded.IsNil() || gs.GlobalIndex.EpochProduct.IsNil() {
		return ErrInvalidConfig.Wrap("global index is unset")
	}

	bonded, product := math.ZeroInt(), math.ZeroInt()
	for _, b := range gs.Bonds {
		if b.Amount.IsNil() || b.Amount.IsNegative() || b.EpochProduct.IsNil() || b.EpochProduct.IsNegative() {
			return fmt.Errorf("bond of %s in %s: negative or unset amounts", b.Address, b.Denom)
		}
		bonded = bonded.Add(b.Amount)
		product = product.Add(b.EpochProduct)
	}
	if !bonded.Equal(gs.GlobalIndex.Bonded) || !product.Equal(gs.GlobalIndex.EpochProduct) {
		return ErrInsufficientBond.Wrapf(
			"bonds sum to %s/%s, global index holds %s/%s",
			bonded, product, gs.GlobalIndex.Bonded, gs.GlobalIndex.EpochProduct,
		)
	}
	return nil
}
