package types

import (
	"fmt"
	"regexp"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// PairKind selects the pricing curve of a pool.
type PairKind string

const (
	ConstantProduct PairKind = "constant_product"
	StableSwap      PairKind = "stable_swap"
)

// MaxAmplification caps the stableswap amplification coefficient.
const MaxAmplification = 1_000_000

// PairType is the curve of a pool plus its parameters.
type PairType struct {
	Kind PairKind `json:"kind"`
	// Amp is the stableswap amplification coefficient.
	Amp uint64 `json:"amp,omitempty"`
}

// NewConstantProduct returns the x*y=k pair type.
func NewConstantProduct() PairType {
	return PairType{Kind: ConstantProduct}
}

// NewStableSwap returns a stableswap pair type with the given amplification.
func NewStableSwap(amp uint64) PairType {
	return PairType{Kind: StableSwap, Amp: amp}
}

func (p PairType) String() string {
	if p.Kind == StableSwap {
		return fmt.Sprintf("%s(amp=%d)", p.Kind, p.Amp)
	}
	return string(p.Kind)
}

// Validate checks the pair type against the number of pooled assets.
func (p PairType) Validate(assetCount int) error {
	switch p.Kind {
	case ConstantProduct:
		if assetCount != 2 {
			return ErrInvalidAssetCount.Wrapf("constant product pools hold exactly 2 assets, got %d", assetCount)
		}
	case StableSwap:
		if p.Amp == 0 || p.Amp > MaxAmplification {
			return ErrInvalidAmplification.Wrapf("amp %d outside [1, %d]", p.Amp, MaxAmplification)
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown pair type %q", p.Kind)
	}
	return nil
}

// PoolFees are the shares of a swap's output taken as fees.
type PoolFees struct {
	// ProtocolFee goes to the fee collector.
	ProtocolFee math.LegacyDec `json:"protocol_fee"`
	// SwapFee stays in the pool for liquidity providers.
	SwapFee math.LegacyDec `json:"swap_fee"`
	// BurnFee is burned.
	BurnFee math.LegacyDec `json:"burn_fee"`
}

// ZeroFees returns a fee schedule that charges nothing.
func ZeroFees() PoolFees {
	return PoolFees{
		ProtocolFee: math.LegacyZeroDec(),
		SwapFee:     math.LegacyZeroDec(),
		BurnFee:     math.LegacyZeroDec(),
	}
}

// Total returns the combined fee share.
func (f PoolFees) Total() math.LegacyDec {
	return f.ProtocolFee.Add(f.SwapFee).Add(f.BurnFee)
}

// Validate checks every share lies in [0,1] and they sum below one.
func (f PoolFees) Validate() error {
	for _, fee := range []struct {
		name  string
		share math.LegacyDec
	}{
		{"protocol", f.ProtocolFee},
		{"swap", f.SwapFee},
		{"burn", f.BurnFee},
	} {
		if fee.share.IsNil() || fee.share.IsNegative() || fee.share.GT(math.LegacyOneDec()) {
			return ErrInvalidFees.Wrapf("%s fee %s outside [0,1]", fee.name, fee.share)
		}
	}
	if f.Total().GTE(math.LegacyOneDec()) {
		return ErrInvalidFees.Wrapf("total fee %s must be below 1", f.Total())
	}
	return nil
}

// PoolFeatures toggles operations on a pool.
type PoolFeatures struct {
	WithdrawalsEnabled bool `json:"withdrawals_enabled"`
	DepositsEnabled    bool `json:"deposits_enabled"`
	SwapsEnabled       bool `json:"swaps_enabled"`
}

// AllFeaturesEnabled returns the default feature set.
func AllFeaturesEnabled() PoolFeatures {
	return PoolFeatures{WithdrawalsEnabled: true, DepositsEnabled: true, SwapsEnabled: true}
}

// Pool is a liquidity pool of two or more assets.
type Pool struct {
	Identifier    string       `json:"identifier"`
	AssetDenoms   []string     `json:"asset_denoms"`
	AssetDecimals []uint32     `json:"asset_decimals"`
	Reserves      []math.Int   `json:"reserves"`
	LPDenom       string       `json:"lp_denom"`
	PairType      PairType     `json:"pair_type"`
	Fees          PoolFees     `json:"fees"`
	TotalShare    math.Int     `json:"total_share"`
	Features      PoolFeatures `json:"features"`
}

// AssetIndex returns the position of denom in the pool.
func (p Pool) AssetIndex(denom string) (int, bool) {
	for i, d := range p.AssetDenoms {
		if d == denom {
			return i, true
		}
	}
	return -1, false
}

// Assets returns the reserves as coins.
func (p Pool) Assets() sdk.Coins {
	coins := make([]sdk.Coin, 0, len(p.AssetDenoms))
	for i, d := range p.AssetDenoms {
		coins = append(coins, sdk.NewCoin(d, p.Reserves[i]))
	}
	return sdk.NewCoins(coins...)
}

// MaxDecimals is the common precision amounts are scaled to for pricing.
func (p Pool) MaxDecimals() uint32 {
	var max uint32
	for _, d := range p.AssetDecimals {
		if d > max {
			max = d
		}
	}
	return max
}

// MaxAssetDecimals bounds the precision of a pooled asset, keeping every
// amount scaled to the pool's common precision within 256 bits.
const MaxAssetDecimals = 18

// ValidateDecimals checks each asset precision is at most MaxAssetDecimals.
func ValidateDecimals(decimals []uint32) error {
	for i, d := range decimals {
		if d > MaxAssetDecimals {
			return ErrInvalidDecimals.Wrapf("asset %d has %d decimals, max %d", i, d, MaxAssetDecimals)
		}
	}
	return nil
}

// Validate checks the structural invariants of a pool.
func (p Pool) Validate() error {
	if err := ValidateIdentifier(p.Identifier); err != nil {
		return err
	}
	n := len(p.AssetDenoms)
	if n < 2 || n > MaxAssetsPerPool {
		return ErrInvalidAssetCount.Wrapf("got %d, want 2..%d", n, MaxAssetsPerPool)
	}
	if len(p.AssetDecimals) != n || len(p.Reserves) != n {
		return ErrInvalidAssetCount.Wrapf("%d denoms, %d decimals, %d reserves", n, len(p.AssetDecimals), len(p.Reserves))
	}
	if err := ValidateDecimals(p.AssetDecimals); err != nil {
		return err
	}
	seen := make(map[string]struct{}, n)
	for i, d := range p.AssetDenoms {
		if err := sdk.ValidateDenom(d); err != nil {
			return errors.Wrapf(ErrAssetMismatch, "asset %d: %s", i, err)
		}
		if _, dup := seen[d]; dup {
			return ErrSameAsset.Wrap(d)
		}
		seen[d] = struct{}{}
		if p.Reserves[i].IsNil() || p.Reserves[i].IsNegative() {
			return ErrInsufficientReserves.Wrapf("reserve of %s is negative", d)
		}
	}
	if p.TotalShare.IsNil() || p.TotalShare.IsNegative() {
		return errors.Wrap(ErrInvalidConfig, "total share is negative")
	}
	if err := p.PairType.Validate(n); err != nil {
		return err
	}
	return p.Fees.Validate()
}

var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateIdentifier checks a pool identifier can be embedded in a denom.
func ValidateIdentifier(id string) error {
	if len(id) == 0 || len(id) > MaxIdentifierLength || !identifierRegex.MatchString(id) {
		return ErrInvalidIdentifier.Wrapf("%q", id)
	}
	return nil
}
