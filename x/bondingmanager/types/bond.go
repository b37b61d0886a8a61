package types

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// Bond is the bonded amount of one address in one denom.
//
// EpochProduct is Σ amountᵢ·epochᵢ over every bond still held, which lets
// the weight at any later epoch be computed without iterating history.
type Bond struct {
	Address      string   `json:"address"`
	Denom        string   `json:"denom"`
	Amount       math.Int `json:"amount"`
	EpochProduct math.Int `json:"epoch_product"`
}

// GlobalIndex aggregates every bond.
type GlobalIndex struct {
	Bonded       math.Int `json:"bonded"`
	EpochProduct math.Int `json:"epoch_product"`
}

// NewGlobalIndex returns an empty global index.
func NewGlobalIndex() GlobalIndex {
	return GlobalIndex{Bonded: math.ZeroInt(), EpochProduct: math.ZeroInt()}
}

// Unbonding is bonded stake waiting out the unbonding period.
type Unbonding struct {
	Address   string    `json:"address"`
	Asset     sdk.Coin  `json:"asset"`
	ReleaseAt time.Time `json:"release_at"`
}

// Weight returns amount·D + G·(epoch·amount − epochProduct), where G/D is
// the growth rate with D = 10^18. Weights are exact integers, so the weight
// of the global index equals the sum of the weights of its bonds.
func Weight(amount, epochProduct math.Int, epoch uint64, growthRate math.LegacyDec) (math.Int, error) {
	if amount.IsZero() {
		return math.ZeroInt(), nil
	}
	base, err := fixedpoint.SafeMul(amount, fixedpoint.DecimalOne())
	if err != nil {
		return math.Int{}, err
	}
	aged, err := fixedpoint.SafeMul(amount, math.NewIntFromUint64(epoch))
	if err != nil {
		return math.Int{}, err
	}
	age, err := fixedpoint.SafeSub(aged, epochProduct)
	if err != nil {
		return math.Int{}, err
	}
	growth, err := fixedpoint.SafeMul(math.NewIntFromBigInt(growthRate.BigInt()), age)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.SafeAdd(base, growth)
}

// Weight returns the weight of the bond at epoch.
func (b Bond) Weight(epoch uint64, growthRate math.LegacyDec) (math.Int, error) {
	return Weight(b.Amount, b.EpochProduct, epoch, growthRate)
}

// Weight returns the global weight at epoch.
func (g GlobalIndex) Weight(epoch uint64, growthRate math.LegacyDec) (math.Int, error) {
	return Weight(g.Bonded, g.EpochProduct, epoch, growthRate)
}

// UnbondEpochProduct returns the share of epochProduct released when
// unbonding x of amount. It rounds down, which keeps the remaining bond no
// older than it was, so its weight stays within its proportional share.
func UnbondEpochProduct(amount, epochProduct, x math.Int) (math.Int, error) {
	if amount.IsZero() {
		return math.ZeroInt(), nil
	}
	if x.Equal(amount) {
		return epochProduct, nil
	}
	return fixedpoint.MulDiv(x, epochProduct, amount)
}
