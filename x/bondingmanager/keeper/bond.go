package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// Bond bonds the single attached coin at the current epoch.
func (k Keeper) Bond(ctx context.Context, info host.MessageInfo, _ types.MsgBond) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case info.Funds.IsZero():
		return nil, types.ErrNoFunds
	case len(info.Funds) > 1:
		return nil, types.ErrMultipleDenoms.Wrapf("%s", info.Funds)
	case !cfg.IsBondingAsset(info.Funds[0].Denom):
		return nil, types.ErrNoFunds.Wrapf("%s is not a bonding asset", info.Funds[0].Denom)
	}
	asset := info.Funds[0]

	if err := k.assertClaimed(ctx, info.Sender); err != nil {
		return nil, err
	}
	epoch := k.GetLastEpochID(ctx)
	if _, found := k.GetLastClaimedEpoch(ctx, info.Sender); !found {
		k.SetLastClaimedEpoch(ctx, info.Sender, epoch)
	}

	bond, err := k.GetBond(ctx, info.Sender, asset.Denom)
	if err != nil {
		return nil, err
	}
	product, err := fixedpoint.SafeMul(asset.Amount, math.NewIntFromUint64(epoch))
	if err != nil {
		return nil, err
	}
	bond.Amount = bond.Amount.Add(asset.Amount)
	bond.EpochProduct = bond.EpochProduct.Add(product)
	if err := k.SetBond(ctx, bond); err != nil {
		return nil, err
	}

	global, err := k.GetGlobalIndex(ctx)
	if err != nil {
		return nil, err
	}
	global.Bonded = global.Bonded.Add(asset.Amount)
	global.EpochProduct = global.EpochProduct.Add(product)
	if err := k.SetGlobalIndex(ctx, global); err != nil {
		return nil, err
	}
	k.metrics.Bonded.WithLabelValues(asset.Denom).Add(toFloat(asset.Amount))

	return host.NewResponse().
		AddAttribute("address", info.Sender.String()).
		AddAttribute("asset", asset.String()).
		AddAttribute("bonded_total", bond.Amount.String()), nil
}

// Unbond removes asset from the sender's bond and queues it for withdrawal
// after the unbonding period.
func (k Keeper) Unbond(ctx context.Context, info host.MessageInfo, msg types.MsgUnbond) (*host.Response, error) {
	if !info.Funds.IsZero() {
		return nil, types.ErrAssetMismatch.Wrapf("unbond takes no funds, got %s", info.Funds)
	}
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := k.assertClaimed(ctx, info.Sender); err != nil {
		return nil, err
	}

	bond, err := k.GetBond(ctx, info.Sender, msg.Asset.Denom)
	if err != nil {
		return nil, err
	}
	if bond.Amount.LT(msg.Asset.Amount) {
		return nil, types.ErrInsufficientBond.Wrapf("bonded %s%s, unbonding %s", bond.Amount, bond.Denom, msg.Asset)
	}
	pending, err := k.GetUnbondings(ctx, info.Sender, msg.Asset.Denom)
	if err != nil {
		return nil, err
	}
	if len(pending) >= int(cfg.MaxUnbondingEntries) {
		return nil, types.ErrTooManyUnbondings.Wrapf("%d pending", len(pending))
	}

	released, err := types.UnbondEpochProduct(bond.Amount, bond.EpochProduct, msg.Asset.Amount)
	if err != nil {
		return nil, err
	}
	bond.Amount = bond.Amount.Sub(msg.Asset.Amount)
	if bond.EpochProduct, err = fixedpoint.SafeSub(bond.EpochProduct, released); err != nil {
		return nil, err
	}
	if err := k.SetBond(ctx, bond); err != nil {
		return nil, err
	}

	global, err := k.GetGlobalIndex(ctx)
	if err != nil {
		return nil, err
	}
	if global.Bonded, err = fixedpoint.SafeSub(global.Bonded, msg.Asset.Amount); err != nil {
		return nil, err
	}
	if global.EpochProduct, err = fixedpoint.SafeSub(global.EpochProduct, released); err != nil {
		return nil, err
	}
	if err := k.SetGlobalIndex(ctx, global); err != nil {
		return nil, err
	}

	releaseAt := sdk.UnwrapSDKContext(ctx).BlockTime().Add(cfg.UnbondingPeriod)
	if err := k.addUnbonding(ctx, types.Unbonding{
		Address:   info.Sender.String(),
		Asset:     msg.Asset,
		ReleaseAt: releaseAt,
	}); err != nil {
		return nil, err
	}
	k.metrics.Bonded.WithLabelValues(msg.Asset.Denom).Sub(toFloat(msg.Asset.Amount))

	return host.NewResponse().
		AddAttribute("address", info.Sender.String()).
		AddAttribute("asset", msg.Asset.String()).
		AddAttribute("release_at", releaseAt.Format(time.RFC3339)), nil
}

// Withdraw pays out every unbonding of denom whose period has passed.
func (k Keeper) Withdraw(ctx context.Context, info host.MessageInfo, msg types.MsgWithdraw) (*host.Response, error) {
	now := sdk.UnwrapSDKContext(ctx).BlockTime()
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, GetUnbondingsPrefix(info.Sender, msg.Denom))

	var matured [][]byte
	total := math.ZeroInt()
	for ; iterator.Valid(); iterator.Next() {
		var u types.Unbonding
		if err := json.Unmarshal(iterator.Value(), &u); err != nil {
			iterator.Close()
			return nil, fmt.Errorf("Withdraw: unmarshal unbonding: %w", err)
		}
		if u.ReleaseAt.After(now) {
			continue
		}
		matured = append(matured, append([]byte{}, iterator.Key()...))
		total = total.Add(u.Asset.Amount)
	}
	iterator.Close()

	if total.IsZero() {
		return nil, types.ErrNothingToWithdraw.Wrapf("no matured unbondings of %s", msg.Denom)
	}
	for _, key := range matured {
		store.Delete(key)
	}

	payout := sdk.NewCoin(msg.Denom, total)
	return host.NewResponse().
		AddAttribute("address", info.Sender.String()).
		AddAttribute("amount", payout.String()).
		Send(info.Sender, payout), nil
}

// GetBond returns the bond of addr in denom, empty when none exists.
func (k Keeper) GetBond(ctx context.Context, addr sdk.AccAddress, denom string) (types.Bond, error) {
	bz := k.getStore(ctx).Get(GetBondKey(addr, denom))
	if bz == nil {
		return types.Bond{
			Address:      addr.String(),
			Denom:        denom,
			Amount:       math.ZeroInt(),
			EpochProduct: math.ZeroInt(),
		}, nil
	}
	var bond types.Bond
	if err := json.Unmarshal(bz, &bond); err != nil {
		return types.Bond{}, fmt.Errorf("GetBond: unmarshal bond: %w", err)
	}
	return bond, nil
}

// SetBond stores a bond, deleting it once nothing is bonded.
func (k Keeper) SetBond(ctx context.Context, bond types.Bond) error {
	addr, err := sdk.AccAddressFromBech32(bond.Address)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("%s", err)
	}
	key := GetBondKey(addr, bond.Denom)
	if bond.Amount.IsZero() {
		k.getStore(ctx).Delete(key)
		return nil
	}
	bz, err := json.Marshal(bond)
	if err != nil {
		return fmt.Errorf("SetBond: marshal bond: %w", err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// GetBonds returns every bond of addr.
func (k Keeper) GetBonds(ctx context.Context, addr sdk.AccAddress) ([]types.Bond, error) {
	return k.iterateBonds(ctx, GetBondsPrefix(addr))
}

// GetAllBonds returns every bond.
func (k Keeper) GetAllBonds(ctx context.Context) ([]types.Bond, error) {
	return k.iterateBonds(ctx, BondKeyPrefix)
}

func (k Keeper) iterateBonds(ctx context.Context, prefix []byte) ([]types.Bond, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	var bonds []types.Bond
	for ; iterator.Valid(); iterator.Next() {
		var bond types.Bond
		if err := json.Unmarshal(iterator.Value(), &bond); err != nil {
			return nil, fmt.Errorf("iterateBonds: unmarshal bond: %w", err)
		}
		bonds = append(bonds, bond)
	}
	return bonds, nil
}

// Bonded returns the coins bonded by addr.
func (k Keeper) Bonded(ctx context.Context, addr sdk.AccAddress) (sdk.Coins, error) {
	bonds, err := k.GetBonds(ctx, addr)
	if err != nil {
		return nil, err
	}
	out := sdk.NewCoins()
	for _, b := range bonds {
		out = out.Add(sdk.NewCoin(b.Denom, b.Amount))
	}
	return out, nil
}

// GetGlobalIndex returns the global index.
func (k Keeper) GetGlobalIndex(ctx context.Context) (types.GlobalIndex, error) {
	bz := k.getStore(ctx).Get(GlobalIndexKey)
	if bz == nil {
		return types.NewGlobalIndex(), nil
	}
	var g types.GlobalIndex
	if err := json.Unmarshal(bz, &g); err != nil {
		return types.GlobalIndex{}, fmt.Errorf("GetGlobalIndex: unmarshal: %w", err)
	}
	return g, nil
}

// SetGlobalIndex stores the global index.
func (k Keeper) SetGlobalIndex(ctx context.Context, g types.GlobalIndex) error {
	bz, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("SetGlobalIndex: marshal: %w", err)
	}
	k.getStore(ctx).Set(GlobalIndexKey, bz)
	return nil
}

func (k Keeper) addUnbonding(ctx context.Context, u types.Unbonding) error {
	addr, err := sdk.AccAddressFromBech32(u.Address)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("%s", err)
	}
	store := k.getStore(ctx)
	var seq uint64
	if bz := store.Get(UnbondingSeqKey); bz != nil {
		seq = sdk.BigEndianToUint64(bz)
	}
	seq++
	store.Set(UnbondingSeqKey, uint64Bytes(seq))

	bz, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("addUnbonding: marshal: %w", err)
	}
	store.Set(GetUnbondingKey(addr, u.Asset.Denom, seq), bz)
	return nil
}

// GetUnbondings returns the pending unbondings of addr in denom, oldest first.
func (k Keeper) GetUnbondings(ctx context.Context, addr sdk.AccAddress, denom string) ([]types.Unbonding, error) {
	return k.iterateUnbondings(ctx, GetUnbondingsPrefix(addr, denom))
}

// GetAllUnbondings returns every pending unbonding.
func (k Keeper) GetAllUnbondings(ctx context.Context) ([]types.Unbonding, error) {
	return k.iterateUnbondings(ctx, UnbondingKeyPrefix)
}

func (k Keeper) iterateUnbondings(ctx context.Context, prefix []byte) ([]types.Unbonding, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	var out []types.Unbonding
	for ; iterator.Valid(); iterator.Next() {
		var u types.Unbonding
		if err := json.Unmarshal(iterator.Value(), &u); err != nil {
			return nil, fmt.Errorf("iterateUnbondings: unmarshal: %w", err)
		}
		out = append(out, u)
	}
	return out, nil
}
