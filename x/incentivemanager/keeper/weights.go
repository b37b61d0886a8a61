package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
	"github.com/paw-chain/lhub/x/shared/history"
	"github.com/paw-chain/lhub/x/shared/lptoken"
)

func weightSubject(addr sdk.AccAddress, lpDenom string) []byte {
	return history.Subject(addr, []byte(lpDenom))
}

// GetLPWeight returns the weight of addr for lpDenom at epoch, falling back
// to the latest weight recorded before it.
func (k Keeper) GetLPWeight(ctx context.Context, addr sdk.AccAddress, lpDenom string, epoch uint64) (math.Int, error) {
	return k.weights.ValueAt(k.getStore(ctx), weightSubject(addr, lpDenom), epoch)
}

// GetTotalLPWeight returns the weight of every position on lpDenom at epoch.
func (k Keeper) GetTotalLPWeight(ctx context.Context, lpDenom string, epoch uint64) (math.Int, error) {
	return k.GetLPWeight(ctx, k.ModuleAddress(), lpDenom, epoch)
}

// SetLPWeight records a weight entry. Used by genesis; positions go through
// adjustWeight.
func (k Keeper) SetLPWeight(ctx context.Context, addr sdk.AccAddress, lpDenom string, epoch uint64, weight math.Int) error {
	store := k.getStore(ctx)
	store.Set(GetAddressLPDenomKey(addr, lpDenom), []byte{})
	return k.weights.Set(store, weightSubject(addr, lpDenom), epoch, weight)
}

// adjustWeight adds delta (which may be negative) to the weight of addr and
// to the total for lpDenom. Changes made during epoch e take effect at e+1.
// The total lives under the module address, so it is written once.
func (k Keeper) adjustWeight(ctx context.Context, addr sdk.AccAddress, lpDenom string, currentEpoch uint64, delta math.Int) error {
	if delta.IsZero() {
		return nil
	}
	effective := currentEpoch + 1
	subjects := []sdk.AccAddress{k.ModuleAddress()}
	if !addr.Equals(k.ModuleAddress()) {
		subjects = append(subjects, addr)
	}
	for _, subject := range subjects {
		latest, err := k.GetLPWeight(ctx, subject, lpDenom, effective)
		if err != nil {
			return err
		}
		updated := latest.Add(delta)
		if updated.IsNegative() {
			return types.ErrInvalidPositionAmount.Wrapf("weight of %s for %s would become %s", subject, lpDenom, updated)
		}
		if err := k.SetLPWeight(ctx, subject, lpDenom, effective, updated); err != nil {
			return err
		}
	}
	return nil
}

// OnEpochChanged forward-fills the total weight of every LP denom the module
// holds into the new epoch, so totals persist across epochs without
// position changes. Only the epoch manager may call it.
func (k Keeper) OnEpochChanged(ctx context.Context, info host.MessageInfo, msg types.MsgOnEpochChanged) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := host.ValidateAuthority(cfg.EpochManager, info.Sender, types.ErrUnauthorized); err != nil {
		return nil, err
	}

	store := k.getStore(ctx)
	moduleAddr := k.ModuleAddress()
	filled := 0
	for _, coin := range k.bankKeeper.GetAllBalances(ctx, moduleAddr) {
		if !lptoken.IsLPDenom(coin.Denom) {
			continue
		}
		subject := weightSubject(moduleAddr, coin.Denom)
		if k.weights.Has(store, subject, msg.Epoch.ID) {
			continue
		}
		latest, _, found, err := k.weights.LatestAt(store, subject, msg.Epoch.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if err := k.weights.Set(store, subject, msg.Epoch.ID, latest); err != nil {
			return nil, err
		}
		filled++
	}

	k.Logger(ctx).Debug("epoch changed", "epoch", msg.Epoch.ID, "forward_filled", filled)
	return host.NewResponse().
		AddAttribute("epoch", fmt.Sprintf("%d", msg.Epoch.ID)).
		AddAttribute("forward_filled", fmt.Sprintf("%d", filled)), nil
}

// lpDenomsOf returns every LP denom addr has a weight history for.
func (k Keeper) lpDenomsOf(ctx context.Context, addr sdk.AccAddress) []string {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), GetAddressLPDenomsPrefix(addr))
	defer iter.Close()

	var denoms []string
	for ; iter.Valid(); iter.Next() {
		_, denom := splitAddressLPDenomKey(iter.Key())
		denoms = append(denoms, denom)
	}
	return denoms
}

// GetAllLPWeights exports the whole weight history.
func (k Keeper) GetAllLPWeights(ctx context.Context) ([]types.LPWeight, error) {
	store := k.getStore(ctx)
	iter := storetypes.KVStorePrefixIterator(store, AddressLPDenomPrefix)
	defer iter.Close()

	var out []types.LPWeight
	for ; iter.Valid(); iter.Next() {
		addr, denom := splitAddressLPDenomKey(iter.Key())
		address := sdk.AccAddress(addr).String()
		err := k.weights.Iterate(store, weightSubject(addr, denom), func(epoch uint64, value math.Int) bool {
			out = append(out, types.LPWeight{Address: address, LPDenom: denom, Epoch: epoch, Weight: value})
			return false
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
