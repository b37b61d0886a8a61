package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
)

// nextCounter increments and returns the counter stored under key.
func (k Keeper) nextCounter(ctx context.Context, key []byte) uint64 {
	store := k.getStore(ctx)
	var counter uint64
	if bz := store.Get(key); bz != nil {
		counter = binary.BigEndian.Uint64(bz)
	}
	counter++
	store.Set(key, uint64Bytes(counter))
	return counter
}

func (k Keeper) getCounter(ctx context.Context, key []byte) uint64 {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

// FillIncentive expands the incentive named by the params when it exists and
// creates a new one otherwise.
func (k Keeper) FillIncentive(ctx context.Context, info host.MessageInfo, msg types.MsgFillIncentive) (*host.Response, error) {
	if msg.Params.Identifier != "" {
		incentive, err := k.GetIncentive(ctx, msg.Params.Identifier)
		if err == nil {
			return k.expandIncentive(ctx, info, incentive, msg.Params)
		}
		if !errors.Is(err, types.ErrIncentiveNotFound) {
			return nil, err
		}
	}
	return k.createIncentive(ctx, info, msg.Params)
}

func (k Keeper) createIncentive(ctx context.Context, info host.MessageInfo, params types.IncentiveParams) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}

	res := host.NewResponse()

	// expired incentives of the LP denom make room for the new one
	incentives, err := k.GetIncentivesByLPDenom(ctx, params.LPDenom)
	if err != nil {
		return nil, err
	}
	live := 0
	for _, incentive := range incentives {
		if !incentive.IsExpired(epoch.ID) {
			live++
			continue
		}
		if err := k.closeIncentive(ctx, res, incentive); err != nil {
			return nil, err
		}
	}
	if live >= int(cfg.MaxConcurrentIncentives) {
		return nil, types.ErrTooManyIncentives.Wrapf("max %d", cfg.MaxConcurrentIncentives)
	}

	if params.IncentiveAsset.Amount.LT(math.NewInt(types.MinIncentiveAmount)) {
		return nil, types.ErrInvalidIncentiveAmount.Wrapf("minimum is %d", types.MinIncentiveAmount)
	}
	if err := assertIncentiveFunds(info.Funds, params.IncentiveAsset, cfg.CreateIncentiveFee); err != nil {
		return nil, err
	}
	if cfg.CreateIncentiveFee.IsPositive() {
		feeCollector, err := sdk.AccAddressFromBech32(cfg.FeeCollector)
		if err != nil {
			return nil, types.ErrInvalidConfig.Wrapf("fee collector: %s", err)
		}
		res.Send(feeCollector, cfg.CreateIncentiveFee)
	}

	start, end, err := incentiveEpochs(params, epoch.ID, uint64(cfg.MaxIncentiveEpochBuffer))
	if err != nil {
		return nil, err
	}

	counter := k.nextCounter(ctx, IncentiveCounterKey)
	identifier := params.Identifier
	if identifier == "" {
		identifier = strconv.FormatUint(counter, 10)
	}
	if k.HasIncentive(ctx, identifier) {
		return nil, types.ErrIncentiveAlreadyExists.Wrap(identifier)
	}

	rate, err := emissionRate(params.IncentiveAsset.Amount, start, end)
	if err != nil {
		return nil, err
	}

	curve := params.Curve
	if curve == "" {
		curve = types.Linear
	}
	incentive := types.Incentive{
		Identifier:          identifier,
		Owner:               info.Sender.String(),
		LPDenom:             params.LPDenom,
		IncentiveAsset:      params.IncentiveAsset,
		StartEpoch:          start,
		PreliminaryEndEpoch: end,
		EmissionRate:        rate,
		Curve:               curve,
		ClaimedAmount:       math.ZeroInt(),
		LastEpochClaimed:    start - 1,
	}
	if err := k.SetIncentive(ctx, incentive); err != nil {
		return nil, err
	}
	k.metrics.IncentivesCreated.Inc()

	k.Logger(ctx).Info("incentive created",
		"identifier", identifier,
		"lp_denom", params.LPDenom,
		"asset", params.IncentiveAsset.String(),
		"start_epoch", start,
		"end_epoch", end,
	)

	return res.
		AddAttribute("incentive_creator", incentive.Owner).
		AddAttribute("incentive_identifier", identifier).
		AddAttribute("start_epoch", strconv.FormatUint(start, 10)).
		AddAttribute("preliminary_end_epoch", strconv.FormatUint(end, 10)).
		AddAttribute("emission_rate", rate.String()).
		AddAttribute("curve", string(curve)).
		AddAttribute("incentive_asset", incentive.IncentiveAsset.String()).
		AddAttribute("lp_denom", incentive.LPDenom).
		WithData(incentive), nil
}

// assertIncentiveFunds checks the attached funds are exactly the incentive
// asset plus the creation fee.
func assertIncentiveFunds(funds sdk.Coins, asset, fee sdk.Coin) error {
	expected := sdk.NewCoins(asset)
	if fee.IsPositive() {
		expected = expected.Add(fee)
		if funds.AmountOf(fee.Denom).LT(expected.AmountOf(fee.Denom)) {
			return types.ErrIncentiveFeeNotPaid.Wrapf("expected %s, got %s", expected, funds)
		}
	}
	if !funds.Equal(expected) {
		return types.ErrAssetMismatch.Wrapf("expected %s, got %s", expected, funds)
	}
	return nil
}

func (k Keeper) expandIncentive(ctx context.Context, info host.MessageInfo, incentive types.Incentive, params types.IncentiveParams) (*host.Response, error) {
	if incentive.Owner != info.Sender.String() {
		return nil, types.ErrUnauthorized.Wrapf("only %s can expand incentive %s", incentive.Owner, incentive.Identifier)
	}
	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if incentive.IsExpired(epoch.ID) {
		return nil, types.ErrIncentiveAlreadyExpired.Wrap(incentive.Identifier)
	}
	if params.IncentiveAsset.Denom != incentive.IncentiveAsset.Denom {
		return nil, types.ErrAssetMismatch.Wrapf("incentive pays %s, got %s", incentive.IncentiveAsset.Denom, params.IncentiveAsset.Denom)
	}
	if !info.Funds.Equal(sdk.NewCoins(params.IncentiveAsset)) {
		return nil, types.ErrAssetMismatch.Wrapf("expected %s, got %s", params.IncentiveAsset, info.Funds)
	}
	if !params.IncentiveAsset.Amount.Mod(incentive.EmissionRate).IsZero() {
		return nil, types.ErrInvalidExpansionAmount.Wrapf("emission rate is %s", incentive.EmissionRate)
	}

	extra := params.IncentiveAsset.Amount.Quo(incentive.EmissionRate)
	if !extra.IsUint64() || incentive.PreliminaryEndEpoch+extra.Uint64() < incentive.PreliminaryEndEpoch {
		return nil, types.ErrInvalidEpoch.Wrap("end epoch overflows")
	}
	incentive.IncentiveAsset = incentive.IncentiveAsset.Add(params.IncentiveAsset)
	incentive.PreliminaryEndEpoch += extra.Uint64()

	if err := k.SetIncentive(ctx, incentive); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("incentive_identifier", incentive.Identifier).
		AddAttribute("expanded_by", params.IncentiveAsset.String()).
		AddAttribute("total_incentive", incentive.IncentiveAsset.String()).
		AddAttribute("preliminary_end_epoch", strconv.FormatUint(incentive.PreliminaryEndEpoch, 10)).
		WithData(incentive), nil
}

// CloseIncentive closes an incentive and refunds its unclaimed balance to
// the owner. Anyone may close an expired incentive; a live one only its
// owner or the module owner.
func (k Keeper) CloseIncentive(ctx context.Context, info host.MessageInfo, msg types.MsgCloseIncentive) (*host.Response, error) {
	incentive, err := k.GetIncentive(ctx, msg.Identifier)
	if err != nil {
		return nil, err
	}
	if !info.Funds.IsZero() {
		return nil, types.ErrAssetMismatch.Wrapf("close takes no funds, got %s", info.Funds)
	}

	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	if !incentive.IsExpired(epoch.ID) {
		cfg, err := k.GetConfig(ctx)
		if err != nil {
			return nil, err
		}
		sender := info.Sender.String()
		if sender != incentive.Owner && (cfg.Owner == "" || sender != cfg.Owner) {
			return nil, types.ErrUnauthorized.Wrapf("%s cannot close live incentive %s", sender, incentive.Identifier)
		}
	}

	res := host.NewResponse().AddAttribute("incentive_identifier", incentive.Identifier)
	if err := k.closeIncentive(ctx, res, incentive); err != nil {
		return nil, err
	}
	return res, nil
}

// closeIncentive deletes an incentive and appends the refund of its
// unclaimed balance to res. It does not check the sender.
func (k Keeper) closeIncentive(ctx context.Context, res *host.Response, incentive types.Incentive) error {
	owner, err := sdk.AccAddressFromBech32(incentive.Owner)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("incentive owner %s: %s", incentive.Owner, err)
	}
	k.DeleteIncentive(ctx, incentive)
	k.metrics.IncentivesClosed.Inc()

	refund := sdk.NewCoin(incentive.IncentiveAsset.Denom, incentive.Remaining())
	res.Send(owner, refund).AddAttribute("closed_incentive", incentive.Identifier)
	k.Logger(ctx).Info("incentive closed", "identifier", incentive.Identifier, "refund", refund.String())
	return nil
}

// HasIncentive reports whether an incentive exists
func (k Keeper) HasIncentive(ctx context.Context, identifier string) bool {
	return k.getStore(ctx).Has(GetIncentiveKey(identifier))
}

// GetIncentive returns an incentive by identifier.
func (k Keeper) GetIncentive(ctx context.Context, identifier string) (types.Incentive, error) {
	bz := k.getStore(ctx).Get(GetIncentiveKey(identifier))
	if bz == nil {
		return types.Incentive{}, types.ErrIncentiveNotFound.Wrap(identifier)
	}
	var incentive types.Incentive
	if err := json.Unmarshal(bz, &incentive); err != nil {
		return types.Incentive{}, fmt.Errorf("GetIncentive: unmarshal %s: %w", identifier, err)
	}
	return incentive, nil
}

// SetIncentive saves an incentive and indexes it under its LP denom.
func (k Keeper) SetIncentive(ctx context.Context, incentive types.Incentive) error {
	bz, err := json.Marshal(incentive)
	if err != nil {
		return fmt.Errorf("SetIncentive: marshal %s: %w", incentive.Identifier, err)
	}
	store := k.getStore(ctx)
	store.Set(GetIncentiveKey(incentive.Identifier), bz)
	store.Set(GetIncentiveByLPDenomKey(incentive.LPDenom, incentive.Identifier), []byte{})
	return nil
}

// DeleteIncentive removes an incentive and its index entry.
func (k Keeper) DeleteIncentive(ctx context.Context, incentive types.Incentive) {
	store := k.getStore(ctx)
	store.Delete(GetIncentiveKey(incentive.Identifier))
	store.Delete(GetIncentiveByLPDenomKey(incentive.LPDenom, incentive.Identifier))
}

// GetIncentivesByLPDenom returns the incentives of an LP denom in identifier order.
func (k Keeper) GetIncentivesByLPDenom(ctx context.Context, lpDenom string) ([]types.Incentive, error) {
	prefix := GetIncentivesByLPDenomPrefix(lpDenom)
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	var ids []string
	for ; iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Key()[len(prefix):]))
	}
	iter.Close()

	incentives := make([]types.Incentive, 0, len(ids))
	for _, id := range ids {
		incentive, err := k.GetIncentive(ctx, id)
		if err != nil {
			return nil, err
		}
		incentives = append(incentives, incentive)
	}
	return incentives, nil
}

// GetAllIncentives returns every incentive in identifier order.
func (k Keeper) GetAllIncentives(ctx context.Context) ([]types.Incentive, error) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), IncentiveKeyPrefix)
	defer iter.Close()

	var incentives []types.Incentive
	for ; iter.Valid(); iter.Next() {
		var incentive types.Incentive
		if err := json.Unmarshal(iter.Value(), &incentive); err != nil {
			return nil, fmt.Errorf("GetAllIncentives: unmarshal: %w", err)
		}
		incentives = append(incentives, incentive)
	}
	return incentives, nil
}
