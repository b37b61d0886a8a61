package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/lptoken"
)

// GetNextPoolCounter returns the next pool counter value and increments it
func (k Keeper) GetNextPoolCounter(ctx context.Context) uint64 {
	store := k.getStore(ctx)
	bz := store.Get(PoolCounterKey)

	var counter uint64
	if bz != nil {
		counter = binary.BigEndian.Uint64(bz)
	}
	counter++

	nextBz := make([]byte, 8)
	binary.BigEndian.PutUint64(nextBz, counter)
	store.Set(PoolCounterKey, nextBz)
	return counter
}

// SetPoolCounter sets the pool counter
func (k Keeper) SetPoolCounter(ctx context.Context, counter uint64) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, counter)
	k.getStore(ctx).Set(PoolCounterKey, bz)
}

// GetPoolCounter returns the number of pools created so far
func (k Keeper) GetPoolCounter(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(PoolCounterKey)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

// CreatePool creates a new pool. The configured pool creation fee must be
// attached exactly and is forwarded to the fee collector.
func (k Keeper) CreatePool(ctx context.Context, info host.MessageInfo, msg types.MsgCreatePool) (*host.Response, error) {
	// 1. Validate the pool creation fee
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := assertFeePaid(info.Funds, cfg.PoolCreationFee); err != nil {
		return nil, err
	}

	// 2. Resolve the identifier
	counter := k.GetNextPoolCounter(ctx)
	identifier := msg.Identifier
	if identifier == "" {
		identifier = strconv.FormatUint(counter, 10)
	}
	if err := types.ValidateIdentifier(identifier); err != nil {
		return nil, err
	}
	if k.HasPool(ctx, identifier) {
		return nil, types.ErrPoolExists.Wrapf("pool %s already exists", identifier)
	}

	// 3. Build and validate the pool
	reserves := make([]math.Int, len(msg.AssetDenoms))
	for i := range reserves {
		reserves[i] = math.ZeroInt()
	}
	pool := types.Pool{
		Identifier:    identifier,
		AssetDenoms:   msg.AssetDenoms,
		AssetDecimals: msg.AssetDecimals,
		Reserves:      reserves,
		LPDenom:       lptoken.Denom(k.ModuleAddress(), identifier),
		PairType:      msg.PairType,
		Fees:          msg.Fees,
		TotalShare:    math.ZeroInt(),
		Features:      types.AllFeaturesEnabled(),
	}
	if err := pool.Validate(); err != nil {
		return nil, err
	}

	if err := k.SetPool(ctx, pool); err != nil {
		return nil, fmt.Errorf("CreatePool: save pool: %w", err)
	}
	k.metrics.PoolsCreated.Inc()

	k.Logger(ctx).Info("pool created",
		"identifier", identifier,
		"assets", fmt.Sprintf("%v", msg.AssetDenoms),
		"pair_type", msg.PairType.String(),
	)

	res := host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("pool_identifier", identifier).
		AddAttribute("lp_denom", pool.LPDenom).
		AddAttribute("pair_type", msg.PairType.String()).
		WithData(pool)
	if cfg.PoolCreationFee.IsPositive() {
		feeCollector, err := sdk.AccAddressFromBech32(cfg.FeeCollector)
		if err != nil {
			return nil, types.ErrInvalidConfig.Wrapf("fee collector: %s", err)
		}
		res.Send(feeCollector, cfg.PoolCreationFee)
	}
	return res, nil
}

// assertFeePaid checks funds are exactly the fee (nothing when the fee is zero).
func assertFeePaid(funds sdk.Coins, fee sdk.Coin) error {
	if fee.IsZero() {
		if !funds.IsZero() {
			return types.ErrInvalidPoolCreationFee.Wrapf("unexpected funds %s", funds)
		}
		return nil
	}
	if !funds.Equal(sdk.NewCoins(fee)) {
		return types.ErrInvalidPoolCreationFee.Wrapf("expected %s, got %s", fee, funds)
	}
	return nil
}

// HasPool reports whether a pool exists
func (k Keeper) HasPool(ctx context.Context, identifier string) bool {
	return k.getStore(ctx).Has(GetPoolKey(identifier))
}

// GetPool retrieves a pool by identifier.
// Returns ErrPoolNotFound if the pool does not exist.
func (k Keeper) GetPool(ctx context.Context, identifier string) (types.Pool, error) {
	bz := k.getStore(ctx).Get(GetPoolKey(identifier))
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %s not found", identifier)
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, fmt.Errorf("GetPool: unmarshal pool %s: %w", identifier, err)
	}
	return pool, nil
}

// SetPool saves a pool to the store
func (k Keeper) SetPool(ctx context.Context, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("SetPool: marshal pool %s: %w", pool.Identifier, err)
	}
	k.getStore(ctx).Set(GetPoolKey(pool.Identifier), bz)
	k.metrics.recordReserves(pool)
	return nil
}

// IteratePools iterates over pools in identifier order until cb returns true
func (k Keeper) IteratePools(ctx context.Context, cb func(pool types.Pool) (stop bool, err error)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), PoolKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			return fmt.Errorf("IteratePools: unmarshal pool: %w", err)
		}
		stop, err := cb(pool)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// GetAllPools returns every pool
func (k Keeper) GetAllPools(ctx context.Context) ([]types.Pool, error) {
	var pools []types.Pool
	err := k.IteratePools(ctx, func(pool types.Pool) (bool, error) {
		pools = append(pools, pool)
		return false, nil
	})
	return pools, err
}

// UpdatePoolFeatures toggles operations on a pool. Only the owner may call it.
func (k Keeper) UpdatePoolFeatures(ctx context.Context, info host.MessageInfo, msg types.MsgUpdatePoolFeatures) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := host.ValidateAuthority(cfg.Owner, info.Sender, types.ErrUnauthorized); err != nil {
		return nil, err
	}

	pool, err := k.GetPool(ctx, msg.PoolIdentifier)
	if err != nil {
		return nil, err
	}
	if msg.WithdrawalsEnabled != nil {
		pool.Features.WithdrawalsEnabled = *msg.WithdrawalsEnabled
	}
	if msg.DepositsEnabled != nil {
		pool.Features.DepositsEnabled = *msg.DepositsEnabled
	}
	if msg.SwapsEnabled != nil {
		pool.Features.SwapsEnabled = *msg.SwapsEnabled
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}

	return host.NewResponse().
		AddAttribute("pool_identifier", pool.Identifier).
		AddAttribute("withdrawals_enabled", strconv.FormatBool(pool.Features.WithdrawalsEnabled)).
		AddAttribute("deposits_enabled", strconv.FormatBool(pool.Features.DepositsEnabled)).
		AddAttribute("swaps_enabled", strconv.FormatBool(pool.Features.SwapsEnabled)), nil
}
