package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/poolmanager/types"
)

// AddSwapRoutes stores routes between denom pairs, replacing existing ones.
// Only the owner may call it. Every pool on a route must exist.
func (k Keeper) AddSwapRoutes(ctx context.Context, info host.MessageInfo, msg types.MsgAddSwapRoutes) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := host.ValidateAuthority(cfg.Owner, info.Sender, types.ErrUnauthorized); err != nil {
		return nil, err
	}

	res := host.NewResponse()
	for _, route := range msg.Routes {
		for _, op := range route.Operations {
			pool, err := k.GetPool(ctx, op.PoolIdentifier)
			if err != nil {
				return nil, err
			}
			if _, _, err := swapIndices(pool, op.OfferDenom, op.AskDenom); err != nil {
				return nil, err
			}
		}
		if err := k.SetSwapRoute(ctx, route); err != nil {
			return nil, err
		}
		res.AddAttribute("swap_route", fmt.Sprintf("%s/%s", route.OfferDenom, route.AskDenom))
	}
	return res, nil
}

// SetSwapRoute stores a route under its denom pair.
func (k Keeper) SetSwapRoute(ctx context.Context, route types.SwapRoute) error {
	if err := route.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("SetSwapRoute: marshal: %w", err)
	}
	k.getStore(ctx).Set(GetSwapRouteKey(route.OfferDenom, route.AskDenom), bz)
	return nil
}

// GetSwapRoute returns the stored route from offerDenom to askDenom.
func (k Keeper) GetSwapRoute(ctx context.Context, offerDenom, askDenom string) (types.SwapRoute, error) {
	bz := k.getStore(ctx).Get(GetSwapRouteKey(offerDenom, askDenom))
	if bz == nil {
		return types.SwapRoute{}, types.ErrNoSwapRouteForAssets.Wrapf("%s -> %s", offerDenom, askDenom)
	}
	var route types.SwapRoute
	if err := json.Unmarshal(bz, &route); err != nil {
		return types.SwapRoute{}, fmt.Errorf("GetSwapRoute: unmarshal: %w", err)
	}
	return route, nil
}

// GetAllSwapRoutes returns every stored route in key order.
func (k Keeper) GetAllSwapRoutes(ctx context.Context) ([]types.SwapRoute, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), SwapRouteKeyPrefix)
	defer iterator.Close()

	var routes []types.SwapRoute
	for ; iterator.Valid(); iterator.Next() {
		var route types.SwapRoute
		if err := json.Unmarshal(iterator.Value(), &route); err != nil {
			return nil, fmt.Errorf("GetAllSwapRoutes: unmarshal: %w", err)
		}
		routes = append(routes, route)
	}
	return routes, nil
}
