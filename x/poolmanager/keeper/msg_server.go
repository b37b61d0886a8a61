package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/poolmanager/types"
)

// NewHandler returns the host handler for pool manager messages.
func NewHandler(k *Keeper) host.Handler {
	return func(ctx sdk.Context, info host.MessageInfo, msg host.Msg) (*host.Response, error) {
		switch msg := msg.(type) {
		case types.MsgCreatePool:
			return k.CreatePool(ctx, info, msg)
		case types.MsgProvideLiquidity:
			return k.ProvideLiquidity(ctx, info, msg)
		case types.MsgWithdrawLiquidity:
			return k.WithdrawLiquidity(ctx, info, msg)
		case types.MsgSwap:
			return k.Swap(ctx, info, msg)
		case types.MsgExecuteSwapOperations:
			return k.ExecuteSwapOperations(ctx, info, msg)
		case types.MsgAddSwapRoutes:
			return k.AddSwapRoutes(ctx, info, msg)
		case types.MsgUpdatePoolFeatures:
			return k.UpdatePoolFeatures(ctx, info, msg)
		case types.MsgUpdateConfig:
			return k.UpdateConfig(ctx, info, msg.Config)
		default:
			return nil, types.ErrInvalidConfig.Wrapf("unrecognized %s message type: %T", types.ModuleName, msg)
		}
	}
}
