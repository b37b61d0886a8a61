package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
)

// NewHandler returns the host handler for incentive manager messages.
func NewHandler(k *Keeper) host.Handler {
	return func(ctx sdk.Context, info host.MessageInfo, msg host.Msg) (*host.Response, error) {
		switch msg := msg.(type) {
		case types.MsgFillIncentive:
			return k.FillIncentive(ctx, info, msg)
		case types.MsgCloseIncentive:
			return k.CloseIncentive(ctx, info, msg)
		case types.MsgOnEpochChanged:
			return k.OnEpochChanged(ctx, info, msg)
		case types.MsgClaim:
			return k.Claim(ctx, info, msg)
		case types.MsgFillPosition:
			return k.FillPosition(ctx, info, msg)
		case types.MsgClosePosition:
			return k.ClosePosition(ctx, info, msg)
		case types.MsgWithdrawPosition:
			return k.WithdrawPosition(ctx, info, msg)
		case types.MsgUpdateConfig:
			return k.UpdateConfig(ctx, info, msg.Config)
		default:
			return nil, types.ErrInvalidConfig.Wrapf("unrecognized %s message type: %T", types.ModuleName, msg)
		}
	}
}
