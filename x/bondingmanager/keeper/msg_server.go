package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
)

// NewHandler returns the host handler for bonding manager messages.
func NewHandler(k *Keeper) host.Handler {
	return func(ctx sdk.Context, info host.MessageInfo, msg host.Msg) (*host.Response, error) {
		switch msg := msg.(type) {
		case types.MsgCreateNewEpoch:
			return k.CreateNewEpoch(ctx, info, msg)
		case types.MsgBond:
			return k.Bond(ctx, info, msg)
		case types.MsgUnbond:
			return k.Unbond(ctx, info, msg)
		case types.MsgWithdraw:
			return k.Withdraw(ctx, info, msg)
		case types.MsgClaim:
			return k.Claim(ctx, info, msg)
		case types.MsgUpdateConfig:
			return k.UpdateConfig(ctx, info, msg.Config)
		default:
			return nil, types.ErrInvalidConfig.Wrapf("unrecognized %s message type: %T", types.ModuleName, msg)
		}
	}
}
