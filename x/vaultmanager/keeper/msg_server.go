package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

// NewHandler returns the host handler for vault manager messages.
func NewHandler(k *Keeper) host.Handler {
	return func(ctx sdk.Context, info host.MessageInfo, msg host.Msg) (*host.Response, error) {
		switch msg := msg.(type) {
		case types.MsgCreateVault:
			return k.CreateVault(ctx, info, msg)
		case types.MsgDeposit:
			return k.Deposit(ctx, info, msg)
		case types.MsgWithdraw:
			return k.Withdraw(ctx, info, msg)
		case types.MsgFlashLoan:
			return k.FlashLoan(ctx, info, msg)
		case types.MsgFlashLoanCallback:
			return k.FlashLoanCallback(ctx, info, msg)
		case types.MsgUpdateVaultFlags:
			return k.UpdateVaultFlags(ctx, info, msg)
		case types.MsgUpdateConfig:
			return k.UpdateConfig(ctx, info, msg.Config)
		default:
			return nil, types.ErrInvalidConfig.Wrapf("unrecognized %s message type: %T", types.ModuleName, msg)
		}
	}
}
