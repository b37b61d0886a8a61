package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	bondingtypes "github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	vaulttypes "github.com/paw-chain/lhub/x/vaultmanager/types"
)

// msgDecoder builds a message from its JSON body.
type msgDecoder func(body json.RawMessage) (host.Msg, error)

// decodeInto unmarshals body over defaults, so omitted fields keep their
// default values.
func decodeInto[T host.Msg](defaults func() T) msgDecoder {
	return func(body json.RawMessage) (host.Msg, error) {
		msg := defaults()
		if len(body) > 0 {
			if err := json.Unmarshal(body, &msg); err != nil {
				return nil, err
			}
		}
		return msg, nil
	}
}

func zero[T host.Msg]() T {
	var msg T
	return msg
}

func msgName(msg host.Msg) string {
	return msg.Route() + "/" + msg.Type()
}

var msgDecoders = map[string]msgDecoder{}

func registerMsg[T host.Msg](defaults func() T) {
	name := msgName(defaults())
	if _, ok := msgDecoders[name]; ok {
		panic(fmt.Sprintf("message %s registered twice", name))
	}
	msgDecoders[name] = decodeInto(defaults)
}

func init() {
	registerMsg(func() pooltypes.MsgCreatePool {
		return pooltypes.MsgCreatePool{Fees: pooltypes.ZeroFees(), PairType: pooltypes.NewConstantProduct()}
	})
	registerMsg(zero[pooltypes.MsgProvideLiquidity])
	registerMsg(zero[pooltypes.MsgWithdrawLiquidity])
	registerMsg(zero[pooltypes.MsgSwap])
	registerMsg(zero[pooltypes.MsgExecuteSwapOperations])
	registerMsg(zero[pooltypes.MsgAddSwapRoutes])
	registerMsg(zero[pooltypes.MsgUpdatePoolFeatures])
	registerMsg(func() pooltypes.MsgUpdateConfig {
		return pooltypes.MsgUpdateConfig{Config: pooltypes.DefaultConfig()}
	})

	registerMsg(func() vaulttypes.MsgCreateVault {
		return vaulttypes.MsgCreateVault{Fees: vaulttypes.VaultFees{
			ProtocolFee:  math.LegacyZeroDec(),
			FlashLoanFee: math.LegacyZeroDec(),
		}}
	})
	registerMsg(zero[vaulttypes.MsgDeposit])
	registerMsg(zero[vaulttypes.MsgWithdraw])
	registerMsg(func() vaulttypes.MsgUpdateVaultFlags {
		return vaulttypes.MsgUpdateVaultFlags{Flags: vaulttypes.AllFlagsEnabled()}
	})
	registerMsg(func() vaulttypes.MsgUpdateConfig {
		return vaulttypes.MsgUpdateConfig{Config: vaulttypes.DefaultConfig()}
	})

	registerMsg(zero[incentivetypes.MsgFillIncentive])
	registerMsg(zero[incentivetypes.MsgCloseIncentive])
	registerMsg(zero[incentivetypes.MsgClaim])
	registerMsg(zero[incentivetypes.MsgFillPosition])
	registerMsg(zero[incentivetypes.MsgClosePosition])
	registerMsg(zero[incentivetypes.MsgWithdrawPosition])
	registerMsg(func() incentivetypes.MsgUpdateConfig {
		return incentivetypes.MsgUpdateConfig{Config: incentivetypes.DefaultConfig()}
	})

	registerMsg(zero[bondingtypes.MsgCreateNewEpoch])
	registerMsg(zero[bondingtypes.MsgBond])
	registerMsg(zero[bondingtypes.MsgUnbond])
	registerMsg(zero[bondingtypes.MsgWithdraw])
	registerMsg(zero[bondingtypes.MsgClaim])
	registerMsg(func() bondingtypes.MsgUpdateConfig {
		return bondingtypes.MsgUpdateConfig{Config: bondingtypes.DefaultConfig()}
	})

	// flash loans carry nested messages and need their own decoder
	msgDecoders[vaulttypes.RouterKey+"/"+vaulttypes.TypeMsgFlashLoan] = decodeFlashLoan
}

// flashLoanBody is the scenario form of a flash loan: each inner message is
// named like a step.
type flashLoanBody struct {
	VaultIdentifier string     `json:"vault_identifier"`
	Asset           sdk.Coin   `json:"asset"`
	Msgs            []innerMsg `json:"msgs"`
}

type innerMsg struct {
	Msg   string          `json:"msg"`
	Body  json.RawMessage `json:"body,omitempty"`
	Funds []string        `json:"funds,omitempty"`
}

func decodeFlashLoan(body json.RawMessage) (host.Msg, error) {
	var raw flashLoanBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	msg := vaulttypes.MsgFlashLoan{VaultIdentifier: raw.VaultIdentifier, Asset: raw.Asset}
	for i, inner := range raw.Msgs {
		m, err := decodeMsg(inner.Msg, inner.Body)
		if err != nil {
			return nil, fmt.Errorf("flash loan message %d: %w", i, err)
		}
		funds, err := parseCoins(inner.Funds)
		if err != nil {
			return nil, fmt.Errorf("flash loan message %d: %w", i, err)
		}
		msg.Msgs = append(msg.Msgs, vaulttypes.FlashLoanMessage{Msg: m, Funds: funds})
	}
	return msg, nil
}

// decodeMsg looks up name ("<module>/<type>") and decodes body into it.
func decodeMsg(name string, body json.RawMessage) (host.Msg, error) {
	decode, ok := msgDecoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown message %q", name)
	}
	msg, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", name, err)
	}
	return msg, nil
}

// MessageNames lists every message a scenario can send.
func MessageNames() []string {
	names := make([]string, 0, len(msgDecoders))
	for name := range msgDecoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseCoins(raw []string) (sdk.Coins, error) {
	var coins sdk.Coins
	for _, s := range raw {
		parsed, err := sdk.ParseCoinsNormalized(s)
		if err != nil {
			return nil, fmt.Errorf("invalid coins %q: %w", s, err)
		}
		coins = coins.Add(parsed...)
	}
	return coins, nil
}
