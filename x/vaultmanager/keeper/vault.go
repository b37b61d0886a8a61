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
	"github.com/paw-chain/lhub/x/shared/lptoken"
	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

// nextVaultCounter increments and returns the vault counter.
func (k Keeper) nextVaultCounter(ctx context.Context) uint64 {
	counter := k.GetVaultCounter(ctx) + 1
	k.SetVaultCounter(ctx, counter)
	return counter
}

// GetVaultCounter returns the number of vaults created so far
func (k Keeper) GetVaultCounter(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(VaultCounterKey)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

// SetVaultCounter sets the vault counter
func (k Keeper) SetVaultCounter(ctx context.Context, counter uint64) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, counter)
	k.getStore(ctx).Set(VaultCounterKey, bz)
}

// CreateVault creates an empty vault for one asset. The configured creation
// fee must be attached exactly and goes to the fee collector.
func (k Keeper) CreateVault(ctx context.Context, info host.MessageInfo, msg types.MsgCreateVault) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.VaultCreationFee.IsZero() {
		if !info.Funds.IsZero() {
			return nil, types.ErrInvalidVaultCreationFee.Wrapf("unexpected funds %s", info.Funds)
		}
	} else if !info.Funds.Equal(sdk.NewCoins(cfg.VaultCreationFee)) {
		return nil, types.ErrInvalidVaultCreationFee.Wrapf("expected %s, got %s", cfg.VaultCreationFee, info.Funds)
	}

	counter := k.nextVaultCounter(ctx)
	identifier := msg.Identifier
	if identifier == "" {
		identifier = strconv.FormatUint(counter, 10)
	}
	if k.HasVault(ctx, identifier) {
		return nil, types.ErrVaultExists.Wrapf("vault %s already exists", identifier)
	}

	vault := types.Vault{
		Identifier:    identifier,
		AssetDenom:    msg.AssetDenom,
		LPDenom:       lptoken.Denom(k.ModuleAddress(), identifier),
		Fees:          msg.Fees,
		Flags:         types.AllFlagsEnabled(),
		TotalDeposits: math.ZeroInt(),
		TotalShare:    math.ZeroInt(),
	}
	if err := vault.Validate(); err != nil {
		return nil, err
	}
	if err := k.SetVault(ctx, vault); err != nil {
		return nil, err
	}
	k.metrics.VaultsCreated.Inc()

	k.Logger(ctx).Info("vault created",
		"identifier", identifier,
		"asset", msg.AssetDenom,
		"protocol_fee", msg.Fees.ProtocolFee.String(),
		"flash_loan_fee", msg.Fees.FlashLoanFee.String(),
	)

	res := host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("vault_identifier", identifier).
		AddAttribute("asset_denom", vault.AssetDenom).
		AddAttribute("lp_denom", vault.LPDenom).
		WithData(vault)
	if cfg.VaultCreationFee.IsPositive() {
		feeCollector, err := sdk.AccAddressFromBech32(cfg.FeeCollector)
		if err != nil {
			return nil, types.ErrInvalidConfig.Wrapf("fee collector: %s", err)
		}
		res.Send(feeCollector, cfg.VaultCreationFee)
	}
	return res, nil
}

// HasVault reports whether a vault exists
func (k Keeper) HasVault(ctx context.Context, identifier string) bool {
	return k.getStore(ctx).Has(GetVaultKey(identifier))
}

// GetVault retrieves a vault by identifier.
// Returns ErrNonExistentVault if the vault does not exist.
func (k Keeper) GetVault(ctx context.Context, identifier string) (types.Vault, error) {
	bz := k.getStore(ctx).Get(GetVaultKey(identifier))
	if bz == nil {
		return types.Vault{}, types.ErrNonExistentVault.Wrapf("vault %s not found", identifier)
	}
	var vault types.Vault
	if err := json.Unmarshal(bz, &vault); err != nil {
		return types.Vault{}, fmt.Errorf("GetVault: unmarshal vault %s: %w", identifier, err)
	}
	return vault, nil
}

// SetVault saves a vault to the store
func (k Keeper) SetVault(ctx context.Context, vault types.Vault) error {
	bz, err := json.Marshal(vault)
	if err != nil {
		return fmt.Errorf("SetVault: marshal vault %s: %w", vault.Identifier, err)
	}
	k.getStore(ctx).Set(GetVaultKey(vault.Identifier), bz)
	k.metrics.VaultDeposits.WithLabelValues(vault.Identifier, vault.AssetDenom).Set(toFloat(vault.TotalDeposits))
	return nil
}

// GetAllVaults returns every vault in identifier order
func (k Keeper) GetAllVaults(ctx context.Context) ([]types.Vault, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), VaultKeyPrefix)
	defer iterator.Close()

	var vaults []types.Vault
	for ; iterator.Valid(); iterator.Next() {
		var vault types.Vault
		if err := json.Unmarshal(iterator.Value(), &vault); err != nil {
			return nil, fmt.Errorf("GetAllVaults: unmarshal vault: %w", err)
		}
		vaults = append(vaults, vault)
	}
	return vaults, nil
}

// UpdateVaultFlags replaces the flags of a vault. Only the owner may call it.
func (k Keeper) UpdateVaultFlags(ctx context.Context, info host.MessageInfo, msg types.MsgUpdateVaultFlags) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := host.ValidateAuthority(cfg.Owner, info.Sender, types.ErrUnauthorized); err != nil {
		return nil, err
	}
	vault, err := k.GetVault(ctx, msg.VaultIdentifier)
	if err != nil {
		return nil, err
	}
	vault.Flags = msg.Flags
	if err := k.SetVault(ctx, vault); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("vault_identifier", vault.Identifier).
		AddAttribute("deposit_enabled", strconv.FormatBool(vault.Flags.DepositEnabled)).
		AddAttribute("withdraw_enabled", strconv.FormatBool(vault.Flags.WithdrawEnabled)).
		AddAttribute("flash_loan_enabled", strconv.FormatBool(vault.Flags.FlashLoanEnabled)), nil
}
