package app

import (
	"context"
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/paw-chain/lhub/x/host"
)

var (
	balanceKeyPrefix = []byte{0x01}
	supplyKeyPrefix  = []byte{0x02}
)

func balancesPrefix(addr sdk.AccAddress) []byte {
	return append(append([]byte{}, balanceKeyPrefix...), address.MustLengthPrefix(addr)...)
}

func balanceKey(addr sdk.AccAddress, denom string) []byte {
	return append(balancesPrefix(addr), []byte(denom)...)
}

func supplyKey(denom string) []byte {
	return append(append([]byte{}, supplyKeyPrefix...), []byte(denom)...)
}

// LedgerBank is a store-backed bank. Its state lives in the multistore, so
// balances roll back with the branch a message runs in.
type LedgerBank struct {
	storeKey storetypes.StoreKey
}

// NewLedgerBank returns a bank over the given store.
func NewLedgerBank(key storetypes.StoreKey) *LedgerBank {
	return &LedgerBank{storeKey: key}
}

func (b LedgerBank) store(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey)
}

func readInt(bz []byte) math.Int {
	if bz == nil {
		return math.ZeroInt()
	}
	var v math.Int
	if err := json.Unmarshal(bz, &v); err != nil {
		panic(fmt.Sprintf("corrupt bank entry: %s", err))
	}
	return v
}

func writeInt(store storetypes.KVStore, key []byte, v math.Int) {
	if v.IsZero() {
		store.Delete(key)
		return
	}
	bz, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal bank entry: %s", err))
	}
	store.Set(key, bz)
}

// GetBalance returns the balance of addr in denom.
func (b LedgerBank) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, readInt(b.store(ctx).Get(balanceKey(addr, denom))))
}

// GetAllBalances returns every non-zero balance of addr, sorted by denom.
func (b LedgerBank) GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins {
	prefix := balancesPrefix(addr)
	iterator := storetypes.KVStorePrefixIterator(b.store(ctx), prefix)
	defer iterator.Close()

	coins := sdk.NewCoins()
	for ; iterator.Valid(); iterator.Next() {
		denom := string(iterator.Key()[len(prefix):])
		coins = coins.Add(sdk.NewCoin(denom, readInt(iterator.Value())))
	}
	return coins
}

// GetSupply returns the total supply of denom.
func (b LedgerBank) GetSupply(ctx context.Context, denom string) sdk.Coin {
	return sdk.NewCoin(denom, readInt(b.store(ctx).Get(supplyKey(denom))))
}

// SendCoins moves amt from one account to another.
func (b LedgerBank) SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	if !amt.IsValid() {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidCoins, "%s", amt)
	}
	store := b.store(ctx)
	for _, coin := range amt {
		from := balanceKey(fromAddr, coin.Denom)
		have := readInt(store.Get(from))
		if have.LT(coin.Amount) {
			return errorsmod.Wrapf(sdkerrors.ErrInsufficientFunds, "%s has %s%s, needs %s", fromAddr, have, coin.Denom, coin)
		}
		writeInt(store, from, have.Sub(coin.Amount))
		to := balanceKey(toAddr, coin.Denom)
		writeInt(store, to, readInt(store.Get(to)).Add(coin.Amount))
	}
	return nil
}

// MintCoins mints amt to the account of moduleName.
func (b LedgerBank) MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	return b.mint(ctx, host.ModuleAddress(moduleName), amt)
}

// BurnCoins burns amt from the account of moduleName.
func (b LedgerBank) BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error {
	if !amt.IsValid() {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidCoins, "%s", amt)
	}
	moduleAddr := host.ModuleAddress(moduleName)
	store := b.store(ctx)
	for _, coin := range amt {
		key := balanceKey(moduleAddr, coin.Denom)
		have := readInt(store.Get(key))
		if have.LT(coin.Amount) {
			return errorsmod.Wrapf(sdkerrors.ErrInsufficientFunds, "%s holds %s%s, burning %s", moduleName, have, coin.Denom, coin)
		}
		writeInt(store, key, have.Sub(coin.Amount))
		writeInt(store, supplyKey(coin.Denom), readInt(store.Get(supplyKey(coin.Denom))).Sub(coin.Amount))
	}
	return nil
}

// SendCoinsFromModuleToAccount moves amt from a module account to recipientAddr.
func (b LedgerBank) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return b.SendCoins(ctx, host.ModuleAddress(senderModule), recipientAddr, amt)
}

// FundAccount mints amt straight to addr.
func (b LedgerBank) FundAccount(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	return b.mint(ctx, addr, amt)
}

func (b LedgerBank) mint(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	if !amt.IsValid() {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidCoins, "%s", amt)
	}
	store := b.store(ctx)
	for _, coin := range amt {
		key := balanceKey(addr, coin.Denom)
		writeInt(store, key, readInt(store.Get(key)).Add(coin.Amount))
		writeInt(store, supplyKey(coin.Denom), readInt(store.Get(supplyKey(coin.Denom))).Add(coin.Amount))
	}
	return nil
}

// Balance is the genesis balance of one address.
type Balance struct {
	Address string    `json:"address"`
	Coins   sdk.Coins `json:"coins"`
}

// BankGenesis is the genesis state of the ledger bank.
type BankGenesis struct {
	Balances []Balance `json:"balances"`
}

// InitGenesis funds every genesis balance.
func (b LedgerBank) InitGenesis(ctx context.Context, gs BankGenesis) error {
	for _, bal := range gs.Balances {
		addr, err := sdk.AccAddressFromBech32(bal.Address)
		if err != nil {
			return errorsmod.Wrapf(sdkerrors.ErrInvalidAddress, "genesis balance: %s", err)
		}
		if err := b.mint(ctx, addr, bal.Coins); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis exports every balance.
func (b LedgerBank) ExportGenesis(ctx context.Context) BankGenesis {
	iterator := storetypes.KVStorePrefixIterator(b.store(ctx), balanceKeyPrefix)
	defer iterator.Close()

	byAddr := make(map[string]sdk.Coins)
	var order []string
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()[len(balanceKeyPrefix):]
		addrLen := int(key[0])
		addr := sdk.AccAddress(key[1 : 1+addrLen])
		denom := string(key[1+addrLen:])
		s := addr.String()
		if _, ok := byAddr[s]; !ok {
			order = append(order, s)
		}
		byAddr[s] = byAddr[s].Add(sdk.NewCoin(denom, readInt(iterator.Value())))
	}
	gs := BankGenesis{Balances: make([]Balance, 0, len(order))}
	for _, s := range order {
		gs.Balances = append(gs.Balances, Balance{Address: s, Coins: byAddr[s]})
	}
	return gs
}
