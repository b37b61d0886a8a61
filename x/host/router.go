package host

import (
	"context"
	"fmt"
	"sort"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/hashicorp/go-metrics"

	lhubtelemetry "github.com/paw-chain/lhub/app/telemetry"
)

// MaxCallDepth bounds nested Execute instructions.
const MaxCallDepth = 16

// Handler processes one message for a module.
type Handler func(ctx sdk.Context, info MessageInfo, msg Msg) (*Response, error)

// BankKeeper is the subset of the bank module the router needs to apply
// instructions.
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

type route struct {
	module  string
	address sdk.AccAddress
	handler Handler
}

// Router maps module routes to handlers and applies their responses.
type Router struct {
	bank   BankKeeper
	routes map[string]route
}

// NewRouter returns an empty router backed by bank.
func NewRouter(bank BankKeeper) *Router {
	return &Router{bank: bank, routes: make(map[string]route)}
}

// ModuleAddress returns the account address of a module.
func ModuleAddress(module string) sdk.AccAddress {
	return authtypes.NewModuleAddress(module)
}

// AddRoute registers the handler of a module. It panics on duplicates, like
// the SDK's own routers.
func (r *Router) AddRoute(module string, h Handler) *Router {
	if _, ok := r.routes[module]; ok {
		panic(fmt.Sprintf("route %s has already been registered", module))
	}
	r.routes[module] = route{module: module, address: ModuleAddress(module), handler: h}
	return r
}

// Routes lists the registered module routes.
func (r *Router) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for name := range r.routes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs msg as a single atomic transaction: funds move from sender to
// the handling module, the handler runs, its instructions are applied, and
// nothing is written unless every step succeeds.
func (r *Router) Dispatch(ctx sdk.Context, sender sdk.AccAddress, msg Msg, funds sdk.Coins) (*Response, error) {
	defer telemetry.MeasureSince(time.Now(), "lhub", "dispatch")

	cacheCtx, write := ctx.CacheContext()
	res, err := r.dispatch(cacheCtx, sender, msg, funds, 0)

	status := "ok"
	if err != nil {
		status = "error"
	}
	telemetry.IncrCounterWithLabels(
		[]string{"lhub", "dispatch"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("route", msg.Route()),
			telemetry.NewLabel("type", msg.Type()),
			telemetry.NewLabel("status", status),
		},
	)
	if err != nil {
		ctx.Logger().Debug("message rejected", "route", msg.Route(), "type", msg.Type(), "error", err)
		return nil, err
	}

	write()
	return res, nil
}

func (r *Router) dispatch(ctx sdk.Context, sender sdk.AccAddress, msg Msg, funds sdk.Coins, depth int) (*Response, error) {
	if depth > MaxCallDepth {
		return nil, ErrCallDepthExceeded.Wrapf("depth %d", depth)
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	rt, ok := r.routes[msg.Route()]
	if !ok {
		return nil, ErrUnknownRoute.Wrap(msg.Route())
	}

	spanCtx, span := lhubtelemetry.StartModuleSpan(ctx.Context(), rt.module, msg.Type())
	defer span.End()
	ctx = ctx.WithContext(spanCtx)

	if !funds.IsZero() {
		if err := r.bank.SendCoins(ctx, sender, rt.address, funds); err != nil {
			lhubtelemetry.RecordError(span, err)
			return nil, errorsmod.Wrapf(err, "failed to attach funds to %s", rt.module)
		}
	}

	res, err := rt.handler(ctx, MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		lhubtelemetry.RecordError(span, err)
		return nil, err
	}
	if res == nil {
		res = NewResponse()
	}

	attrs := append([]sdk.Attribute{sdk.NewAttribute("action", msg.Type())}, res.Attributes...)
	ctx.EventManager().EmitEvent(sdk.NewEvent(rt.module, attrs...))

	for i, ins := range res.Instructions {
		if err := r.apply(ctx, rt, ins, depth); err != nil {
			lhubtelemetry.RecordError(span, err)
			return nil, errorsmod.Wrapf(err, "instruction %d of %s/%s", i, rt.module, msg.Type())
		}
	}
	return res, nil
}

func (r *Router) apply(ctx sdk.Context, rt route, ins Instruction, depth int) error {
	switch v := ins.(type) {
	case BankSend:
		return r.bank.SendCoins(ctx, rt.address, v.To, v.Amount)
	case Mint:
		if err := r.bank.MintCoins(ctx, rt.module, v.Amount); err != nil {
			return err
		}
		if v.To.Equals(rt.address) {
			return nil
		}
		return r.bank.SendCoinsFromModuleToAccount(ctx, rt.module, v.To, v.Amount)
	case Burn:
		return r.bank.BurnCoins(ctx, rt.module, v.Amount)
	case Execute:
		_, err := r.dispatch(ctx, rt.address, v.Msg, v.Funds, depth+1)
		return err
	default:
		return ErrInvalidInstruction.Wrapf("%T", ins)
	}
}
