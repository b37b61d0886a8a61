package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/crypto"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/paw-chain/lhub/app"
	"github.com/paw-chain/lhub/x/host"
)

const (
	defaultOwner        = "owner"
	defaultFeeCollector = "fee_collector"

	// accountRef marks a string in a message body as an account name.
	accountRef = "@"
	// moduleRef marks a module account, e.g. "@module:poolmanager".
	moduleRef = "@module:"
)

// Scenario is a genesis plus a list of steps run against a fresh app.
type Scenario struct {
	ChainID       string              `mapstructure:"chain_id"`
	EpochDuration string              `mapstructure:"epoch_duration"`
	Owner         string              `mapstructure:"owner"`
	FeeCollector  string              `mapstructure:"fee_collector"`
	Accounts      map[string][]string `mapstructure:"accounts"`
	Steps         []Step              `mapstructure:"steps"`
}

// Step is either a message sent by Sender or a clock step.
type Step struct {
	Sender      string         `mapstructure:"sender"`
	Msg         string         `mapstructure:"msg"`
	Body        map[string]any `mapstructure:"body"`
	Funds       []string       `mapstructure:"funds"`
	ExpectError string         `mapstructure:"expect_error"`

	AdvanceTime   string `mapstructure:"advance_time"`
	AdvanceEpochs int    `mapstructure:"advance_epochs"`
}

func (s Step) isClock() bool {
	return s.AdvanceTime != "" || s.AdvanceEpochs > 0
}

// LoadScenario reads a scenario file. The format follows the extension.
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := v.Unmarshal(&sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to decode scenario %s: %w", path, err)
	}
	return sc, nil
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index      int             `json:"index"`
	Msg        string          `json:"msg,omitempty"`
	Sender     string          `json:"sender,omitempty"`
	Error      string          `json:"error,omitempty"`
	Events     int             `json:"events,omitempty"`
	Attributes []sdk.Attribute `json:"attributes,omitempty"`
	Data       any             `json:"data,omitempty"`
	Height     int64           `json:"height"`
	Epoch      uint64          `json:"epoch"`
}

// Report summarizes a scenario run.
type Report struct {
	ChainID  string               `json:"chain_id"`
	Height   int64                `json:"height"`
	Time     time.Time            `json:"time"`
	Epoch    uint64               `json:"epoch"`
	Steps    []StepResult         `json:"steps"`
	Balances map[string]sdk.Coins `json:"balances"`
}

// Runner drives an in-process app through scenario steps.
type Runner struct {
	App *app.App

	logger   log.Logger
	opts     app.Options
	accounts map[string]sdk.AccAddress
	ctx      sdk.Context

	// CheckInvariants asserts every invariant after each message.
	CheckInvariants bool
}

// NewRunner builds an app for sc with default genesis and the scenario
// accounts funded. Scenario fields override opts.
func NewRunner(logger log.Logger, opts app.Options, sc Scenario) (*Runner, error) {
	if sc.ChainID != "" {
		opts.ChainID = sc.ChainID
	}
	if sc.EpochDuration != "" {
		d, err := cast.ToDurationE(sc.EpochDuration)
		if err != nil {
			return nil, fmt.Errorf("epoch_duration: %w", err)
		}
		opts.EpochDuration = d
	}

	a, err := app.NewApp(logger, dbm.NewMemDB(), opts)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		App:             a,
		logger:          logger,
		opts:            opts,
		accounts:        make(map[string]sdk.AccAddress),
		CheckInvariants: true,
	}

	owner, err := r.address(withDefault(sc.Owner, defaultOwner))
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	feeCollector, err := r.address(withDefault(sc.FeeCollector, defaultFeeCollector))
	if err != nil {
		return nil, fmt.Errorf("fee collector: %w", err)
	}
	gs := app.NewDefaultGenesisState(owner, feeCollector)
	if err := gs.Validate(); err != nil {
		return nil, err
	}

	r.ctx = a.Context()
	if err := a.InitGenesis(r.ctx, gs); err != nil {
		return nil, err
	}
	for name, raw := range sc.Accounts {
		addr, err := r.address(name)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
		coins, err := parseCoins(raw)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
		if err := a.Bank.FundAccount(r.ctx, addr, coins); err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
	}
	if err := a.BeginBlock(r.ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// address resolves a bech32 address, a module reference or an account name.
// Names are case-insensitive and map to the same address on every run.
func (r *Runner) address(name string) (sdk.AccAddress, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), accountRef)
	if name == "" {
		return nil, fmt.Errorf("empty account name")
	}
	if module, ok := strings.CutPrefix(accountRef+name, moduleRef); ok {
		return host.ModuleAddress(module), nil
	}
	if addr, err := sdk.AccAddressFromBech32(name); err == nil {
		return addr, nil
	}
	key := strings.ToLower(name)
	if addr, ok := r.accounts[key]; ok {
		return addr, nil
	}
	addr := sdk.AccAddress(crypto.AddressHash([]byte(key)))
	r.accounts[key] = addr
	return addr, nil
}

// resolveRefs replaces "@name" strings in a decoded body with addresses.
func (r *Runner) resolveRefs(v any) (any, error) {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, accountRef) {
			return t, nil
		}
		addr, err := r.address(t)
		if err != nil {
			return nil, err
		}
		return addr.String(), nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			resolved, err := r.resolveRefs(item)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			resolved, err := r.resolveRefs(item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// Context returns the block context the next step runs in.
func (r *Runner) Context() sdk.Context {
	return r.ctx
}

// Run executes steps in order and stops at the first unexpected outcome.
func (r *Runner) Run(ctx context.Context, steps []Step) (*Report, error) {
	report := &Report{ChainID: r.opts.ChainID}
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := r.runStep(i, step)
		report.Steps = append(report.Steps, res)
		if err != nil {
			scenarioStepsTotal.WithLabelValues(res.Msg, "failed").Inc()
			return report, fmt.Errorf("step %d: %w", i, err)
		}
		scenarioStepsTotal.WithLabelValues(res.Msg, "ok").Inc()
	}
	r.summarize(report)
	return report, nil
}

func (r *Runner) runStep(i int, step Step) (StepResult, error) {
	res := StepResult{Index: i, Msg: step.Msg}
	if step.isClock() {
		res.Msg = "clock"
		err := r.advance(step)
		res.Height, res.Epoch = r.ctx.BlockHeight(), r.currentEpoch()
		return res, err
	}

	sender, err := r.address(withDefault(step.Sender, defaultOwner))
	if err != nil {
		return res, err
	}
	res.Sender = sender.String()
	msg, err := r.buildMsg(step)
	if err != nil {
		return res, err
	}
	funds, err := parseCoins(step.Funds)
	if err != nil {
		return res, err
	}

	em := sdk.NewEventManager()
	out, err := r.App.Deliver(r.ctx.WithEventManager(em), sender, msg, funds...)
	res.Height, res.Epoch = r.ctx.BlockHeight(), r.currentEpoch()
	switch {
	case err != nil && step.ExpectError == "":
		res.Error = err.Error()
		return res, err
	case err != nil:
		res.Error = err.Error()
		if !strings.Contains(err.Error(), step.ExpectError) {
			return res, fmt.Errorf("expected error containing %q, got: %w", step.ExpectError, err)
		}
		r.logger.Debug("step failed as expected", "step", i, "msg", step.Msg, "error", err)
		return res, nil
	case step.ExpectError != "":
		return res, fmt.Errorf("expected error containing %q, got none", step.ExpectError)
	}

	res.Events = len(em.Events())
	res.Attributes = out.Attributes
	res.Data = out.Data
	r.logger.Debug("step delivered", "step", i, "msg", step.Msg, "events", res.Events)

	if r.CheckInvariants {
		if err := r.App.AssertInvariants(r.ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *Runner) buildMsg(step Step) (host.Msg, error) {
	var body json.RawMessage
	if len(step.Body) > 0 {
		resolved, err := r.resolveRefs(step.Body)
		if err != nil {
			return nil, err
		}
		bz, err := json.Marshal(resolved)
		if err != nil {
			return nil, err
		}
		body = bz
	}
	return decodeMsg(step.Msg, body)
}

// advance commits the running block and opens the next one, either d later
// or at the end of the running epoch.
func (r *Runner) advance(step Step) error {
	if step.AdvanceTime != "" {
		d, err := cast.ToDurationE(step.AdvanceTime)
		if err != nil {
			return fmt.Errorf("advance_time: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("advance_time must not be negative, got %s", d)
		}
		if err := r.nextBlock(d); err != nil {
			return err
		}
	}
	for n := 0; n < step.AdvanceEpochs; n++ {
		var d time.Duration
		if epoch, err := r.App.Epochs.CurrentEpoch(r.ctx); err == nil {
			d = max(epoch.StartTime.Add(r.opts.EpochDuration).Sub(r.ctx.BlockTime()), 0)
		}
		if err := r.nextBlock(d); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) nextBlock(d time.Duration) error {
	r.App.Commit(d)
	r.ctx = r.App.Context()
	return r.App.BeginBlock(r.ctx)
}

func (r *Runner) currentEpoch() uint64 {
	epoch, err := r.App.Epochs.CurrentEpoch(r.ctx)
	if err != nil {
		return 0
	}
	return epoch.ID
}

func (r *Runner) summarize(report *Report) {
	report.Height = r.ctx.BlockHeight()
	report.Time = r.ctx.BlockTime()
	report.Epoch = r.currentEpoch()
	report.Balances = make(map[string]sdk.Coins, len(r.accounts))
	for name, addr := range r.accounts {
		report.Balances[name] = r.App.Bank.GetAllBalances(r.ctx, addr)
	}
}
