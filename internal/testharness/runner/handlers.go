package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/regdb/regdb/internal/testharness/engine"
	"github.com/regdb/regdb/internal/testharness/loader"
	"github.com/regdb/regdb/pkg/inspect"
	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/model"
	"github.com/regdb/regdb/pkg/session"
	"github.com/regdb/regdb/pkg/store"
)

// errNoSession is returned when a step runs without a scenario session.
var errNoSession = errors.New("no session: scenario setup did not run")

// registerHandlers registers all action handlers with the engine.
func (r *Runner) registerHandlers() {
	// Store handlers
	r.engine.RegisterHandler(ActionSeed, r.handleSeed)
	r.engine.RegisterHandler(ActionListRegisters, r.handleListRegisters)
	r.engine.RegisterHandler(ActionClose, r.handleClose)

	// Build phase
	r.engine.RegisterHandler(ActionConfigureRegister, r.handleConfigureRegister)
	r.engine.RegisterHandler(ActionConfigureBlock, r.handleConfigureBlock)
	r.engine.RegisterHandler(ActionAddField, r.handleAddField)
	r.engine.RegisterHandler(ActionLock, r.handleLock)

	// Value handlers
	r.engine.RegisterHandler(ActionReset, r.handleReset)
	r.engine.RegisterHandler(ActionPredict, r.handlePredict)
	r.engine.RegisterHandler(ActionPredictWrite, r.handlePredictWrite)
	r.engine.RegisterHandler(ActionReadRegister, r.handleReadRegister)
	r.engine.RegisterHandler(ActionReadField, r.handleReadField)
	r.engine.RegisterHandler(ActionWrite, r.handleWrite)

	r.engine.RegisterHandler(ActionDiagnostics, r.handleDiagnostics)
}

func sessionFrom(state *engine.ExecutionState) (*session.Session, error) {
	sess, ok := state.Custom[stateSession].(*session.Session)
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}

func paramString(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func paramInt(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	n, ok := engine.ToInt64(v)
	if !ok {
		return 0, fmt.Errorf("parameter %s: not a number: %v", key, v)
	}
	return int(n), nil
}

func paramUint32(params map[string]any, key string) (uint32, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %s", key)
	}
	n, ok := engine.ToInt64(v)
	if !ok || n < 0 || n > int64(^uint32(0)) {
		return 0, fmt.Errorf("parameter %s: not a 32-bit value: %v", key, v)
	}
	return uint32(n), nil
}

// registerOutputs describes reg for expectations.
func registerOutputs(reg *model.Register) map[string]any {
	cfg := reg.Config()
	return map[string]any{
		KeyValue:     reg.Mirror(),
		KeyState:     reg.State().String(),
		KeyFields:    len(reg.Fields()),
		KeyConflicts: len(reg.Conflicts()),
		KeyUsedBits:  reg.UsedBits(),
		KeyOffset:    cfg.Offset,
		KeySize:      cfg.Size,
		KeyAccess:    cfg.Access.String(),
	}
}

// lookupRegister returns the register named in params.
func lookupRegister(state *engine.ExecutionState, params map[string]any) (*model.Register, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	name := paramString(params, ParamRegister)
	if name == "" {
		return nil, fmt.Errorf("missing parameter %s", ParamRegister)
	}
	reg, ok := sess.Register(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", inspect.ErrRegisterNotFound, name)
	}
	return reg, nil
}

// handleSeed seeds another fixture into the scenario store.
func (r *Runner) handleSeed(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	repo, ok := state.Custom[stateRepo].(*store.SQLite)
	if !ok {
		return nil, errNoSession
	}
	path := paramString(step.Params, ParamFixture)
	if path == "" {
		return nil, fmt.Errorf("missing parameter %s", ParamFixture)
	}
	dir, _ := state.Custom[stateDir].(string)
	tc := loader.TestCase{Fixture: path, Dir: dir}
	id, err := seedFixture(ctx, repo, tc.FixturePath())
	return withError(map[string]any{KeyMetadataID: id}, err), nil
}

func (r *Runner) handleListRegisters(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	names, err := sess.Materializer().Registers(ctx, paramString(step.Params, ParamBlock))
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = n
	}
	return withError(map[string]any{KeyNames: list, KeyCount: len(names)}, err), nil
}

func (r *Runner) handleClose(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	return withError(nil, sess.Close()), nil
}

func (r *Runner) handleConfigureRegister(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	name := paramString(step.Params, ParamRegister)
	reg, err := sess.Configure(ctx, name)
	if err != nil {
		if existing, ok := sess.Register(name); ok {
			return withError(registerOutputs(existing), err), nil
		}
		return withError(nil, err), nil
	}
	return withError(registerOutputs(reg), nil), nil
}

func (r *Runner) handleConfigureBlock(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	block, err := sess.ConfigureBlock(ctx, paramString(step.Params, ParamBlock))
	if err != nil {
		return withError(nil, err), nil
	}

	var names []any
	conflicts := 0
	for _, reg := range block.Registers() {
		names = append(names, reg.Name())
		conflicts += len(reg.Conflicts())
	}
	return withError(map[string]any{
		KeyRegisters: block.Len(),
		KeyNames:     names,
		KeyConflicts: conflicts,
	}, nil), nil
}

func (r *Runner) handleAddField(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	reg, err := lookupRegister(state, step.Params)
	if err != nil {
		return withError(nil, err), nil
	}

	lsb, err := paramInt(step.Params, ParamLSB, 0)
	if err != nil {
		return nil, err
	}
	width, err := paramInt(step.Params, ParamWidth, 1)
	if err != nil {
		return nil, err
	}
	var reset uint32
	if _, ok := step.Params[ParamReset]; ok {
		if reset, err = paramUint32(step.Params, ParamReset); err != nil {
			return nil, err
		}
	}
	token := paramString(step.Params, ParamAccess)

	err = reg.AddField(model.Field{
		Name:      paramString(step.Params, ParamName),
		LSB:       lsb,
		Width:     width,
		Access:    model.NormalizeAccess(token),
		RawAccess: token,
		Reset:     reset,
	})
	return withError(registerOutputs(reg), err), nil
}

// handleLock locks one register, or every register of the session when no
// register is named.
func (r *Runner) handleLock(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	if _, ok := step.Params[ParamRegister]; !ok {
		sess, err := sessionFrom(state)
		if err != nil {
			return nil, err
		}
		return withError(nil, sess.Lock()), nil
	}
	reg, err := lookupRegister(state, step.Params)
	if err != nil {
		return withError(nil, err), nil
	}
	err = reg.Lock()
	return withError(registerOutputs(reg), err), nil
}

func (r *Runner) handleReset(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	if _, ok := step.Params[ParamRegister]; !ok {
		sess, err := sessionFrom(state)
		if err != nil {
			return nil, err
		}
		sess.Reset()
		return withError(nil, nil), nil
	}
	reg, err := lookupRegister(state, step.Params)
	if err != nil {
		return withError(nil, err), nil
	}
	reg.Reset()
	return withError(registerOutputs(reg), nil), nil
}

func (r *Runner) handlePredict(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.predict(step, state, (*model.Register).Predict)
}

func (r *Runner) handlePredictWrite(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	return r.predict(step, state, (*model.Register).PredictWrite)
}

func (r *Runner) predict(step *loader.Step, state *engine.ExecutionState, apply func(*model.Register, uint32)) (map[string]any, error) {
	reg, err := lookupRegister(state, step.Params)
	if err != nil {
		return withError(nil, err), nil
	}
	v, err := paramUint32(step.Params, ParamValue)
	if err != nil {
		return nil, err
	}
	apply(reg, v)
	return withError(registerOutputs(reg), nil), nil
}

func (r *Runner) handleReadRegister(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	reg, err := lookupRegister(state, step.Params)
	if err != nil {
		return withError(nil, err), nil
	}
	return withError(registerOutputs(reg), nil), nil
}

// handleReadField reads a register or field through an inspect path such as
// "ctrl/status_register.mode".
func (r *Runner) handleReadField(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	path, err := inspect.ParsePath(paramString(step.Params, ParamPath))
	if err != nil {
		return withError(nil, err), nil
	}

	insp := inspect.NewInspector(sess)
	v, err := insp.Read(path)
	if err != nil {
		return withError(nil, err), nil
	}
	out := map[string]any{KeyValue: v, KeyEnum: ""}
	if _, f, err := insp.Resolve(path); err == nil && f != nil {
		out[KeyEnum] = inspect.GetEnumName(*f, v)
	}
	return withError(out, nil), nil
}

// handleWrite predicts a write through an inspect path. Field values may be
// enumerated names.
func (r *Runner) handleWrite(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}
	path, err := inspect.ParsePath(paramString(step.Params, ParamPath))
	if err != nil {
		return withError(nil, err), nil
	}

	insp := inspect.NewInspector(sess)
	if err := insp.Write(path, paramString(step.Params, ParamValue)); err != nil {
		return withError(nil, err), nil
	}
	reg, _, err := insp.Resolve(path)
	if err != nil {
		return withError(nil, err), nil
	}
	return withError(registerOutputs(reg), nil), nil
}

// handleDiagnostics reports the session's diagnostics, optionally only those
// with the given code.
func (r *Runner) handleDiagnostics(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	sess, err := sessionFrom(state)
	if err != nil {
		return nil, err
	}

	events := sess.Diagnostics()
	if s := paramString(step.Params, ParamCode); s != "" {
		code, err := log.ParseCode(s)
		if err != nil {
			return nil, err
		}
		var kept []log.Event
		for _, e := range events {
			if e.Code == code {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	codes := make([]any, len(events))
	for i, e := range events {
		codes[i] = e.Code.String()
	}
	return map[string]any{KeyCount: len(events), KeyCodes: codes}, nil
}
