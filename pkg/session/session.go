// Package session ties a register description store, the materializer and
// the diagnostic channel together for one test run.
//
// A Session owns its store handle exclusively. Every register built through
// it is tracked, so the harness can lock and reset them as a group at the end
// of its build phase. Register names are only unique within a block: a name
// of the form "block/register" selects a block's register, and a bare name
// selects the first register built under that name.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/materialize"
	"github.com/regdb/regdb/pkg/model"
	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

// ErrClosed is returned by every operation on a closed session. It wraps
// store.ErrConnection.
var ErrClosed = fmt.Errorf("%w: session closed", store.ErrConnection)

// Option configures a Session.
type Option func(*options)

type options struct {
	id     string
	sinks  []log.Logger
	filter log.Predicate
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLogger adds a diagnostic sink. The configured filter applies to it.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.sinks = append(o.sinks, l)
		}
	}
}

// stampLogger sets the session ID and timestamp on every event.
type stampLogger struct {
	id   string
	next log.Logger
}

func (l stampLogger) Log(e log.Event) {
	e.SessionID = l.id
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	l.next.Log(e)
}

// Session is one materialization session over a store.
// It is safe for concurrent use.
type Session struct {
	id        string
	repo      store.Repository
	mat       *materialize.Materializer
	logger    log.Logger
	collector *log.Collector
	file      *log.FileLogger

	mu     sync.Mutex
	closed bool
	built  []*model.Register
	// origin is the block a register was read from, "" when it was built
	// from a bare name.
	origin map[*model.Register]string
	named  map[string]*model.Register
	blocks map[string]*model.Block
}

// Open opens the store described by cfg and starts a session.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	pred, err := cfg.predicate()
	if err != nil {
		return nil, err
	}

	repo, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ok, err := repo.TableExists(ctx, schema.TableRegisters)
	if err != nil || !ok {
		repo.Close()
		if err == nil {
			err = fmt.Errorf("%w: %s has no %s table", store.ErrConnection, cfg.StorePath, schema.TableRegisters)
		}
		return nil, err
	}

	var file *log.FileLogger
	if cfg.DiagnosticsPath != "" {
		file, err = log.NewFileLogger(cfg.DiagnosticsPath)
		if err != nil {
			repo.Close()
			return nil, err
		}
		opts = append(opts, WithLogger(file))
	}

	s := newSession(repo, pred, opts...)
	s.file = file
	return s, nil
}

func openStore(ctx context.Context, cfg Config) (*store.SQLite, error) {
	if cfg.StorePath == "" {
		return nil, fmt.Errorf("%w: no store path", store.ErrConnection)
	}
	switch {
	case cfg.ReadOnly:
		return store.OpenReadOnly(ctx, cfg.StorePath)
	case cfg.CreateIfMissing:
		_, statErr := os.Stat(cfg.StorePath)
		s, err := store.Open(ctx, cfg.StorePath)
		if err != nil {
			return nil, err
		}
		if errors.Is(statErr, os.ErrNotExist) || cfg.StorePath == store.MemoryPath {
			if err := s.Init(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	default:
		return store.OpenExisting(ctx, cfg.StorePath)
	}
}

// New starts a session over an already open repository. The session takes
// ownership of repo and closes it on Close.
func New(repo store.Repository, opts ...Option) *Session {
	return newSession(repo, nil, opts...)
}

func newSession(repo store.Repository, filter log.Predicate, opts ...Option) *Session {
	o := options{filter: filter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	collector := log.NewCollector()
	sinks := append([]log.Logger{collector}, o.sinks...)
	logger := stampLogger{
		id:   o.id,
		next: log.NewFilteredLogger(log.NewMultiLogger(sinks...), o.filter),
	}

	return &Session{
		id:        o.id,
		repo:      repo,
		mat:       materialize.New(repo, materialize.WithLogger(logger)),
		logger:    logger,
		collector: collector,
		origin:    make(map[*model.Register]string),
		named:     make(map[string]*model.Register),
		blocks:    make(map[string]*model.Block),
	}
}

// ID returns the session ID carried by every diagnostic.
func (s *Session) ID() string {
	return s.id
}

// Materializer returns the session's materializer.
func (s *Session) Materializer() *materialize.Materializer {
	return s.mat
}

// Configure builds the named register, or reconfigures it in place when the
// session already holds it. name is "register" or "block/register". A locked
// register cannot be reconfigured.
func (s *Session) Configure(ctx context.Context, name string) (*model.Register, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	block, regName := splitName(name)
	if reg, ok := s.lookup(block, regName); ok {
		if err := s.mat.ConfigureIn(ctx, reg, s.origin[reg], regName); err != nil {
			return nil, err
		}
		return reg, nil
	}

	var reg *model.Register
	var err error
	if block == "" {
		reg, err = s.mat.ConfigureRegister(ctx, regName)
	} else {
		reg, err = s.mat.ConfigureRegisterIn(ctx, block, regName)
	}
	if err != nil {
		return nil, err
	}
	s.named[name] = reg
	s.track(reg, block)
	return reg, nil
}

// ConfigureBlock builds every register of the named block and tracks them.
// Rebuilding a block replaces its registers, unless one of them is locked:
// then it fails with model.ErrLocked.
func (s *Session) ConfigureBlock(ctx context.Context, name string) (*model.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	old, rebuild := s.blocks[name]
	if rebuild {
		for _, reg := range old.Registers() {
			if reg.IsLocked() {
				s.logger.Log(log.Event{
					Severity: log.SeverityWarning,
					Code:     log.CodeLockViolation,
					Register: reg.Name(),
					Message:  "configure block on locked register",
					Context:  map[string]string{"block": name},
				})
				return nil, fmt.Errorf("%w: configure block %s", model.ErrLocked, name)
			}
		}
	}

	block, err := s.mat.ConfigureBlock(ctx, name)
	if err != nil {
		return nil, err
	}
	if rebuild {
		s.untrack(old.Registers())
	}
	for _, reg := range block.Registers() {
		s.track(reg, name)
	}
	s.blocks[name] = block
	return block, nil
}

// splitName splits "block/register". A bare name has no block.
func splitName(name string) (block, register string) {
	if b, r, ok := strings.Cut(name, "/"); ok {
		return b, r
	}
	return "", name
}

// lookup finds a built register. Callers hold s.mu.
func (s *Session) lookup(block, name string) (*model.Register, bool) {
	if block != "" {
		if b, ok := s.blocks[block]; ok {
			if reg, ok := b.Register(name); ok {
				return reg, true
			}
		}
		reg, ok := s.named[block+"/"+name]
		return reg, ok
	}
	if reg, ok := s.named[name]; ok {
		return reg, true
	}
	for _, reg := range s.built {
		if reg.Name() == name {
			return reg, true
		}
	}
	return nil, false
}

// track records reg as read from block. Callers hold s.mu.
func (s *Session) track(reg *model.Register, block string) {
	s.built = append(s.built, reg)
	s.origin[reg] = block
}

// untrack drops regs. Callers hold s.mu.
func (s *Session) untrack(regs []*model.Register) {
	for _, reg := range regs {
		delete(s.origin, reg)
	}
	s.built = slices.DeleteFunc(s.built, func(r *model.Register) bool {
		_, ok := s.origin[r]
		return !ok
	})
}

// Register returns a register built in this session. name is "register" or
// "block/register".
func (s *Session) Register(name string) (*model.Register, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(splitName(name))
}

// Registers returns the session's registers in build order.
func (s *Session) Registers() []*model.Register {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.built)
}

// Block returns a block built in this session.
func (s *Session) Block(name string) (*model.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[name]
	return b, ok
}

// Lock locks every register of the session. It ends the build phase.
func (s *Session) Lock() error {
	regs := s.Registers()
	var errs []error
	for _, r := range regs {
		if err := r.Lock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset resets the mirror of every register.
func (s *Session) Reset() {
	for _, r := range s.Registers() {
		r.Reset()
	}
}

// Diagnostics returns the events kept by the session's filter.
func (s *Session) Diagnostics() []log.Event {
	return s.collector.Events()
}

// Close releases the store and drops every register. Later calls return
// ErrClosed. Close is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.built = nil
	s.origin = nil
	s.named = nil
	s.blocks = nil

	err := s.repo.Close()
	if s.file != nil {
		err = errors.Join(err, s.file.Close())
	}
	return err
}
