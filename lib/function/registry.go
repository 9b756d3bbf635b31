// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// Bindings maps each cataloged descriptor to its bound function on
// one connection. A nil value means the descriptor is declared but
// could not be instantiated or registered on that connection.
type Bindings map[Descriptor]*BoundFunction

// Close closes every bound function and removes it from b, releasing
// unfinished aggregate state and implementations created for the
// connection. It does not unregister anything from the engine.
func (b Bindings) Close() error {
	var errs []error
	for descriptor, bound := range b {
		if bound == nil {
			continue
		}
		if err := bound.Close(); err != nil {
			errs = append(errs, fmt.Errorf("function: close %s: %w", descriptor, err))
		}
		delete(b, descriptor)
	}
	return errors.Join(errs...)
}

// entry is one catalog slot.
type entry struct {
	descriptor Descriptor

	// Exactly one of factory and funcs is set.
	factory func() any
	funcs   *Funcs
}

// close disposes what the slot owns when it is replaced or removed.
func (e *entry) close() error {
	if e.funcs != nil && e.funcs.Close != nil {
		return e.funcs.Close()
	}
	return nil
}

// instantiate returns the implementation for one connection and
// whether the bound function owns it.
func (e *entry) instantiate() (impl any, owned bool, err error) {
	if e.funcs != nil {
		if err := e.funcs.check(e.descriptor.Kind); err != nil {
			return nil, false, err
		}
		return delegate{funcs: e.funcs}, false, nil
	}
	err = guard(func() error {
		impl = e.factory()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if impl == nil {
		return nil, false, fmt.Errorf("%w: factory returned nil", ErrNoImplementation)
	}
	if err := conforms(impl, e.descriptor.Kind); err != nil {
		if closer, ok := impl.(io.Closer); ok {
			closer.Close()
		}
		return nil, false, err
	}
	return impl, true, nil
}

// Registry catalogs function descriptors. It is safe for concurrent
// use.
type Registry struct {
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[key]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{logger: logger, entries: make(map[key]*entry)}
}

// Register catalogs descriptor with a factory that produces a fresh
// implementation for every connection. It reports whether an existing
// registration was replaced.
func (r *Registry) Register(descriptor Descriptor, factory func() any) (bool, error) {
	if factory == nil {
		return false, fmt.Errorf("%w: %s: nil factory", ErrInvalidDescriptor, descriptor)
	}
	return r.put(&entry{descriptor: descriptor, factory: factory})
}

// RegisterFuncs catalogs descriptor with callbacks shared by every
// connection. It reports whether an existing registration was
// replaced.
func (r *Registry) RegisterFuncs(descriptor Descriptor, funcs Funcs) (bool, error) {
	if err := funcs.check(descriptor.Kind); err != nil {
		return false, fmt.Errorf("function: register %s: %w", descriptor, err)
	}
	return r.put(&entry{descriptor: descriptor, funcs: &funcs})
}

// RegisterType catalogs every descriptor declared by the value factory
// returns. The factory is called once to read the declarations and
// again for every connection the functions are bound to.
func (r *Registry) RegisterType(factory func() any) error {
	if factory == nil {
		return fmt.Errorf("%w: nil factory", ErrInvalidDescriptor)
	}
	sample := factory()
	declarer, ok := sample.(Declarer)
	if !ok {
		return fmt.Errorf("%w: %T does not implement Declarer", ErrInvalidDescriptor, sample)
	}
	declarations := declarer.Declarations()
	if closer, ok := sample.(io.Closer); ok {
		closer.Close()
	}
	if len(declarations) == 0 {
		return fmt.Errorf("%w: %T declares no functions", ErrInvalidDescriptor, sample)
	}

	var errs []error
	for _, descriptor := range declarations {
		if err := conforms(sample, descriptor.Kind); err != nil {
			errs = append(errs, fmt.Errorf("function: register %s: %w", descriptor, err))
			continue
		}
		if _, err := r.Register(descriptor, factory); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RegisterAll calls RegisterType for each factory and joins the
// errors.
func (r *Registry) RegisterAll(factories ...func() any) error {
	var errs []error
	for _, factory := range factories {
		if err := r.RegisterType(factory); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) put(e *entry) (bool, error) {
	if err := e.descriptor.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	k := e.descriptor.key()
	old, replaced := r.entries[k]
	if replaced {
		if err := old.close(); err != nil {
			r.logger.Warn("closing replaced function", "function", old.descriptor.String(), "error", err)
		}
	}
	r.entries[k] = e
	r.logger.Debug("function registered", "function", e.descriptor.String(), "replaced", replaced)
	return replaced, nil
}

// Unregister removes the registration matching descriptor's name,
// arity, and kind. Connections already bound keep their functions
// until unbound.
func (r *Registry) Unregister(descriptor Descriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := descriptor.key()
	old, found := r.entries[k]
	if !found {
		return false
	}
	if err := old.close(); err != nil {
		r.logger.Warn("closing unregistered function", "function", old.descriptor.String(), "error", err)
	}
	delete(r.entries, k)
	return true
}

// Lookup returns the cataloged descriptor for name, arity, and kind.
func (r *Registry) Lookup(name string, arity int, kind Kind) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, found := r.entries[Descriptor{Name: name, Arity: arity, Kind: kind}.key()]
	if !found {
		return Descriptor{}, false
	}
	return e.descriptor, true
}

// Descriptors returns every cataloged descriptor ordered by name, kind,
// and arity.
func (r *Registry) Descriptors() []Descriptor {
	entries := r.snapshot()
	descriptors := make([]Descriptor, len(entries))
	for i, e := range entries {
		descriptors[i] = e.descriptor
	}
	return descriptors
}

// Len returns the number of cataloged descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].descriptor.key(), entries[j].descriptor.key()
		if a.name != b.name {
			return a.name < b.name
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.arity < b.arity
	})
	return entries
}

// BindFunctions binds every cataloged descriptor to conn. A descriptor
// that cannot be instantiated or registered maps to nil; the others
// are still bound.
func (r *Registry) BindFunctions(conn engine.Conn, flags BindFlags) Bindings {
	entries := r.snapshot()
	bindings := make(Bindings, len(entries))
	for _, e := range entries {
		bindings[e.descriptor] = r.bindOne(conn, e, flags)
	}
	return bindings
}

func (r *Registry) bindOne(conn engine.Conn, e *entry, flags BindFlags) *BoundFunction {
	impl, owned, err := e.instantiate()
	if err != nil {
		r.logger.Warn("instantiating function", "function", e.descriptor.String(), "error", err)
		return nil
	}
	bound := newBoundFunction(e.descriptor, impl, owned, conn, flags, r.logger)
	if err := bound.bind(); err != nil {
		r.logger.Warn("binding function", "function", e.descriptor.String(), "error", err)
		bound.Close()
		return nil
	}
	return bound
}

// UnbindAllFunctions removes bound functions from conn and deletes
// them from bindings. When registeredOnly is set, every cataloged
// descriptor is unbound and a descriptor missing from bindings counts
// as a failure; otherwise every non-nil entry in bindings is unbound.
// Failures do not stop the pass. Reports whether every unbind
// succeeded.
func (r *Registry) UnbindAllFunctions(conn engine.Conn, bindings Bindings, flags BindFlags, registeredOnly bool) bool {
	if conn == nil {
		return false
	}

	var targets []Descriptor
	if registeredOnly {
		targets = r.Descriptors()
	} else {
		for descriptor, bound := range bindings {
			if bound != nil {
				targets = append(targets, descriptor)
			}
		}
	}

	ok := true
	for _, descriptor := range targets {
		bound := bindings[descriptor]
		if bound == nil {
			r.logger.Debug("unbinding function that was never bound", "function", descriptor.String())
			ok = false
			continue
		}
		if err := bound.unbind(conn); err != nil {
			if flags.Has(LogCallbackErrors) {
				r.logger.Warn("unbinding function", "function", descriptor.String(), "error", err)
			}
			ok = false
			continue
		}
		if err := bound.Close(); err != nil {
			r.logger.Warn("closing unbound function", "function", descriptor.String(), "error", err)
		}
		delete(bindings, descriptor)
	}
	return ok
}
