// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

// Policy decides how a Registry retains idle handles. E is the queue
// entry type: the handle itself for a strong policy, a reference into
// some other store for a collectible one.
//
// Retain and Release run with the registry lock held and must not
// block. Resolve runs without the registry lock.
type Policy[E any] interface {
	// Retain takes ownership of an idle handle and returns the queue
	// entry that refers to it.
	Retain(handle *Handle) E

	// Resolve converts an entry back into a usable handle, transferring
	// ownership to the caller. Returns nil when the handle has been
	// reclaimed or is no longer valid; an invalid handle is disposed.
	Resolve(entry E) *Handle

	// Release disposes the handle behind an entry that is being
	// evicted or cleared.
	Release(entry E) error
}

// StrongPolicy retains handles by direct reference. Idle handles stay
// open until they are checked out, evicted, or cleared.
type StrongPolicy struct{}

// Retain returns the handle itself.
func (StrongPolicy) Retain(handle *Handle) *Handle { return handle }

// Resolve returns the handle if it is still valid.
func (StrongPolicy) Resolve(handle *Handle) *Handle {
	if handle == nil {
		return nil
	}
	if !handle.IsValid() {
		handle.Close()
		return nil
	}
	return handle
}

// Release closes the handle.
func (StrongPolicy) Release(handle *Handle) error {
	if handle == nil {
		return nil
	}
	return handle.Close()
}

// NewStrongRegistry returns a registry that holds idle handles until
// they are reused or cleared.
func NewStrongRegistry(options Options) *Registry[*Handle] {
	return NewRegistry[*Handle](StrongPolicy{}, options)
}
