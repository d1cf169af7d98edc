// Package capability is the registry of host-supplied actions the voice
// engine may trigger. The host registers an action when a view becomes
// active and unregisters it on teardown; the engine never assumes one exists.
package capability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Names of the capabilities the engine knows how to invoke.
const (
	NavigateHome        = "navigateHome"
	ViewCart            = "viewCart"
	GotoCheckout        = "gotoCheckout"
	BrowseProducts      = "browseProducts"
	SelectAddress       = "selectAddress"
	SelectCard          = "selectCard"
	SubmitOrder         = "submitOrder"
	AddToCart           = "addToCart"
	AddToCartByPosition = "addToCartByPosition"
)

// ErrNotRegistered is returned by Invoke when no action is bound to a name.
var ErrNotRegistered = errors.New("capability not registered")

// Args are the named arguments passed to an action.
type Args map[string]string

// Func is a host action. It runs synchronously from the engine's point of view.
type Func func(ctx context.Context, args Args) error

// Registry maps capability names to actions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds fn to name, replacing any previous binding. The returned
// func unregisters this binding and is safe to call more than once.
func (r *Registry) Register(name string, fn Func) (unregister func()) {
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.Unregister(name) })
	}
}

// Unregister removes name. Removing an absent name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.funcs, name)
}

// Reset drops every binding.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs = make(map[string]Func)
}

// Lookup returns the action bound to name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists the registered capabilities in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the action bound to name.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return fn(ctx, args)
}

var known = []string{
	NavigateHome, ViewCart, GotoCheckout, BrowseProducts, SelectAddress,
	SelectCard, SubmitOrder, AddToCart, AddToCartByPosition,
}

// Canonical returns the capability name matching s case-insensitively.
// Config loaders lower-case map keys, so "addtocart" resolves to AddToCart.
func Canonical(s string) (string, bool) {
	for _, name := range known {
		if strings.EqualFold(name, s) {
			return name, true
		}
	}
	return "", false
}
