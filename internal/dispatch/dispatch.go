// Package dispatch maps resolved intents onto host capabilities.
//
// The dispatcher owns a fixed intent to capability table. Hosts register the
// capabilities their current view supports; an intent whose capability is not
// registered is logged and skipped, never treated as a failure.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nadzzz/storevoice/internal/capability"
	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/metrics"
)

// Outcome describes what a Dispatch call did.
type Outcome string

const (
	// Invoked means the capability ran and returned nil.
	Invoked Outcome = "invoked"
	// Skipped means the intent has no side effect or is unresolved.
	Skipped Outcome = "skipped"
	// Unavailable means the capability is not registered.
	Unavailable Outcome = "unavailable"
	// Failed means the capability returned an error.
	Failed Outcome = "failed"
)

// Dispatcher invokes capabilities from a registry.
type Dispatcher struct {
	registry *capability.Registry
}

// New creates a Dispatcher over the given registry.
func New(registry *capability.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Route returns the capability and arguments for r. ok is false for intents
// that carry no side effect and for add-to-cart results without a product.
func Route(r intent.Result) (name string, args capability.Args, ok bool) {
	p := r.Params
	switch r.Kind {
	case intent.GoHome:
		return capability.NavigateHome, nil, true
	case intent.ViewCart:
		return capability.ViewCart, nil, true
	case intent.GotoCheckout:
		return capability.GotoCheckout, nil, true
	case intent.BrowseProducts:
		return capability.BrowseProducts, capability.Args{"category": p.Category, "query": p.Query}, true
	case intent.AddressSelected:
		return capability.SelectAddress, capability.Args{"identifier": p.AddressIdentifier}, true
	case intent.CardSelected:
		return capability.SelectCard, capability.Args{"identifier": p.CardIdentifier}, true
	case intent.PlaceOrder:
		return capability.SubmitOrder, nil, true
	}

	if !r.Kind.AddsToCart() || !r.Resolved() {
		return "", nil, false
	}
	if r.Kind == intent.AddToCartPosition && p.Position != nil {
		return capability.AddToCartByPosition, capability.Args{
			"position":  strconv.Itoa(*p.Position),
			"productId": p.ProductID,
		}, true
	}
	return capability.AddToCart, capability.Args{"productId": p.ProductID, "productName": p.ProductName}, true
}

// Dispatch invokes the capability mapped to r. A missing capability is logged
// and reported as Unavailable with a nil error; only an error returned by the
// capability itself is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, r intent.Result) (Outcome, error) {
	name, args, ok := Route(r)
	if !ok {
		return Skipped, nil
	}
	logger := slog.With("intent", r.Kind, "capability", name)

	err := d.registry.Invoke(ctx, name, args)
	switch {
	case errors.Is(err, capability.ErrNotRegistered):
		logger.Warn("capability not registered, skipping")
		metrics.Dispatches.WithLabelValues(name, metrics.Missing).Inc()
		return Unavailable, nil
	case err != nil:
		logger.Error("capability failed", "error", err)
		metrics.Dispatches.WithLabelValues(name, metrics.Failed).Inc()
		return Failed, fmt.Errorf("invoking %s: %w", name, err)
	}

	logger.Debug("capability invoked", "args", args)
	metrics.Dispatches.WithLabelValues(name, metrics.OK).Inc()
	return Invoked, nil
}
