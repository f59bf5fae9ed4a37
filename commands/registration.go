// Package commands exposes the preprocess command handlers of a container to
// host registries and the go-command dispatcher.
package commands

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-command/dispatcher"

	preprocesscmd "github.com/goliatone/go-cjkspacing/internal/commands/preprocess"
	"github.com/goliatone/go-cjkspacing/internal/di"
)

// CommandRegistry records command handlers so hosts can expose them via CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the registered handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands registers the handlers built by container with the
// configured registry and dispatcher.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if container == nil || container.Handlers() == nil {
		return result, errors.New("no command handlers registered; container is not configured")
	}

	set := container.Handlers()
	var errs error
	for _, handler := range []any{set.Supports, set.Join, set.Book} {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}
	return result, errs
}

// Dispatcher subscribes handlers to the process-wide go-command dispatcher.
func Dispatcher() CommandDispatcher {
	return globalDispatcher{}
}

type globalDispatcher struct{}

func (d globalDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *preprocesscmd.SupportsRendererHandler:
		return dispatcher.SubscribeCommand(h), nil
	case *preprocesscmd.JoinDocumentHandler:
		return dispatcher.SubscribeCommand(h), nil
	case *preprocesscmd.PreprocessBookHandler:
		return dispatcher.SubscribeCommand(h), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
