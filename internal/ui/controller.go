package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	"github.com/fairyhunter13/ai-career-advisor/internal/observability"
)

// Controller owns one visitor's State. At most one fetch is in flight per
// Controller; a Submit arriving during Loading is rejected with domain.ErrBusy.
type Controller struct {
	fetcher domain.SuggestionFetcher

	mu    sync.Mutex
	state State
}

// NewController returns a Controller in the Idle phase.
func NewController(fetcher domain.SuggestionFetcher) *Controller {
	return &Controller{
		fetcher: fetcher,
		state:   State{Phase: PhaseIdle, Form: NewFormInput()},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Submit runs one pass of the state machine and returns the resulting
// snapshot. The returned error is for logging and status mapping only: it
// wraps domain.ErrBusy, domain.ErrInvalidArgument or the fetcher's error,
// while State.Error carries the fixed user-facing message.
//
// The fetch runs detached from ctx cancellation so a visitor who navigates
// away still finds the outcome on the next page load.
func (c *Controller) Submit(ctx context.Context, in FormInput) (State, error) {
	lg := observability.LoggerFromContext(ctx)

	c.mu.Lock()
	if c.state.Phase == PhaseLoading {
		s := c.state.clone()
		c.mu.Unlock()
		return s, fmt.Errorf("op=ui.Submit: %w", domain.ErrBusy)
	}

	c.state = State{Phase: PhaseValidating, Form: in}
	if strings.TrimSpace(in.Interests) == "" || strings.TrimSpace(in.Personality) == "" {
		c.state.Phase = PhaseFailed
		c.state.Error = ValidationMessage
		s := c.state.clone()
		c.mu.Unlock()
		return s, fmt.Errorf("op=ui.Submit: %w: interests and personality are required", domain.ErrInvalidArgument)
	}
	c.state.Phase = PhaseLoading
	c.mu.Unlock()

	suggestions, err := c.fetch(context.WithoutCancel(ctx), in.Profile())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		lg.Error("career suggestion fetch failed", slog.Any("error", err))
		c.state = State{Phase: PhaseFailed, Form: in, Error: FetchFailedMessage}
		return c.state.clone(), fmt.Errorf("op=ui.Submit: %w", err)
	}
	c.state = State{Phase: PhaseSuccess, Form: in, Suggestions: suggestions}
	return c.state.clone(), nil
}

// fetch converts a fetcher panic into an error so Loading always exits.
func (c *Controller) fetch(ctx context.Context, p domain.Profile) (out []domain.CareerSuggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: fetcher panic: %v", domain.ErrUpstream, r)
		}
	}()
	if c.fetcher == nil {
		return nil, fmt.Errorf("%w: no suggestion fetcher configured", domain.ErrMissingCredential)
	}
	return c.fetcher.Fetch(ctx, p)
}
