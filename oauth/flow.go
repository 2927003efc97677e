package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrInvalidState    = errors.New("invalid oauth state")
)

// Flow runs the authorization-code grant for the registered providers.
type Flow struct {
	providers map[string]*Provider
	states    StateStore
	stateTTL  time.Duration
	client    *http.Client
}

// NewFlow registers providers. A nil client means http.DefaultClient.
func NewFlow(states StateStore, stateTTL time.Duration, client *http.Client, providers ...*Provider) *Flow {
	f := &Flow{
		providers: make(map[string]*Provider, len(providers)),
		states:    states,
		stateTTL:  stateTTL,
		client:    client,
	}
	for _, p := range providers {
		f.providers[p.Name] = p
	}
	return f
}

// Providers lists registered provider names in order.
func (f *Flow) Providers() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AuthCodeURL stores a fresh state and returns the provider consent URL.
func (f *Flow) AuthCodeURL(ctx context.Context, provider string) (string, error) {
	p, ok := f.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	state := uuid.NewString()
	if err := f.states.Save(ctx, state, p.Name, f.stateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return p.Config.AuthCodeURL(state), nil
}

// Exchange consumes state, trades code for a token and loads the identity.
func (f *Flow) Exchange(ctx context.Context, provider, state, code string) (Identity, error) {
	p, ok := f.providers[provider]
	if !ok {
		return Identity{}, ErrUnknownProvider
	}
	if state == "" || code == "" {
		return Identity{}, ErrInvalidState
	}
	owner, err := f.states.Take(ctx, state)
	if errors.Is(err, ErrStateNotFound) {
		return Identity{}, ErrInvalidState
	}
	if err != nil {
		return Identity{}, fmt.Errorf("take oauth state: %w", err)
	}
	if owner != p.Name {
		return Identity{}, ErrInvalidState
	}

	if f.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	}
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange %s code: %w", p.Name, err)
	}
	return p.fetchIdentity(ctx, p.Config.Client(ctx, token))
}
