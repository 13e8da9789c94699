// Package rtdb provides a lazily-initialised Firebase Realtime Database client
// shared by the repositories that read and write the politician subtrees.
package rtdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/voterlens/polisync/internal/platform/config"
)

const defaultDialTimeout = 10 * time.Second

// ErrProviderClosed is returned once the provider has been shut down.
var ErrProviderClosed = errors.New("rtdb: provider is closed")

// Provider lazily initialises a shared Realtime Database client instance.
type Provider struct {
	cfg         config.FirebaseConfig
	dialTimeout time.Duration
	clientOpts  []option.ClientOption

	mu     sync.Mutex
	client *db.Client
	closed bool
}

// ProviderOption customises the Provider behaviour.
type ProviderOption func(*Provider)

// WithDialTimeout overrides the timeout used when creating the client.
func WithDialTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		if timeout > 0 {
			p.dialTimeout = timeout
		}
	}
}

// WithClientOptions appends client options applied during initialisation.
func WithClientOptions(opts ...option.ClientOption) ProviderOption {
	return func(p *Provider) {
		if len(opts) > 0 {
			p.clientOpts = append(p.clientOpts, opts...)
		}
	}
}

// NewProvider constructs a Provider using the supplied configuration.
func NewProvider(cfg config.FirebaseConfig, opts ...ProviderOption) *Provider {
	provider := &Provider{
		cfg:         cfg,
		dialTimeout: defaultDialTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(provider)
		}
	}
	return provider
}

// Client returns the lazily initialised Realtime Database client.
func (p *Provider) Client(ctx context.Context) (*db.Client, error) {
	if ctx == nil {
		return nil, errors.New("rtdb: context is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProviderClosed
	}
	if p.client != nil {
		return p.client, nil
	}

	client, err := p.createClient(ctx)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *Provider) createClient(ctx context.Context) (*db.Client, error) {
	ctxWithTimeout := ctx
	var cancel context.CancelFunc
	if p.dialTimeout > 0 {
		ctxWithTimeout, cancel = context.WithTimeout(ctx, p.dialTimeout)
		defer cancel()
	}

	databaseURL := strings.TrimSpace(p.cfg.DatabaseURL)
	if databaseURL == "" {
		return nil, errors.New("rtdb: database url is required")
	}

	opts := append([]option.ClientOption(nil), p.clientOpts...)
	if credentials := strings.TrimSpace(p.cfg.CredentialsFile); credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}

	app, err := firebase.NewApp(ctxWithTimeout, &firebase.Config{
		ProjectID:   strings.TrimSpace(p.cfg.ProjectID),
		DatabaseURL: databaseURL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("rtdb: initialise firebase app: %w", err)
	}

	client, err := app.Database(ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("rtdb: create database client: %w", err)
	}
	return client, nil
}

// Close marks the provider unusable. The underlying client holds no
// connections that need explicit teardown.
func (p *Provider) Close() {
	p.mu.Lock()
	p.closed = true
	p.client = nil
	p.mu.Unlock()
}
