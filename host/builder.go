package host

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/reglet-dev/sieve/capability"
	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/naming"
	"github.com/reglet-dev/sieve/domain/policy"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/reglet-dev/sieve/guest"
	"github.com/reglet-dev/sieve/resolver"
)

// builderConfig holds configuration for the Builder.
type builderConfig struct {
	validator     ports.NameValidator
	denialHandler ports.DenialHandler
	logger        *slog.Logger
	minDepth      int
}

func defaultBuilderConfig() builderConfig {
	return builderConfig{
		minDepth: naming.DefaultMinDepth,
	}
}

// BuilderOption configures a Builder.
type BuilderOption func(*builderConfig)

// WithMinDepth sets the minimum number of components in a guest name.
// Ignored when WithNameValidator is used.
func WithMinDepth(depth int) BuilderOption {
	return func(c *builderConfig) {
		if depth > 0 {
			c.minDepth = depth
		}
	}
}

// WithNameValidator replaces the default guest name validator.
func WithNameValidator(v ports.NameValidator) BuilderOption {
	return func(c *builderConfig) {
		c.validator = v
	}
}

// WithDenialHandler sets the handler notified of refused resolutions.
// Defaults to a policy.SlogDenialHandler on the builder's logger.
func WithDenialHandler(h ports.DenialHandler) BuilderOption {
	return func(c *builderConfig) {
		c.denialHandler = h
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(c *builderConfig) {
		c.logger = logger
	}
}

// Builder runs the configuration phase of a sandbox.
// It is not safe for concurrent use.
type Builder struct {
	guests *guest.Registry
	caps   *capability.Registry
	config builderConfig
}

// NewBuilder creates a Builder with empty registries. Nothing is reserved and
// nothing is allowed until configured.
func NewBuilder(opts ...BuilderOption) *Builder {
	cfg := defaultBuilderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.validator == nil {
		cfg.validator = naming.NewValidator(naming.WithMinDepth(cfg.minDepth))
	}
	if cfg.denialHandler == nil {
		cfg.denialHandler = &policy.SlogDenialHandler{Logger: cfg.logger}
	}
	return &Builder{
		guests: guest.NewRegistry(guest.WithValidator(cfg.validator)),
		caps:   capability.NewRegistry(),
		config: cfg,
	}
}

// Guests returns the guest registry being configured.
func (b *Builder) Guests() *guest.Registry {
	return b.guests
}

// Capabilities returns the capability registry being configured.
func (b *Builder) Capabilities() *capability.Registry {
	return b.caps
}

// Reserve adds a reserved namespace prefix.
func (b *Builder) Reserve(prefix string) error {
	return b.guests.Reserve(prefix)
}

// ReserveDefaults reserves the standard-library namespaces.
func (b *Builder) ReserveDefaults() error {
	return b.guests.ReserveDefaults()
}

// Allow grants guests access to a host name.
func (b *Builder) Allow(name string) error {
	return b.caps.Allow(name)
}

// AllowStandardSet grants the curated standard set.
func (b *Builder) AllowStandardSet() error {
	return b.caps.AllowStandardSet()
}

// Register adds a guest unit.
func (b *Builder) Register(name string, payload []byte) error {
	return b.guests.Register(name, payload)
}

// RegisterTree bulk-registers the unit files under root in fsys.
func (b *Builder) RegisterTree(fsys fs.FS, root string, exclude policy.ExcludeFunc, opts ...guest.TreeOption) (int, error) {
	return b.guests.RegisterTree(fsys, root, exclude, opts...)
}

// ApplyPolicy reserves and allows everything in p.
func (b *Builder) ApplyPolicy(p *entities.Policy) error {
	if p == nil {
		return nil
	}
	for _, prefix := range p.Reserved {
		if err := b.Reserve(prefix); err != nil {
			return err
		}
	}
	for _, name := range p.Allowed {
		if err := b.Allow(name); err != nil {
			return err
		}
	}
	return nil
}

// Build ends the configuration phase. Both registries are frozen, so further
// configuration calls fail with errors.ErrFrozen.
func (b *Builder) Build() *Sandbox {
	b.guests.Freeze()
	b.caps.Freeze()

	b.config.logger.LogAttrs(context.Background(), slog.LevelInfo, "sandbox: built",
		slog.Int("guests", b.guests.Len()),
		slog.Int("capabilities", b.caps.Len()),
		slog.Int("reserved", len(b.guests.Reserved())),
	)

	return &Sandbox{
		guests:   b.guests,
		caps:     b.caps,
		resolver: resolver.New(b.guests, b.caps, resolver.WithDenialHandler(b.config.denialHandler)),
	}
}
