package host

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	apptemplate "github.com/reglet-dev/sieve/application/template"
	"github.com/reglet-dev/sieve/application/validation"
	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/policy"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/reglet-dev/sieve/guest"
	"github.com/reglet-dev/sieve/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	templateEngine  ports.TemplateEngine
	parser          ports.ManifestParser
	validator       ports.ManifestValidator
	policyStore     ports.PolicyStore
	fsys            fs.FS
	logger          *slog.Logger
	builderOpts     []BuilderOption
	strictTemplates bool // Fail on missing template keys
	skipValidation  bool
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:          parser.NewYamlManifestParser(),
		strictTemplates: true,
	}
}

// Loader orchestrates the manifest pipeline: render, parse, validate, then
// apply to a Builder and build the Sandbox.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom manifest parser.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithTemplateEngine sets a template engine.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(c *loaderConfig) {
		c.templateEngine = t
	}
}

// WithStrictTemplates enables/disables strict template mode.
// When enabled (default), template rendering fails if a referenced key is missing.
func WithStrictTemplates(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.strictTemplates = enabled
	}
}

// WithManifestValidator sets the manifest validator. Defaults to
// validation.NewManifestValidator.
func WithManifestValidator(v ports.ManifestValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// WithoutValidation skips manifest validation.
func WithoutValidation() LoaderOption {
	return func(c *loaderConfig) {
		c.skipValidation = true
	}
}

// WithPolicyStore applies a stored policy before the manifest's own
// reservations and grants.
func WithPolicyStore(s ports.PolicyStore) LoaderOption {
	return func(c *loaderConfig) {
		c.policyStore = s
	}
}

// WithFileSystem resolves guest tree roots inside fsys instead of the host
// filesystem.
func WithFileSystem(fsys fs.FS) LoaderOption {
	return func(c *loaderConfig) {
		c.fsys = fsys
	}
}

// WithBuilderOptions passes options to the Builder created by Load.
func WithBuilderOptions(opts ...BuilderOption) LoaderOption {
	return func(c *loaderConfig) {
		c.builderOpts = append(c.builderOpts, opts...)
	}
}

// WithLoaderLogger sets the logger. Defaults to slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		c.logger = logger
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.templateEngine == nil {
		cfg.templateEngine = apptemplate.NewGoTemplateEngine(
			apptemplate.WithStrict(cfg.strictTemplates),
		)
	}
	if cfg.validator == nil && !cfg.skipValidation {
		v, err := validation.NewManifestValidator()
		if err != nil {
			return nil, fmt.Errorf("failed to create manifest validator: %w", err)
		}
		cfg.validator = v
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &Loader{config: cfg}, nil
}

// LoadManifest renders, parses, and validates a manifest.
func (l *Loader) LoadManifest(raw []byte, config map[string]interface{}) (*entities.Manifest, error) {
	data, err := l.config.templateEngine.Render(raw, config)
	if err != nil {
		return nil, &errors.ConfigError{Field: "manifest", Err: fmt.Errorf("failed to render manifest: %w", err)}
	}

	manifest, err := l.config.parser.Parse(data)
	if err != nil {
		return nil, &errors.ConfigError{Field: "manifest", Err: fmt.Errorf("failed to parse manifest: %w", err)}
	}

	if l.config.skipValidation {
		return manifest, nil
	}

	res, err := l.config.validator.Validate(manifest)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !res.Valid {
		var sb strings.Builder
		sb.WriteString("manifest validation failed:")
		for _, e := range res.Errors {
			fmt.Fprintf(&sb, "\n- %s: %s", e.Field, e.Message)
		}
		return nil, &errors.ConfigError{Field: "manifest", Err: fmt.Errorf("%s", sb.String())}
	}

	return manifest, nil
}

// Apply runs the configuration phase described by manifest on b, in order:
// stored policy, default reservations, reservations, standard set, grants,
// then guest trees. Any failure aborts.
func (l *Loader) Apply(b *Builder, manifest *entities.Manifest) error {
	if l.config.policyStore != nil {
		stored, err := l.config.policyStore.Load()
		if err != nil {
			return err
		}
		if stored.IsEmpty() {
			l.config.logger.Debug("sandbox: no stored policy", "path", l.config.policyStore.ConfigPath())
		} else if err := b.ApplyPolicy(stored); err != nil {
			return err
		}
	}

	if manifest.ReserveDefaults {
		if err := b.ReserveDefaults(); err != nil {
			return err
		}
	}
	if manifest.AllowStandardSet {
		if err := b.AllowStandardSet(); err != nil {
			return err
		}
	}
	if err := b.ApplyPolicy(&entities.Policy{Reserved: manifest.Reserved, Allowed: manifest.Allowed}); err != nil {
		return err
	}

	for _, tree := range manifest.Guests {
		if err := l.registerTree(b, tree); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) registerTree(b *Builder, tree entities.GuestTree) error {
	exclude, err := policy.NewGlobExclude(tree.Exclude...)
	if err != nil {
		return &errors.ConfigError{Field: "guests.exclude", Err: err}
	}

	fsys, root := l.config.fsys, path.Clean(tree.Root)
	if fsys == nil {
		fsys, root = os.DirFS(tree.Root), "."
	}

	var opts []guest.TreeOption
	if tree.Extension != "" {
		opts = append(opts, guest.WithExtension(tree.Extension))
	}

	n, err := b.RegisterTree(fsys, root, exclude, opts...)
	if err != nil {
		return err
	}
	l.config.logger.Info("sandbox: registered guest tree", "root", tree.Root, "units", n)
	return nil
}

// Load runs the whole pipeline and returns the built Sandbox with the manifest
// it was built from.
func (l *Loader) Load(raw []byte, config map[string]interface{}) (*Sandbox, *entities.Manifest, error) {
	manifest, err := l.LoadManifest(raw, config)
	if err != nil {
		return nil, nil, err
	}

	opts := append([]BuilderOption{WithLogger(l.config.logger)}, l.config.builderOpts...)
	if manifest.MinDepth > 0 {
		opts = append(opts, WithMinDepth(manifest.MinDepth))
	}
	b := NewBuilder(opts...)

	if err := l.Apply(b, manifest); err != nil {
		return nil, nil, err
	}
	return b.Build(), manifest, nil
}

// LoadFile reads the manifest at path and runs Load.
func (l *Loader) LoadFile(path string, config map[string]interface{}) (*Sandbox, *entities.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &errors.ConfigError{Field: "manifest", Err: fmt.Errorf("failed to read manifest: %w", err)}
	}
	return l.Load(raw, config)
}
