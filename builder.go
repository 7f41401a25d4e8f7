package netcli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/malbeclabs/netcli/platform"
	"github.com/malbeclabs/netcli/transport"
)

// DefaultQuiescenceWindow is the spec §9 open-question decision: the
// documented floor ("≥20ms") rather than a guessed vendor-specific value.
const DefaultQuiescenceWindow = 20 * time.Millisecond

// DefaultTimeout bounds every read-until operation unless overridden per
// call.
const DefaultTimeout = 30 * time.Second

// Config is the validated, immutable configuration a Driver is built from
// (spec §6 builder-style construction). Use Builder to assemble one.
type Config struct {
	Host string
	Port int

	Username             string
	Password             string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	UseAgent             bool

	// EnablePassword answers platform.DriverHandle.Credential("enable") for
	// platforms whose escalation requires a second secret.
	EnablePassword string

	Timeout          time.Duration
	KeepAliveInterval time.Duration
	QuiescenceWindow time.Duration

	Platform *platform.PlatformDefinition

	Dialer transport.Dialer
	Clock  clockwork.Clock
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.QuiescenceWindow <= 0 {
		c.QuiescenceWindow = DefaultQuiescenceWindow
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

func (c *Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidInput)
	}
	if c.Platform == nil {
		return fmt.Errorf("%w: platform is required", ErrInvalidInput)
	}
	if c.Dialer == nil {
		return fmt.Errorf("%w: dialer is required", ErrInvalidInput)
	}
	return nil
}

// Builder assembles a Config fluently, mirroring the option-struct builders
// used throughout the teacher codebase (e.g. gnmitunnel.Config).
type Builder struct {
	cfg Config
}

// NewBuilder starts a Driver configuration for host (required).
func NewBuilder(host string) *Builder {
	return &Builder{cfg: Config{Host: host}}
}

func (b *Builder) Port(port int) *Builder { b.cfg.Port = port; return b }

func (b *Builder) Username(username string) *Builder { b.cfg.Username = username; return b }

func (b *Builder) Password(password string) *Builder { b.cfg.Password = password; return b }

func (b *Builder) PrivateKey(path, passphrase string) *Builder {
	b.cfg.PrivateKeyPath = path
	b.cfg.PrivateKeyPassphrase = passphrase
	return b
}

func (b *Builder) Agent() *Builder { b.cfg.UseAgent = true; return b }

func (b *Builder) EnablePassword(password string) *Builder {
	b.cfg.EnablePassword = password
	return b
}

func (b *Builder) Timeout(d time.Duration) *Builder { b.cfg.Timeout = d; return b }

func (b *Builder) KeepAlive(d time.Duration) *Builder { b.cfg.KeepAliveInterval = d; return b }

func (b *Builder) QuiescenceWindow(d time.Duration) *Builder {
	b.cfg.QuiescenceWindow = d
	return b
}

func (b *Builder) Platform(p *platform.PlatformDefinition) *Builder {
	b.cfg.Platform = p
	return b
}

func (b *Builder) Dialer(d transport.Dialer) *Builder { b.cfg.Dialer = d; return b }

func (b *Builder) Clock(c clockwork.Clock) *Builder { b.cfg.Clock = c; return b }

func (b *Builder) Logger(l *slog.Logger) *Builder { b.cfg.Logger = l; return b }

// Build validates the configuration and returns an unopened Driver. Call
// Open to establish the transport.
func (b *Builder) Build() (*Driver, error) {
	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newDriver(&cfg), nil
}

func (c *Config) authMethod() transport.AuthMethod {
	return transport.AuthMethod{
		Username:             c.Username,
		Password:             c.Password,
		PrivateKeyPath:       c.PrivateKeyPath,
		PrivateKeyPassphrase: c.PrivateKeyPassphrase,
		Agent:                c.UseAgent,
	}
}
