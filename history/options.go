package history

import (
	"log"
	"time"
)

// Defaults applied by DefaultConfig and to zero-valued Config fields.
const (
	DefaultMaxEntries    = 1000
	DefaultDebounceDelay = 300 * time.Millisecond
)

// Config holds engine settings.
type Config struct {
	// MaxEntries bounds each branch when AutoCleanup is on.
	MaxEntries int
	// DebounceDelay is the quiet period for debounced records.
	DebounceDelay time.Duration
	// EnableCompression stores recorded states zstd-compressed. It trades
	// CPU for memory and has no other observable effect.
	EnableCompression bool
	// AutoCleanup evicts the oldest entries of a branch past MaxEntries.
	AutoCleanup bool
	// Clock supplies timestamps; time.Now when nil.
	Clock func() time.Time
	// ErrorHandler receives failures of debounced records, which have no
	// caller to return to. Logs when nil.
	ErrorHandler func(error)
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		MaxEntries:    DefaultMaxEntries,
		DebounceDelay: DefaultDebounceDelay,
		AutoCleanup:   true,
	}
}

func (c Config) normalize() Config {
	if c.MaxEntries <= 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = DefaultDebounceDelay
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.ErrorHandler == nil {
		c.ErrorHandler = func(err error) {
			log.Printf("history: debounced record failed: %v", err)
		}
	}
	return c
}

// Option configures an engine built by New.
type Option func(*Config)

// WithMaxEntries sets the per-branch retention window.
func WithMaxEntries(n int) Option {
	return func(c *Config) { c.MaxEntries = n }
}

// WithDebounceDelay sets the debounce quiet period.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) { c.DebounceDelay = d }
}

// WithCompression toggles zstd compression of stored states.
func WithCompression(enabled bool) Option {
	return func(c *Config) { c.EnableCompression = enabled }
}

// WithAutoCleanup toggles eviction past MaxEntries.
func WithAutoCleanup(enabled bool) Option {
	return func(c *Config) { c.AutoCleanup = enabled }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.Clock = now }
}

// WithErrorHandler sets the handler for debounced record failures.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Config) { c.ErrorHandler = fn }
}

type recordOptions struct {
	metadata Metadata
	debounce bool
	branch   string
}

// RecordOption configures a single Record call.
type RecordOption func(*recordOptions)

// WithMetadata attaches metadata to the recorded entry. Record copies it,
// nested values included, before returning.
func WithMetadata(m Metadata) RecordOption {
	return func(o *recordOptions) { o.metadata = m }
}

// Immediate records synchronously instead of debouncing.
func Immediate() RecordOption {
	return func(o *recordOptions) { o.debounce = false }
}

// OnBranch records onto the named branch instead of the active one.
func OnBranch(name string) RecordOption {
	return func(o *recordOptions) { o.branch = name }
}

// JumpMode selects how JumpTo treats the branch holding the target entry.
type JumpMode string

const (
	// JumpSwitch switches to the branch holding the entry.
	JumpSwitch JumpMode = ""
	// JumpReadOnly moves the cursor without switching branches.
	JumpReadOnly JumpMode = "readonly"
	// JumpBranch starts a new branch rooted at the entry when it lives on
	// another branch, and switches to it.
	JumpBranch JumpMode = "branch"
)

type jumpOptions struct {
	mode       JumpMode
	branchName string
}

// JumpOption configures a single JumpTo call.
type JumpOption func(*jumpOptions)

// ReadOnly jumps without switching branches.
func ReadOnly() JumpOption {
	return func(o *jumpOptions) { o.mode = JumpReadOnly }
}

// AsBranch jumps in branch mode. An empty name asks the engine to generate
// one; an existing name is switched to instead of created.
func AsBranch(name string) JumpOption {
	return func(o *jumpOptions) {
		o.mode = JumpBranch
		o.branchName = name
	}
}
