package index

import (
	"fmt"

	"github.com/viant/colindex/config"
	"github.com/viant/colindex/internal/logging"
)

// DefaultLimit is the range lookup limit used when none is given.
const DefaultLimit = 100

// RemovalPolicy selects what Range.Remove does.
type RemovalPolicy int

const (
	// RemovalTombstone deletes a record's entries on remove and reclaims
	// entries of deleted records during scans.
	RemovalTombstone RemovalPolicy = iota
	// RemovalFilter keeps entries forever; scans filter them out.
	RemovalFilter
)

func (p RemovalPolicy) String() string {
	if p == RemovalFilter {
		return config.RemovalFilter
	}
	return config.RemovalTombstone
}

// ParseRemovalPolicy maps "tombstone" and "filter" to a policy.
func ParseRemovalPolicy(s string) (RemovalPolicy, error) {
	switch s {
	case config.RemovalTombstone, "":
		return RemovalTombstone, nil
	case config.RemovalFilter:
		return RemovalFilter, nil
	}
	return RemovalTombstone, fmt.Errorf("index: unknown removal policy %q", s)
}

// Options are shared by every index of a Set.
type Options struct {
	Logger       logging.Logger
	DefaultLimit int
	// BatchSize is the number of entries a cursor fetches per store call;
	// 0 fetches as many as the requested limit.
	BatchSize int
	Removal   RemovalPolicy
	// HealStale deletes unique mappings to missing records and, with
	// RemovalTombstone, range entries of missing records.
	HealStale bool
}

type Option func(*Options)

func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithDefaultLimit(n int) Option {
	return func(o *Options) { o.DefaultLimit = n }
}

func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

func WithRemovalPolicy(p RemovalPolicy) Option {
	return func(o *Options) { o.Removal = p }
}

func WithHealStale(heal bool) Option {
	return func(o *Options) { o.HealStale = heal }
}

// WithConfig applies the index section of a loaded configuration. Unknown
// removal policies are rejected by config.Validate before they get here and
// fall back to RemovalTombstone.
func WithConfig(cfg config.IndexConfig) Option {
	return func(o *Options) {
		if cfg.DefaultLimit > 0 {
			o.DefaultLimit = cfg.DefaultLimit
		}
		o.BatchSize = cfg.BatchSize
		o.Removal, _ = ParseRemovalPolicy(cfg.RangeRemoval)
		o.HealStale = cfg.Heal()
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		Logger:       logging.Nop(),
		DefaultLimit: DefaultLimit,
		Removal:      RemovalTombstone,
		HealStale:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = DefaultLimit
	}
	if o.BatchSize < 0 {
		o.BatchSize = 0
	}
	return o
}
