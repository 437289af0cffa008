package resolve

import (
	"cmp"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/coo-registry/pkg/metrics"
)

// minChunk is the smallest slice of distinct values worth a goroutine.
const minChunk = 256

// BatchResult is the output of one batch run.
type BatchResult struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`

	unknown string
}

// IsUnknown reports whether rec resolved to the batch's Unknown sentinel.
func (res *BatchResult) IsUnknown(rec Record) bool {
	return rec.Resolved == res.unknown
}

// Lookup returns the record for a raw value.
func (res *BatchResult) Lookup(v Value) (Record, bool) {
	if !v.Valid {
		v = Null
	}
	for _, rec := range res.Records {
		if rec.Raw == v {
			return rec, true
		}
	}
	return Record{}, false
}

// Index maps each raw value to its record, for joining back onto source rows.
func (res *BatchResult) Index() map[Value]Record {
	idx := make(map[Value]Record, len(res.Records))
	for _, rec := range res.Records {
		idx[rec.Raw] = rec
	}
	return idx
}

// Option configures a Runner or Engine.
type Option func(*options)

type options struct {
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// WithWorkers bounds parallel resolution. n <= 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMetrics records resolutions and batch timings on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Runner applies a Resolver to a column of raw values.
type Runner struct {
	resolver *Resolver
	opts     options
}

// NewRunner returns a Runner over r.
func NewRunner(r *Resolver, opts ...Option) *Runner {
	return &Runner{resolver: r, opts: buildOptions(opts)}
}

// Run resolves each distinct raw value once and returns the records sorted
// for review: matched rows by resolved identifier, then Unknown rows by raw
// value. Deduplication is on the raw value exactly as supplied. Output order
// does not depend on the number of workers.
func (b *Runner) Run(values []Value) *BatchResult {
	start := time.Now()

	distinct := dedupe(values)
	records := make([]Record, len(distinct))

	chunk := max(minChunk, (len(distinct)+b.opts.workers-1)/b.opts.workers)
	var g errgroup.Group
	g.SetLimit(b.opts.workers)
	for lo := 0; lo < len(distinct); lo += chunk {
		hi := min(lo+chunk, len(distinct))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				records[i] = b.resolveRow(distinct[i])
			}
			return nil
		})
	}
	_ = g.Wait() // rows never fail

	unknown := b.resolver.Unknown()
	slices.SortFunc(records, func(x, y Record) int { return compareRecords(x, y, unknown) })

	for _, rec := range records {
		b.opts.metrics.IncResolution(rec.Method.String())
	}
	b.opts.metrics.ObserveBatch(time.Since(start), len(records))

	return &BatchResult{
		Records: records,
		Summary: summarize(records, unknown),
		unknown: unknown,
	}
}

// resolveRow isolates one row: a panic degrades that row to no_match.
func (b *Runner) resolveRow(v Value) (rec Record) {
	defer func() {
		if p := recover(); p != nil {
			b.opts.logger.Error("resolution panicked, row marked no_match", "raw", v.String(), "panic", p)
			rec = Record{Raw: v, Resolved: b.resolver.Unknown(), Method: MethodNoMatch}
		}
	}()
	return b.resolver.Resolve(v)
}

// dedupe keeps the first occurrence of each raw value, in input order.
func dedupe(values []Value) []Value {
	seen := make(map[Value]struct{}, len(values))
	out := make([]Value, 0, len(values))
	for _, v := range values {
		if !v.Valid {
			v = Null // normalize any stray text on null values
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func compareRecords(x, y Record, unknown string) int {
	xu, yu := x.Resolved == unknown, y.Resolved == unknown
	if xu != yu {
		if xu {
			return 1
		}
		return -1
	}
	if !xu {
		if c := strings.Compare(x.Resolved, y.Resolved); c != 0 {
			return c
		}
	}
	return compareRaw(x.Raw, y.Raw)
}

// compareRaw orders present values lexically and null last.
func compareRaw(x, y Value) int {
	if x.Valid != y.Valid {
		if x.Valid {
			return -1
		}
		return 1
	}
	return cmp.Compare(x.Text, y.Text)
}
