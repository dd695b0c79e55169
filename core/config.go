package core

// Config holds scheduler-wide configuration. All fields are optional; the
// zero value plus Option defaults produces a working scheduler, mirroring
// the teacher's TaskSchedulerConfig/DefaultTaskSchedulerConfig pattern.
type Config struct {
	// Workers is the number of worker goroutines. Zero means
	// runtime.NumCPU().
	Workers int

	// StartIndex is the index of the first spawned worker. A caller that
	// wants to enter the pool itself as worker 0 (so it participates in
	// running jobs on its own goroutine) sets StartIndex to 1 and spawns
	// one fewer goroutine.
	StartIndex int

	// IdleMisses is how many consecutive empty polls a worker tolerates
	// before backing off. Zero uses a built-in default.
	IdleMisses int

	// IdleSleep is how long a worker sleeps once it backs off. Zero uses a
	// built-in default.
	IdleSleep int64 // nanoseconds, avoids importing time into the zero value story

	Logger       Logger
	Metrics      Metrics
	Clock        Clock
	PanicHandler PanicHandler
}

// Option configures a Config.
type Option func(*Config)

// WithWorkers sets the worker count.
func WithWorkers(n int) Option { return func(c *Config) { c.Workers = n } }

// WithStartIndex sets the first spawned worker index.
func WithStartIndex(idx int) Option { return func(c *Config) { c.StartIndex = idx } }

// WithLogger sets the Logger collaborator.
func WithLogger(l Logger) Option { return func(c *Config) { c.Logger = l } }

// WithMetrics sets the Metrics collaborator.
func WithMetrics(m Metrics) Option { return func(c *Config) { c.Metrics = m } }

// WithClock sets the Clock collaborator.
func WithClock(cl Clock) Option { return func(c *Config) { c.Clock = cl } }

// WithPanicHandler sets the PanicHandler collaborator.
func WithPanicHandler(h PanicHandler) Option { return func(c *Config) { c.PanicHandler = h } }

// WithIdleBackoff overrides the idle-miss threshold and sleep duration (in
// nanoseconds) before a worker backs off.
func WithIdleBackoff(misses int, sleepNanos int64) Option {
	return func(c *Config) {
		c.IdleMisses = misses
		c.IdleSleep = sleepNanos
	}
}

const (
	defaultIdleMisses = 20   // mirrors the original system's NOOP threshold
	defaultIdleSleep  = 5000 // 5 microseconds, in nanoseconds
)

func defaultConfig() *Config {
	return &Config{
		IdleMisses: defaultIdleMisses,
		IdleSleep:  defaultIdleSleep,
		Logger:     NewDefaultLogger(),
		Metrics:    NilMetrics{},
		Clock:      RealClock(),
	}
}

func applyOptions(opts []Option) *Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = NewDefaultLogger()
	}
	if c.Metrics == nil {
		c.Metrics = NilMetrics{}
	}
	if c.Clock == nil {
		c.Clock = RealClock()
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &DefaultPanicHandler{Logger: c.Logger}
	}
	if c.IdleMisses <= 0 {
		c.IdleMisses = defaultIdleMisses
	}
	if c.IdleSleep <= 0 {
		c.IdleSleep = defaultIdleSleep
	}
	return c
}
