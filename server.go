package httpcore

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// State is the Server's lifecycle state (spec §4.10 "State machine").
type State int

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Option configures a Server at construction time, builder-style (spec
// §4.10, §6 "Configuration").
type Option func(*Server)

// WithPort sets the listen port.
func WithPort(port int) Option { return func(s *Server) { s.port = port } }

// WithPoolSizes sets both worker pools' core/max/queue parameters.
func WithPoolSizes(core, max, queueCapacity int) Option {
	return func(s *Server) {
		s.poolCore, s.poolMax, s.poolQueue = core, max, queueCapacity
	}
}

// WithSelectorTimeout sets the selector-wait timeout driving idle-check
// cadence (spec §4.8 step 1).
func WithSelectorTimeout(d time.Duration) Option {
	return func(s *Server) { s.selectorTimeout = d }
}

// WithIdleTimeout sets the IdleReaper's threshold.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// WithLogger overrides the default logger.
func WithLogger(l Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics overrides the default no-op Metrics collaborator (spec §6,
// §9 "Singleton profiler with global state").
func WithMetrics(m Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithJSONCodec overrides the default JSON codec.
func WithJSONCodec(c JSONCodec) Option { return func(s *Server) { s.codec = c } }

// WithMultipartParser overrides the default multipart parser.
func WithMultipartParser(p MultipartParser) Option {
	return func(s *Server) { s.multipart = p }
}

// WithNotFoundHandler overrides the default 404 responder.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(s *Server) { s.notFound = h }
}

// Server composes every other component behind a builder-configured
// facade (spec §4.10, C10).
type Server struct {
	port            int
	poolCore        int
	poolMax         int
	poolQueue       int
	selectorTimeout time.Duration
	idleTimeout     time.Duration

	logger    Logger
	metrics   Metrics
	codec     JSONCodec
	multipart MultipartParser
	notFound  HandlerFunc

	router *Router

	state State

	bufferPool *BufferPool
	readPool   *WorkerPool
	writePool  *WorkerPool
	registry   *ConnectionRegistry
	reaper     *IdleReaper
	connStats  *connStats
	loop       *EventLoop
}

// NewServer builds a Server in state Created, applying opts over sane
// defaults.
func NewServer(opts ...Option) *Server {
	s := &Server{
		port:            8080,
		poolCore:        8,
		poolMax:         64,
		poolQueue:       1024,
		selectorTimeout: 500 * time.Millisecond,
		idleTimeout:     60 * time.Second,
		logger:          NewLogger(false, false),
		metrics:         NewNoopMetrics(),
		codec:           newJSONCodec(),
		multipart:       newMultipartParser(),
		router:          NewRouter(),
		state:           StateCreated,
	}
	s.notFound = func(req *Request, res *Response) {
		res.SetStatus(404).WriteText("not found")
		_ = res.Send()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Use registers global middleware on the root router (spec §6). Sub-routers
// are attached at a prefix with Mount.
func (s *Server) Use(mw MiddlewareFunc) { s.router.Use(mw) }

// Mount attaches child at prefix on the root router (spec §4.5 "Mounting").
func (s *Server) Mount(prefix string, child *Router) { s.router.Mount(prefix, child) }

// Router exposes the root router for route registration.
func (s *Server) Router() *Router { return s.router }

// Start builds the runtime components and blocks running the event loop
// until Stop is called (spec §4.10 "start() is blocking").
func (s *Server) Start() error {
	s.state = StateStarting

	s.bufferPool = NewBufferPool(s.poolQueue)
	s.readPool = NewWorkerPool(s.poolCore, s.poolMax, s.poolQueue)
	s.writePool = NewWorkerPool(s.poolCore, s.poolMax, s.poolQueue)
	s.registry = newConnectionRegistry()
	s.reaper = newIdleReaper(s.registry, s.idleTimeout, s.logger)
	s.connStats = newConnStats()

	loop, err := newEventLoop(EventLoopConfig{
		Port:            s.port,
		SelectorTimeout: s.selectorTimeout,
		ReadPool:        s.readPool,
		WritePool:       s.writePool,
		BufferPool:      s.bufferPool,
		Registry:        s.registry,
		Reaper:          s.reaper,
		Router:          s.router,
		Codec:           s.codec,
		Multipart:       s.multipart,
		Logger:          s.logger,
		Metrics:         s.metrics,
		ConnStats:       s.connStats,
		NotFound:        s.notFound,
	})
	if err != nil {
		s.state = StateStopped
		return fmt.Errorf("httpcore: starting event loop: %w", err)
	}
	s.loop = loop
	s.state = StateRunning

	err = s.loop.Run()
	if s.state != StateStopping {
		s.state = StateStopped
	}
	return err
}

// Stop signals the loop to exit, waits for in-flight work to drain on both
// pools up to timeout, then closes and unregisters every remaining
// connection and releases the failure-count cache. Returns
// whether the drain completed inside timeout (spec §4.10 "stop(timeoutMillis)").
func (s *Server) Stop(timeout time.Duration) (bool, error) {
	s.state = StateStopping
	deadline := time.Now().Add(timeout)

	s.loop.Stop()

	var errs error
	readOK := s.readPool.Shutdown(time.Until(deadline))
	if !readOK {
		errs = multierr.Append(errs, fmt.Errorf("httpcore: read pool did not drain within %s", timeout))
	}
	writeOK := s.writePool.Shutdown(time.Until(deadline))
	if !writeOK {
		errs = multierr.Append(errs, fmt.Errorf("httpcore: write pool did not drain within %s", timeout))
	}

	for _, c := range s.registry.Snapshot() {
		if err := c.Close(); err != nil && !isBenignWriteError(err) {
			errs = multierr.Append(errs, err)
		}
		s.registry.Remove(c.fd)
	}

	if s.connStats != nil {
		s.connStats.Close()
	}

	s.state = StateStopped
	return readOK && writeOK, errs
}

// State returns the current lifecycle state.
func (s *Server) State() State { return s.state }
