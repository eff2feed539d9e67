// Package optiman manages auto-generated numerical-optimizer TCP servers:
// it resolves connection details from the generated optimizer descriptor,
// launches and supervises the local server build, probes readiness with a
// retrying ping, and runs request/response transactions over one dedicated
// TCP connection per call.
package optiman

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type clientState int

const (
	stateUnstarted clientState = iota
	stateRunning
	stateStopped // terminal; no restart on the same instance
)

// Client talks to one optimizer server. Operations are serialized by
// construction — every call opens and fully consumes its own connection —
// so a Client supports one caller at a time, not concurrent use.
type Client struct {
	details    ConnectionDetails
	build      *BuildInfo
	launchPath string

	conn      connector
	settle    time.Duration
	delimited bool
	log       *slog.Logger

	state clientState
}

// Option configures a Client during construction.
type Option func(*Client)

// WithLaunchPath resolves the endpoint from the descriptor inside dir and
// enables Start. Mutually exclusive with WithRemote.
func WithLaunchPath(dir string) Option {
	return func(c *Client) { c.launchPath = dir }
}

// WithRemote targets an already-running server. Start is unavailable on
// such a client. Mutually exclusive with WithLaunchPath.
func WithRemote(host string, port int) Option {
	return func(c *Client) { c.details = ConnectionDetails{Host: host, Port: port} }
}

// WithLogger routes the client's diagnostics, including the version-skew
// advisory, to log. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithConnectRetry overrides the connect retry policy. The delay is fixed
// between attempts; there is no backoff.
func WithConnectRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.conn.attempts = attempts
		c.conn.delay = delay
	}
}

// WithSettleDelay overrides the pause between launching the server and the
// first readiness ping.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) { c.settle = d }
}

// WithDelimiterFraming additionally ends response reads at a trailing
// newline, for servers that terminate documents explicitly instead of
// closing the connection.
func WithDelimiterFraming() Option {
	return func(c *Client) { c.delimited = true }
}

// New constructs a Client from exactly one of WithLaunchPath and
// WithRemote; both or neither fail with ErrConfig.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		conn:   connector{attempts: defaultConnectAttempts, delay: defaultConnectDelay},
		settle: defaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}

	switch {
	case c.launchPath != "" && c.details.Host != "":
		return nil, fmt.Errorf("%w: both a launch path and a remote endpoint were given", ErrConfig)
	case c.launchPath == "" && c.details.Host == "":
		return nil, fmt.Errorf("%w: need a launch path or a remote endpoint", ErrConfig)
	case c.details.Host != "" && (c.details.Port <= 0 || c.details.Port > 65535):
		return nil, fmt.Errorf("%w: invalid port %d", ErrConfig, c.details.Port)
	case c.conn.attempts < 1:
		return nil, fmt.Errorf("%w: connect retry needs at least one attempt", ErrConfig)
	case c.conn.delay < 0:
		return nil, fmt.Errorf("%w: negative connect retry delay", ErrConfig)
	}

	if c.launchPath != "" {
		details, build, err := loadDescriptor(c.launchPath)
		if err != nil {
			return nil, err
		}
		c.details = details
		c.build = &build

		if build.OpengenVersion != "" && build.OpengenVersion != Version {
			c.log.Warn("optimizer was built with a different opengen version",
				"built_with", build.OpengenVersion, "running", Version)
		}
	}
	return c, nil
}

// Details returns the resolved server endpoint.
func (c *Client) Details() ConnectionDetails { return c.details }

// Start launches the local server and waits for it to answer a ping.
// It requires a launch path (ErrUsage otherwise), fails with
// ErrPortUnavailable — without spawning — when the target port is already
// accepting connections, and is invalid on a stopped client.
func (c *Client) Start(ctx context.Context) error {
	if c.launchPath == "" {
		return fmt.Errorf("%w: no local launch configuration", ErrUsage)
	}
	if c.state == stateStopped {
		return fmt.Errorf("%w: client is stopped", ErrUsage)
	}
	if portInUse(c.details.Addr()) {
		return fmt.Errorf("%w: %s is already accepting connections", ErrPortUnavailable, c.details.Addr())
	}

	if err := launchServer(c.launchPath, *c.build, c.log); err != nil {
		return err
	}

	// Give the toolchain a head start before probing; the ping below
	// retries connecting on top of this.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.settle):
	}

	c.log.Info("waiting for optimizer server", "addr", c.details.Addr())
	if _, err := c.Ping(ctx); err != nil {
		return err
	}
	c.state = stateRunning
	return nil
}

// Ping performs one ping transaction and returns the decoded
// acknowledgement. Valid in any state; used both as the post-launch
// readiness probe and as an external health check.
func (c *Client) Ping(ctx context.Context) (map[string]any, error) {
	data, truncated, err := c.transact(ctx, pingRequest, signalBufferLen, defaultMaxDataSize)
	if err != nil {
		return nil, err
	}
	return decodeDocument(data, truncated)
}

// callOptions collects the optional pieces of a Run request and the
// transaction sizing.
type callOptions struct {
	guess       []float64
	multipliers []float64
	penalty     *float64
	bufferLen   int
	maxDataSize int
}

// CallOption configures a single Call.
type CallOption func(*callOptions)

// WithInitialGuess supplies a warm-start guess vector.
func WithInitialGuess(guess []float64) CallOption {
	return func(o *callOptions) { o.guess = guess }
}

// WithInitialMultipliers supplies initial Lagrange multipliers.
func WithInitialMultipliers(y []float64) CallOption {
	return func(o *callOptions) { o.multipliers = y }
}

// WithInitialPenalty supplies an initial penalty parameter.
func WithInitialPenalty(penalty float64) CallOption {
	return func(o *callOptions) { o.penalty = &penalty }
}

// WithBufferLen overrides the response read chunk size (default 4096).
func WithBufferLen(n int) CallOption {
	return func(o *callOptions) { o.bufferLen = n }
}

// WithMaxDataSize overrides the maximum expected response size (default
// 1 MiB). Together with the buffer length it bounds the read loop.
func WithMaxDataSize(n int) CallOption {
	return func(o *callOptions) { o.maxDataSize = n }
}

// Call runs the solver on a non-empty parameter vector and returns the
// decoded response. Each call is one independent transaction; transport
// failures are not retried beyond the connect phase.
func (c *Client) Call(ctx context.Context, p []float64, opts ...CallOption) (*SolverResponse, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty parameter vector", ErrUsage)
	}

	co := callOptions{bufferLen: defaultBufferLen, maxDataSize: defaultMaxDataSize}
	for _, opt := range opts {
		opt(&co)
	}
	if co.bufferLen <= 0 || co.maxDataSize <= 0 {
		return nil, fmt.Errorf("%w: buffer length and max data size must be positive", ErrUsage)
	}

	payload, err := encodeRun(runParams{
		Parameter:                  p,
		InitialGuess:               co.guess,
		InitialLagrangeMultipliers: co.multipliers,
		InitialPenalty:             co.penalty,
	})
	if err != nil {
		return nil, err
	}

	data, truncated, err := c.transact(ctx, payload, co.bufferLen, co.maxDataSize)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(data, truncated)
	if err != nil {
		return nil, err
	}
	return &SolverResponse{raw: doc}, nil
}

// Kill sends the protocol Kill message and marks the client stopped. It
// does not wait for or verify process exit; teardown is the server's
// business once the message is delivered.
func (c *Client) Kill(ctx context.Context) error {
	if _, _, err := c.transact(ctx, killRequest, signalBufferLen, defaultMaxDataSize); err != nil {
		return err
	}
	c.state = stateStopped
	c.log.Info("optimizer server told to shut down", "addr", c.details.Addr())
	return nil
}

// transact runs one request/response exchange on a fresh connection.
func (c *Client) transact(ctx context.Context, payload []byte, bufLen, maxSize int) ([]byte, bool, error) {
	conn, err := c.conn.dial(ctx, c.details.Addr())
	if err != nil {
		return nil, false, err
	}
	return transact(conn, payload, bufLen, maxSize, c.delimited)
}
