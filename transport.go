package optiman

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// Connection and transaction defaults, matching the generated server's
// expectations.
const (
	defaultConnectAttempts = 10
	defaultConnectDelay    = time.Second
	defaultSettleDelay     = 2 * time.Second
	portProbeTimeout       = 500 * time.Millisecond

	signalBufferLen    = 512
	defaultBufferLen   = 4096
	defaultMaxDataSize = 1 << 20
)

// connector establishes per-transaction TCP connections with a bounded
// fixed-delay retry. No backoff, no jitter: the policy is part of the
// server's startup contract.
type connector struct {
	attempts int
	delay    time.Duration
	dialer   net.Dialer
}

func (c *connector) dial(ctx context.Context, addr string) (net.Conn, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}
		conn, err := c.dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrConnection, addr, c.attempts, lastErr)
}

// closeWriter is the write-side half-close. *net.TCPConn implements it;
// test doubles may not, in which case the peer must frame by delimiter.
type closeWriter interface {
	CloseWrite() error
}

// transact writes one request document, half-closes the write side so the
// peer sees end-of-request, and reads the response in bufLen-sized chunks.
// Reading stops at peer close, at a trailing newline when delimited framing
// is on, or at the round cap ceil(maxSize/bufLen) — whichever comes first.
// The second result reports whether the cap cut the response short. The
// connection is closed unconditionally.
func transact(conn net.Conn, payload []byte, bufLen, maxSize int, delimited bool) ([]byte, bool, error) {
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return nil, false, fmt.Errorf("%w: writing request: %v", ErrTransport, err)
	}
	if cw, ok := conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			return nil, false, fmt.Errorf("%w: half-closing: %v", ErrTransport, err)
		}
	}

	rounds := (maxSize + bufLen - 1) / bufLen
	buf := make([]byte, bufLen)
	var data []byte
	for i := 0; i < rounds; i++ {
		n, err := conn.Read(buf)
		data = append(data, buf[:n]...)
		if err == io.EOF {
			return data, false, nil
		}
		if err != nil {
			return data, false, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
		}
		if delimited && len(data) > 0 && data[len(data)-1] == '\n' {
			return data, false, nil
		}
	}
	return data, true, nil
}

// portInUse probes whether something already accepts connections on addr.
func portInUse(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, portProbeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
