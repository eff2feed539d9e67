package optiman

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startStub runs handler on the first accepted connection and returns the
// listen address.
func startStub(t *testing.T, handler func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handler(conn)
	}()
	return ln.Addr().String()
}

func TestTransactEchoesUntilPeerCloses(t *testing.T) {
	addr := startStub(t, func(conn net.Conn) {
		defer conn.Close()
		// Half-close on the client side delivers EOF here.
		data, err := io.ReadAll(conn)
		if err != nil {
			return
		}
		conn.Write(data)
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	got, truncated, err := transact(conn, []byte(`{"Ping":1}`), 4, defaultMaxDataSize, false)
	require.NoError(t, err)
	require.False(t, truncated)
	require.Equal(t, `{"Ping":1}`, string(got))
}

func TestTransactStopsAtRoundCap(t *testing.T) {
	hold := make(chan struct{})
	t.Cleanup(func() { close(hold) })

	addr := startStub(t, func(conn net.Conn) {
		io.ReadAll(conn)
		big := make([]byte, 64<<10)
		conn.Write(big)
		// Keep the connection open: the client must stop at the cap,
		// not wait for a close that never comes.
		<-hold
		conn.Close()
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	done := make(chan struct{})
	var (
		got       []byte
		truncated bool
		terr      error
	)
	go func() {
		got, truncated, terr = transact(conn, []byte(`{"Ping":1}`), 512, 4096, false)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("transact blocked past the round cap")
	}
	require.NoError(t, terr)
	require.True(t, truncated)
	require.NotEmpty(t, got)

	_, err = decodeDocument(got, truncated)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestTransactDelimiterFraming(t *testing.T) {
	hold := make(chan struct{})
	t.Cleanup(func() { close(hold) })

	addr := startStub(t, func(conn net.Conn) {
		io.ReadAll(conn)
		conn.Write([]byte("{\"Ping\":200}\n"))
		<-hold
		conn.Close()
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	got, truncated, err := transact(conn, []byte(`{"Ping":1}`), 512, defaultMaxDataSize, true)
	require.NoError(t, err)
	require.False(t, truncated)
	require.Equal(t, "{\"Ping\":200}\n", string(got))
}

func TestTransactReadFailureMidResponse(t *testing.T) {
	addr := startStub(t, func(conn net.Conn) {
		io.ReadAll(conn)
		conn.Write([]byte(`{"partial`))
		// Reset instead of a clean close: the client must surface the
		// read failure, not treat the partial payload as complete.
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetLinger(0)
		}
		conn.Close()
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	_, _, err = transact(conn, []byte(`{"Ping":1}`), 512, defaultMaxDataSize, false)
	require.ErrorIs(t, err, ErrTransport)
}

func TestTransactWriteFailure(t *testing.T) {
	addr := startStub(t, func(conn net.Conn) {
		// Read a byte first so the reset lands on an established
		// connection instead of racing the client's dial.
		buf := make([]byte, 1)
		conn.Read(buf)
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetLinger(0)
		}
		conn.Close()
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	// Push more than the socket buffers can absorb so the write itself
	// fails once the reset lands.
	payload := bytes.Repeat([]byte("a"), 8<<20)
	_, _, err = transact(conn, payload, 512, defaultMaxDataSize, false)
	require.ErrorIs(t, err, ErrTransport)
}

func TestDialExhaustsRetryBudget(t *testing.T) {
	// Grab a port nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := connector{attempts: 3, delay: 40 * time.Millisecond}
	start := time.Now()
	_, err = c.dial(context.Background(), addr)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrConnection)
	require.Contains(t, err.Error(), "3 attempts")
	// Two inter-attempt delays, plus scheduling slack.
	require.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)
}

func TestDialHonorsContextBetweenAttempts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := connector{attempts: 10, delay: time.Second}
	_, err = c.dial(ctx, addr)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	require.True(t, portInUse(addr))
	require.NoError(t, ln.Close())
	require.False(t, portInUse(addr))
}
