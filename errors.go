package optiman

import "errors"

// Error categories returned by the client. Wrapped errors carry detail;
// match with errors.Is.
var (
	// ErrConfig indicates a missing or malformed optimizer descriptor, or
	// an ambiguous construction (both or neither of launch path and remote
	// endpoint).
	ErrConfig = errors.New("invalid optimizer configuration")

	// ErrPortUnavailable indicates the target port was already accepting
	// connections when Start was called. Fatal: another instance may be
	// occupying the port.
	ErrPortUnavailable = errors.New("port unavailable")

	// ErrConnection indicates the connect retry budget was exhausted.
	ErrConnection = errors.New("cannot connect to optimizer server")

	// ErrTransport indicates a socket failure mid-transaction.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol indicates the response did not parse as a JSON document,
	// including responses truncated at the read round cap.
	ErrProtocol = errors.New("malformed server response")

	// ErrUsage indicates an operation invoked in a state that forbids it,
	// such as Start on a remote-only client.
	ErrUsage = errors.New("invalid usage")
)
