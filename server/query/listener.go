package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// Config holds the parameters of a query responder.
type Config struct {
	// Log is the Logger used for failed writes and dropped datagrams. If nil,
	// slog.Default() is used.
	Log *slog.Logger
	// Provider supplies the Data sent in response to information requests.
	// If nil, only defaults are sent.
	Provider ProviderFunc
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Provider == nil {
		conf.Provider = func(host string, port int) Data {
			return Data{HostIP: host, HostPort: port}
		}
	}
	return conf
}

// Listener answers query requests on a UDP socket of its own.
type Listener struct {
	conn *packetConn
}

// Listen opens a UDP socket on address and returns a Listener answering
// query requests on it. Serve must be called to start answering.
func (conf Config) Listen(address string) (*Listener, error) {
	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		return nil, fmt.Errorf("listen query: %w", err)
	}
	return &Listener{conn: conf.wrap(conn)}, nil
}

// Addr returns the address the Listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve answers query requests until ctx is cancelled or the Listener is
// closed. Datagrams that are not query requests are dropped. Serve returns
// nil if it was stopped through ctx or Close.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = l.conn.Close() })
	defer stop()

	buf := make([]byte, 1500)
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read query: %w", err)
		}
		l.conn.log.Debug("Dropped datagram that is not a query request.", "raddr", addr.String(), "len", n)
	}
}

// Close closes the socket of the Listener.
func (l *Listener) Close() error {
	return l.conn.Close()
}
