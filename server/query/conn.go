package query

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"maps"
	"math/rand/v2"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	queryTypeHandshake   = 0x09
	queryTypeInformation = 0x00

	// tokenLifetime is how long a challenge token handed out in a handshake
	// stays valid.
	tokenLifetime = 30 * time.Second
	// tokenFieldSize is the size of the token field of a handshake response.
	tokenFieldSize = 12
)

var (
	querySplitNum  = [...]byte{'S', 'P', 'L', 'I', 'T', 'N', 'U', 'M', 0x00}
	queryPlayerKey = [...]byte{0x00, 0x01, 'p', 'l', 'a', 'y', 'e', 'r', '_', 0x00, 0x00}
	queryVersion   = [...]byte{0xfe, 0xfd}

	fullStatPadding = [...]byte{0xff, 0xff, 0xff, 0x01}
)

// packetConn intercepts query requests and responds directly while delegating
// all other traffic to the wrapped PacketConn.
type packetConn struct {
	net.PacketConn

	log      *slog.Logger
	provider ProviderFunc
	host     string
	port     int

	mu     sync.Mutex
	tokens map[string]token
	rng    *rand.Rand
}

type token struct {
	value  int32
	expiry time.Time
}

// Wrap returns a net.PacketConn that answers query requests arriving on conn
// and passes all other datagrams through to its ReadFrom callers.
func (conf Config) Wrap(conn net.PacketConn) net.PacketConn {
	return conf.wrap(conn)
}

func (conf Config) wrap(conn net.PacketConn) *packetConn {
	conf = conf.withDefaults()
	host, port := "", 0
	if local, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		port = local.Port
		if local.IP != nil && !local.IP.IsUnspecified() {
			host = local.IP.String()
		}
	}
	t := uint64(time.Now().UnixNano())
	return &packetConn{
		PacketConn: conn,
		log:        conf.Log,
		provider:   conf.Provider,
		host:       canonicalHost(host),
		port:       port,
		tokens:     make(map[string]token),
		rng:        rand.New(rand.NewPCG(t, t>>1)),
	}
}

// ReadFrom inspects incoming datagrams and filters out query packets so that
// they can be processed independently.
func (c *packetConn) ReadFrom(p []byte) (int, net.Addr, error) {
	for {
		n, addr, err := c.PacketConn.ReadFrom(p)
		if err != nil || n == 0 {
			return n, addr, err
		}
		if c.handleQuery(p[:n], addr) {
			continue
		}
		return n, addr, nil
	}
}

// handleQuery answers b if it is a query request and reports if it was one.
// Information requests without a valid challenge token are dropped silently.
func (c *packetConn) handleQuery(b []byte, addr net.Addr) bool {
	if len(b) < 7 || !bytes.HasPrefix(b, queryVersion[:]) {
		return false
	}
	sequence := binary.BigEndian.Uint32(b[3:7])
	var resp []byte
	switch b[2] {
	case queryTypeHandshake:
		resp = handshakeResponse(sequence, c.newToken(addr.String()))
	case queryTypeInformation:
		value, ok := parseTokenValue(b[7:])
		if !ok || !c.validateToken(addr.String(), value) {
			return true
		}
		data := c.provider(c.host, c.port)
		data.applyDefaults()
		resp = infoResponse(sequence, data)
	default:
		return false
	}
	if _, err := c.PacketConn.WriteTo(resp, addr); err != nil {
		c.log.Debug("Query response write failed.", "err", err, "type", b[2], "raddr", addr.String())
	}
	return true
}

// newToken hands out a challenge token for addr, dropping tokens that expired
// in the meantime.
func (c *packetConn) newToken(addr string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	maps.DeleteFunc(c.tokens, func(_ string, t token) bool { return now.After(t.expiry) })
	t := token{value: c.rng.Int32(), expiry: now.Add(tokenLifetime)}
	c.tokens[addr] = t
	return t.value
}

// validateToken reports if value is the live token of addr. A token that does
// not match is forgotten, so that a new handshake is required.
func (c *packetConn) validateToken(addr string, value int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tokens[addr]
	valid := ok && t.value == value && !time.Now().After(t.expiry)
	if !valid {
		delete(c.tokens, addr)
	}
	return valid
}

// handshakeResponse holds the token as a decimal string in a 12 byte field.
func handshakeResponse(sequence uint32, value int32) []byte {
	resp := make([]byte, 0, 1+4+tokenFieldSize)
	resp = append(resp, queryTypeHandshake)
	resp = binary.BigEndian.AppendUint32(resp, sequence)
	resp = strconv.AppendInt(resp, int64(value), 10)
	return append(resp, make([]byte, 1+4+tokenFieldSize-len(resp))...)
}

// infoResponse renders the full statistics of data: key/value pairs followed
// by the names of the players online.
func infoResponse(sequence uint32, data Data) []byte {
	resp := make([]byte, 0, 256)
	resp = append(resp, queryTypeInformation)
	resp = binary.BigEndian.AppendUint32(resp, sequence)
	resp = append(resp, querySplitNum[:]...)
	resp = append(resp, 0x80, 0x00)
	for _, kv := range data.keyValues() {
		resp = appendString(appendString(resp, kv.key), kv.value)
	}
	resp = append(resp, 0x00)
	resp = append(resp, queryPlayerKey[:]...)
	for _, name := range data.PlayerNames {
		resp = appendString(resp, name)
	}
	return append(resp, 0x00)
}

func appendString(b []byte, s string) []byte {
	return append(append(b, s...), 0x00)
}

// parseTokenValue reads the challenge token of an information request. Clients
// send it either as a decimal string or as a raw big endian int32, optionally
// followed by the full statistics padding.
func parseTokenValue(payload []byte) (int32, bool) {
	digits, _, _ := bytes.Cut(payload, fullStatPadding[:])
	digits = bytes.TrimRight(digits, "\x00")
	if value, err := strconv.ParseInt(string(digits), 10, 32); err == nil && len(digits) > 0 {
		return int32(value), true
	}
	if len(payload) < 4 {
		return 0, false
	}
	return int32(binary.BigEndian.Uint32(payload)), true
}
