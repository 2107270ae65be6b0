package query

import (
	"cmp"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// ProviderFunc produces Data for the query responder. The host and port values
// represent the address that the query listener is bound to and should be
// reflected in the returned Data structure.
type ProviderFunc func(host string, port int) Data

// Data summarises the information returned by the query responder. The
// server supplies values without being aware of the exact key/value pairs
// sent over the wire.
type Data struct {
	// HostName is the public server name.
	HostName string
	// WorldName holds the name of the world exposed by the server.
	WorldName string
	// Weather is the observable weather of the world.
	Weather string
	// Engine identifies the software running the server. If empty, "Ember"
	// followed by the module version is used.
	Engine string
	// Version represents the protocol version string advertised to clients.
	Version string
	// PlayerCount reports the amount of online clients.
	PlayerCount int
	// MaxPlayers is the configured client capacity, or 0 if unlimited.
	MaxPlayers int
	// HostIP is the textual representation of the listening IP address.
	HostIP string
	// HostPort is the listening port number.
	HostPort int
	// PlayerNames lists the names of online clients in sorted order.
	PlayerNames []string
	// GameType describes the type of game. Defaults to "SMP" when empty.
	GameType string
	// GameID is the identifier of the title shown to clients. Defaults to
	// "MINECRAFT" when empty.
	GameID string
	// WhitelistEnabled indicates whether the server whitelist is enabled.
	WhitelistEnabled bool
}

type keyValue struct {
	key, value string
}

// engineLabel names the engine along with the module version it was built
// from, if known.
var engineLabel = sync.OnceValue(func() string {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	return "Ember (" + version + ")"
})

func canonicalHost(host string) string {
	return cmp.Or(host, "0.0.0.0")
}

// applyDefaults fills the fields of d that must never be empty on the wire.
func (d *Data) applyDefaults() {
	d.HostName = cmp.Or(d.HostName, "Ember Server")
	d.HostIP = canonicalHost(d.HostIP)
	d.Engine = cmp.Or(d.Engine, engineLabel())
	d.Version = cmp.Or(d.Version, protocol.CurrentVersion)
	d.GameType = cmp.Or(d.GameType, "SMP")
	d.GameID = cmp.Or(d.GameID, "MINECRAFT")
	d.HostPort = int(uint16(d.HostPort))
}

// keyValues returns the statistics of d in the order they are written.
// Optional keys are left out when empty.
func (d Data) keyValues() []keyValue {
	values := make([]keyValue, 0, 14)
	add := func(key, value string, optional bool) {
		if !optional || value != "" {
			values = append(values, keyValue{key, value})
		}
	}
	whitelist := "off"
	if d.WhitelistEnabled {
		whitelist = "on"
	}
	add("hostname", d.HostName, false)
	add("gametype", d.GameType, false)
	add("game_id", d.GameID, false)
	add("version", d.Version, false)
	add("server_engine", d.Engine, false)
	add("map", d.WorldName, true)
	add("numplayers", strconv.Itoa(d.PlayerCount), false)
	add("maxplayers", strconv.Itoa(d.MaxPlayers), false)
	add("whitelist", whitelist, false)
	add("hostport", strconv.Itoa(d.HostPort), false)
	add("hostip", d.HostIP, false)
	add("weather", d.Weather, true)
	add("plugins", "", false)
	add("players", strings.Join(d.PlayerNames, ", "), true)
	return values
}
