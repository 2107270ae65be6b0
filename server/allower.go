package server

// Allower may be implemented to specify whether a client may join a Server.
type Allower interface {
	// Allow filters what clients can join the Server and which cannot. The
	// name passed is the name the client joins with. If false is returned,
	// the client is refused with the reason returned.
	Allow(name string) (string, bool)
}

// allower is the standard Allower implementation. It accepts all clients.
type allower struct{}

// Allow always returns true.
func (allower) Allow(string) (string, bool) {
	return "", true
}
