// Package query implements the UDP query protocol spoken by Bedrock server
// lists.
//
// A ProviderFunc describes the current state of the server. The query
// package answers handshake and information requests with the data supplied
// by that provider, either on its own UDP socket through Listen or by
// wrapping a net.PacketConn shared with the game transport through Wrap.
package query
