package server

import (
	"context"

	"github.com/dm-vev/ember/server/query"
)

// QueryData assembles the Data answered to query requests. It may be passed
// to a query.Config as Provider, such as when a transport shares its socket
// with the query responder through query.Config.Wrap.
func (srv *Server) QueryData(host string, port int) query.Data {
	wl, ok := srv.Whitelist()
	names := srv.PlayerNames()
	return query.Data{
		HostName:         srv.conf.Name,
		WorldName:        srv.world.Name(),
		Weather:          srv.world.Weather().String(),
		PlayerCount:      len(names),
		PlayerNames:      names,
		HostIP:           host,
		HostPort:         port,
		WhitelistEnabled: ok && wl.Enabled(),
	}
}

// ServeQuery answers query requests on the QueryAddress of the Server until
// ctx is cancelled. It returns nil right away if no QueryAddress was set.
func (srv *Server) ServeQuery(ctx context.Context) error {
	if srv.conf.QueryAddress == "" {
		return nil
	}
	l, err := query.Config{Log: srv.conf.Log.With("subsystem", "query"), Provider: srv.QueryData}.Listen(srv.conf.QueryAddress)
	if err != nil {
		return err
	}
	srv.conf.Log.Info("Answering query requests.", "addr", l.Addr().String())
	return l.Serve(ctx)
}
