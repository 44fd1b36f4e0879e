package websocket

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/rs/xid"

	"github.com/banterhub/banter/domain"
	"github.com/banterhub/banter/logging"
)

// Server upgrades HTTP requests to websocket sessions and wires each one
// into the hub and the dispatcher.
type Server struct {
	hub        domain.Hub
	dispatcher Dispatcher
	logger     *logging.Logger
	options    Options
	upgrader   ws.Upgrader
}

func NewServer(hub domain.Hub, dispatcher Dispatcher, logger *logging.Logger, options Options) *Server {
	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		logger:     logger,
		options:    options,
		upgrader: ws.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  options.ReadBufferSize,
			WriteBufferSize: options.WriteBufferSize,
		},
	}
}

func (s *Server) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	id := xid.New().String()
	connection := NewConnection(id, conn, s.dispatcher, s.logger, s.options)

	if err := s.hub.Register(connection); err != nil {
		s.logger.Error("failed to register client", "client_id", id, "error", err)
		connection.Close()
		return
	}

	s.logger.Info("client connected", "client_id", id, "remote_addr", r.RemoteAddr)

	connection.Start(r.Context())

	// Read pump is gone: tear down chat state first so presence updates
	// reach the remaining clients, then drop the transport client.
	s.dispatcher.HandleDisconnect(id)

	if err := s.hub.Unregister(id); err != nil {
		s.logger.Error("failed to unregister client", "client_id", id, "error", err)
	}

	s.logger.Info("client disconnected", "client_id", id)
}
