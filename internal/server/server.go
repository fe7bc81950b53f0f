package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/driftvale/tilerealm/server/internal/config"
	"github.com/driftvale/tilerealm/server/internal/database"
	"github.com/driftvale/tilerealm/server/internal/enemy"
	"github.com/driftvale/tilerealm/server/internal/logger"
	"github.com/driftvale/tilerealm/server/internal/maps"
	"github.com/driftvale/tilerealm/server/internal/population"
	"github.com/driftvale/tilerealm/server/internal/session"
)

// defaultStartMapID is where freshly registered players begin.
const defaultStartMapID = "world"

// Server owns the HTTP surface and the world: the event loop, the
// dispatch core, the respawn scheduler, and the auth endpoints.
type Server struct {
	cfg         *config.ServerConfig
	loop        *Loop
	handler     *Handler
	rooms       *RoomRouter
	respawn     *RespawnScheduler
	connLimiter *ConnLimiter
	rateLimiter *LoginRateLimiter
	auth        *AuthAPI
	upgrader    websocket.Upgrader
	httpServer  *http.Server
}

// NewServer wires the full stack together. The database may be shared
// with other consumers; everything else is owned by the server.
func NewServer(cfg *config.ServerConfig, db *database.Database, catalog *enemy.Catalog, mapTable *maps.Table) (*Server, error) {
	loop := NewLoop()
	rooms := NewRoomRouter()
	handler := NewHandler(session.NewRegistry(), population.NewRegistry(), rooms, catalog, mapTable)

	interval := time.Duration(cfg.Respawn.IntervalSeconds) * time.Second
	respawn := NewRespawnScheduler(loop, handler, mapTable, interval, cfg.Respawn.MaxPerTick)

	rateLimiter := NewLoginRateLimiter(cfg.RateLimit)

	startMapID, startX, startY := startPosition(mapTable)
	auth, err := NewAuthAPI(db, cfg.Auth, rateLimiter, startMapID, startX, startY)
	if err != nil {
		return nil, fmt.Errorf("failed to set up auth endpoints: %w", err)
	}

	s := &Server{
		cfg:         cfg,
		loop:        loop,
		handler:     handler,
		rooms:       rooms,
		respawn:     respawn,
		connLimiter: NewConnLimiter(cfg.Connections),
		rateLimiter: rateLimiter,
		auth:        auth,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected: origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote", r.RemoteAddr)
			}
			return allowed
		},
	}
	return s, nil
}

// startPosition picks where new players are placed: the center of the
// default map, or the first map if the default is missing.
func startPosition(mapTable *maps.Table) (string, float64, float64) {
	mapDef, ok := mapTable.Get(defaultStartMapID)
	if !ok {
		ids := mapTable.IDs()
		if len(ids) == 0 {
			return defaultStartMapID, 0, 0
		}
		mapDef, _ = mapTable.Get(ids[0])
	}
	x := float64(mapDef.Width*mapDef.TileSize) / 2
	y := float64(mapDef.Height*mapDef.TileSize) / 2
	return mapDef.ID, x, y
}

// Start runs the world loop, the respawn scheduler, and the HTTP
// listener. It blocks until the listener exits.
func (s *Server) Start(addr string) error {
	go s.loop.Run()
	s.respawn.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.auth.Routes(mux)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	logger.Info("Server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown stops the listener, the scheduler, and the world loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.respawn.Stop()
	s.rateLimiter.Stop()
	s.loop.Stop()
	return err
}

// handleWebSocket upgrades the connection and runs its read loop. One
// goroutine reads, one writes; all state changes go through the world
// loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := getRealIP(r)
	if !s.connLimiter.TryAcquire(ip) {
		logger.Warning("Connection rejected: limit reached",
			"ip", ip,
			"total", s.connLimiter.CurrentTotal())
		http.Error(w, "connection limit reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.connLimiter.Release(ip)
		logger.Warning("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	connID := uuid.NewString()
	client := NewWebSocketClient(conn, s.cfg.WebSocket.MaxMessageSize)
	go client.WritePump()

	s.loop.Enqueue(func() {
		s.rooms.Register(connID, client)
	})
	logger.Debug("Connection opened", "conn", connID, "ip", ip)

	go func() {
		defer func() {
			s.loop.Enqueue(func() {
				s.handler.HandleDisconnect(connID)
			})
			client.Close()
			s.connLimiter.Release(ip)
			logger.Debug("Connection closed", "conn", connID, "ip", ip)
		}()

		for {
			env, err := client.ReadEnvelope()
			if err != nil {
				if errors.Is(err, ErrMalformedFrame) {
					logger.Debug("Malformed frame ignored", "conn", connID)
					continue
				}
				return
			}
			s.loop.Enqueue(func() {
				s.handler.HandleEvent(connID, client, env)
			})
		}
	}()
}
