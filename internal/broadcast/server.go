package broadcast

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/logging"
)

// Server exposes the hub over HTTP: /ws for overlay clients, /health and,
// when a status func is set, /status.
type Server struct {
	addr     string
	hub      *Hub
	upgrader websocket.Upgrader
	status   StatusFunc
	log      logrus.FieldLogger
}

func NewServer(addr string, allowedOrigins []string, hub *Hub, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logging.Discard()
	}

	originChecker := func(r *http.Request) bool {
		if len(allowedOrigins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if allowed == origin {
				return true
			}
		}
		return false
	}

	return &Server{
		addr: addr,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker,
		},
		log: log,
	}
}

// WithStatus serves fn's answer on /status.
func (s *Server) WithStatus(fn StatusFunc) *Server {
	s.status = fn
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	if s.status != nil {
		mux.HandleFunc("/status", statusHandler(s.status))
	}
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		s.log.WithError(err).WithField("origin", r.Header.Get("Origin")).Warn("websocket upgrade rejected")
		return
	}

	client := newClient(s.hub, conn)
	if !s.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Run serves until ctx is cancelled, then shuts the listener down. The hub
// must be running separately.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("http server shutdown error")
		}
	}()

	s.log.WithField("addr", s.addr).Info("overlay feed listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
