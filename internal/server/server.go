// Package server is the development wire console. It serves the generated
// browser client next to an HTTP view of the message registry, so bytes
// produced by either runtime can be checked against the other.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/canvasproto/internal/logging"
	"github.com/danmuck/canvasproto/internal/observability"
	"github.com/danmuck/canvasproto/internal/registry"
)

const serviceName = "wiredump"

// maxBodyBytes bounds encode and decode request bodies.
const maxBodyBytes = 4 << 20

type Server struct {
	registry *registry.Registry
	static   string
	started  time.Time
	router   *gin.Engine
}

// New builds the console over reg. When static is non-empty its files are
// served under /static, which is where the browser client lives.
func New(reg *registry.Registry, static string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		observability.RequestLogger(logging.Logger()),
		observability.RequestMetricsMiddleware(serviceName),
	)
	s := &Server{
		registry: reg,
		static:   static,
		started:  time.Now(),
		router:   router,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving addr.
func (s *Server) ListenAndServe(addr string) error {
	logging.Infof("server: wire console listening addr=%s types=%d placeholder=%t", addr, len(s.registry.Types()), s.registry.IsPlaceholder())
	return s.router.Run(addr)
}
