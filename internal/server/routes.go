package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/canvasproto/internal/observability"
	"github.com/danmuck/canvasproto/internal/registry"
	"github.com/danmuck/canvasproto/internal/wire"
)

const unknownTypeLabel = "unknown"

func (s *Server) registerRoutes() {
	observability.RegisterMetrics()

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"uptime":      time.Since(s.started).Round(time.Second).String(),
			"service":     serviceName,
			"placeholder": s.registry.IsPlaceholder(),
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.GET("/types", s.listTypes)
	api.POST("/encode/:type", s.encode)
	api.POST("/decode/:type", s.decode)

	if s.static != "" {
		s.router.Static("/static", s.static)
	}
}

func (s *Server) listTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"types":       s.registry.Types(),
		"placeholder": s.registry.IsPlaceholder(),
	})
}

// encode builds the named message from a JSON field object and answers with
// its wire bytes.
func (s *Server) encode(c *gin.Context) {
	name := c.Param("type")
	label := s.typeLabel(name)
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	dec.UseNumber()
	data := map[string]any{}
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		observability.RecordCodecOp(label, "encode", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object: " + err.Error()})
		return
	}

	msg, err := s.registry.Create(name, data)
	if err == nil {
		var b []byte
		if b, err = s.registry.Encode(msg); err == nil {
			observability.RecordCodecOp(label, "encode", nil)
			c.Data(http.StatusOK, "application/octet-stream", b)
			return
		}
	}
	observability.RecordCodecOp(label, "encode", err)
	s.fail(c, err)
}

// decode reads raw wire bytes and answers with the decoded fields.
func (s *Server) decode(c *gin.Context) {
	name := c.Param("type")
	label := s.typeLabel(name)
	b, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		observability.RecordCodecOp(label, "decode", err)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	msg, err := s.registry.Decode(name, b)
	observability.RecordCodecOp(label, "decode", err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":   msg.TypeName(),
		"fields": msg.Fields(),
		"text":   describe(msg),
	})
}

// typeLabel is the metric label for a requested type. Names outside the
// registry share one label so clients cannot mint new series.
func (s *Server) typeLabel(name string) string {
	if _, ok := s.registry.Lookup(name); ok {
		return name
	}
	return unknownTypeLabel
}

func describe(msg registry.Message) string {
	if s, ok := msg.(interface{ String() string }); ok {
		return s.String()
	}
	return msg.TypeName()
}

// fail maps codec errors onto status codes: unknown types are 404, bad field
// data is 400, and undecodable bytes are 422.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var de *wire.DecodeError
	var ee *wire.EncodeError
	switch {
	case errors.Is(err, registry.ErrUnknownType):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrContract), errors.As(err, &ee):
		status = http.StatusBadRequest
	case errors.As(err, &de):
		status = http.StatusUnprocessableEntity
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
