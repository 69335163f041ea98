// Package collector is a fake Traffic Inspector server used by
// integration tests. The real
// collector is an external collaborator (spec §1); this is not it —
// it exists only to observe what the interceptor would have sent.
package collector

import (
	"io"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
)

// BodyReceipt records one accepted body POST.
type BodyReceipt struct {
	Headers map[string][]string
	Body    []byte
}

// MetaReceipt records one accepted meta POST.
type MetaReceipt struct {
	Headers map[string][]string
	Body    []byte
}

// Server is a fake collector exposing the two Traffic Inspector
// endpoints. It records every accepted delivery for assertions.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	bodies []BodyReceipt
	metas  []MetaReceipt

	// PathSendBody/PathSendMeta mirror the routes the fake server
	// answers on, so callers can build Options.TrafficInspector from
	// a single Server value.
	PathSendBody string
	PathSendMeta string
}

// New starts a fake collector listening on pathSendBody/pathSendMeta.
func New(pathSendBody, pathSendMeta string) *Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	s := &Server{PathSendBody: pathSendBody, PathSendMeta: pathSendMeta}

	router.POST(pathSendBody, func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, BodyReceipt{Headers: map[string][]string(c.Request.Header), Body: body})
		s.mu.Unlock()
		c.Status(200)
	})

	router.POST(pathSendMeta, func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		s.mu.Lock()
		s.metas = append(s.metas, MetaReceipt{Headers: map[string][]string(c.Request.Header), Body: body})
		s.mu.Unlock()
		c.Status(200)
	})

	s.Server = httptest.NewServer(router)
	return s
}

// Bodies returns a snapshot of accepted body POSTs.
func (s *Server) Bodies() []BodyReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BodyReceipt, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Metas returns a snapshot of accepted meta POSTs.
func (s *Server) Metas() []MetaReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MetaReceipt, len(s.metas))
	copy(out, s.metas)
	return out
}

// Reset clears recorded deliveries, without restarting the server.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = nil
	s.metas = nil
}
