// Package health serves the liveness endpoints hosting platforms poll and
// the prometheus scrape endpoint.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"go-audit-relay/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Checker reports whether the relay's components are alive.
type Checker interface {
	Healthy() bool
}

type Info struct {
	GuildID string
	// BotName returns the connected bot's username, or "" before ready.
	BotName func() string
}

type Server struct {
	info    Info
	checker Checker
	metrics fasthttp.RequestHandler
	srv     *fasthttp.Server
}

func NewServer(info Info, checker Checker, gatherer prometheus.Gatherer) *Server {
	s := &Server{info: info, checker: checker}
	if gatherer != nil {
		s.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.srv = &fasthttp.Server{
		Handler:               s.handle,
		Name:                  "auditrelay",
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		IdleTimeout:           30 * time.Second,
		NoDefaultServerHeader: true,
	}
	return s
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() && !ctx.IsHead() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	switch string(ctx.Path()) {
	case "/":
		botName := ""
		if s.info.BotName != nil {
			botName = s.info.BotName()
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{
			"status":       "online",
			"bot":          botName,
			"guild":        s.info.GuildID,
			"audit_logger": "active",
		})
	case "/health":
		if s.checker != nil && !s.checker.Healthy() {
			writeJSON(ctx, fasthttp.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "healthy"})
	case "/metrics":
		if s.metrics == nil {
			ctx.NotFound()
			return
		}
		s.metrics(ctx)
	default:
		ctx.NotFound()
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	logging.Info("Health server listening on %s", ln.Addr())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}
