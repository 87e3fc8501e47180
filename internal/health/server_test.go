package health

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type fakeChecker struct{ healthy bool }

func (f fakeChecker) Healthy() bool { return f.healthy }

func do(t *testing.T, s *Server, method, path string) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.handle(&ctx)
	return &ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body
}

func newServer(healthy bool) *Server {
	info := Info{GuildID: "1289789596238086194", BotName: func() string { return "LCSRC Utilities" }}
	return NewServer(info, fakeChecker{healthy}, prometheus.NewRegistry())
}

func TestRoot(t *testing.T) {
	t.Parallel()

	ctx := do(t, newServer(true), fasthttp.MethodGet, "/")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assert.Equal(t, map[string]string{
		"status":       "online",
		"bot":          "LCSRC Utilities",
		"guild":        "1289789596238086194",
		"audit_logger": "active",
	}, decode(t, ctx))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ctx := do(t, newServer(true), fasthttp.MethodGet, "/health")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "healthy", decode(t, ctx)["status"])

	ctx = do(t, newServer(false), fasthttp.MethodGet, "/health")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, "unhealthy", decode(t, ctx)["status"])
}

func TestHealth_NoChecker(t *testing.T) {
	t.Parallel()

	s := NewServer(Info{}, nil, nil)
	ctx := do(t, s, fasthttp.MethodGet, "/health")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(t, s, fasthttp.MethodGet, "/metrics")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestNotFoundAndMethod(t *testing.T) {
	t.Parallel()

	s := newServer(true)
	assert.Equal(t, fasthttp.StatusNotFound, do(t, s, fasthttp.MethodGet, "/nope").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, do(t, s, fasthttp.MethodPost, "/health").Response.StatusCode())
}

func TestServeOverListener(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "auditrelay_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	s := NewServer(Info{GuildID: "1"}, fakeChecker{true}, reg)
	ln := fasthttputil.NewInmemoryListener()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	status, body, err := client.Get(nil, "http://relay/metrics")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(body), "auditrelay_test_total 1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	require.NoError(t, <-errCh)
}
