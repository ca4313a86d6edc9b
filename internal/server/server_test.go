package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/seolint/internal/config"
	"github.com/GriffinCanCode/seolint/internal/fetch"
	"github.com/GriffinCanCode/seolint/internal/monitoring"
	"github.com/GriffinCanCode/seolint/internal/ruleset"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanPage = `<html><head><title>t</title>
<meta name="description" content="d"><meta name="keywords" content="k">
</head><body><h1>one</h1><img src="a.png" alt="a"><a href="/" rel="home">home</a></body></html>`

const dirtyPage = `<html><head></head><body><h1>a</h1><h1>b</h1><img src="a.png"></body></html>`

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s, err := New(testConfig(), ruleset.Default(), opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeAudit(t *testing.T, w *httptest.ResponseRecorder) AuditResponse {
	t.Helper()
	var resp AuditResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func findingRules(resp AuditResponse) []string {
	names := make([]string, 0, len(resp.Report.Findings))
	for _, f := range resp.Report.Findings {
		names = append(names, f.Rule)
	}
	return names
}

func TestNewRejectsInvalidRules(t *testing.T) {
	_, err := New(testConfig(), &ruleset.Set{Rules: []ruleset.Definition{{Name: "x", Kind: "bogus", Tag: "a"}}})
	assert.ErrorIs(t, err, ruleset.ErrUnknownKind)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(7), body["rules"])
}

func TestListRules(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rules []ruleset.Definition `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ruleset.Default().Rules, body.Rules)
}

func TestAuditInline(t *testing.T) {
	s := newTestServer(t)

	t.Run("defects", func(t *testing.T) {
		w := do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{HTML: dirtyPage})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeAudit(t, w)
		assert.Equal(t, "defects", resp.Status)
		assert.Equal(t, "inline", resp.Report.Source)
		assert.NotEmpty(t, resp.Report.ID)
		assert.Equal(t, []string{"img-alt", "head-title", "meta-description", "meta-keywords", "h1-limit"}, findingRules(resp))
	})

	t.Run("clean", func(t *testing.T) {
		w := do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{HTML: cleanPage})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeAudit(t, w)
		assert.Equal(t, "clean", resp.Status)
		assert.Empty(t, resp.Report.Findings)
	})

	t.Run("blank rule names run all", func(t *testing.T) {
		w := do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{HTML: dirtyPage, Rules: []string{""}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeAudit(t, w).Report.Findings, 5)
	})

	t.Run("selected rules", func(t *testing.T) {
		w := do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{HTML: dirtyPage, Rules: []string{"h1-limit"}})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeAudit(t, w)
		require.Len(t, resp.Report.Findings, 1)
		assert.Equal(t, "This HTML has more than 1 html h1 tag", resp.Report.Findings[0].Defect)
	})
}

func TestAuditCascadiaEngine(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Engine = "cascadia"
	s, err := New(cfg, nil)
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{HTML: dirtyPage})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"img-alt", "head-title", "meta-description", "meta-keywords", "h1-limit"}, findingRules(decodeAudit(t, w)))

	cfg.Audit.Engine = "xpath"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestAuditBadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "neither", body: AuditRequest{}, status: http.StatusBadRequest},
		{name: "both", body: AuditRequest{HTML: cleanPage, URL: "http://example.com"}, status: http.StatusBadRequest},
		{name: "bad scheme", body: AuditRequest{URL: "ftp://example.com"}, status: http.StatusBadRequest},
		{name: "unknown rule", body: AuditRequest{HTML: cleanPage, Rules: []string{"nope"}}, status: http.StatusBadRequest},
		{name: "not json", body: "just a string", status: http.StatusBadRequest},
		{name: "url without fetcher", body: AuditRequest{URL: "http://example.com"}, status: http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s.Handler(), http.MethodPost, "/audit", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestAuditURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clean":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(cleanPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	opts := fetch.DefaultOptions()
	opts.Retries = 0
	s := newTestServer(t, WithFetcher(fetch.NewClient(opts)))

	w := do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{URL: upstream.URL + "/clean"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeAudit(t, w)
	assert.Equal(t, "clean", resp.Status)
	assert.Equal(t, upstream.URL+"/clean", resp.Report.Source)

	w = do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{URL: upstream.URL + "/missing"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "404")
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/audit", nil)
	// The origin must differ from the request host or cors treats it as same-origin
	req.Header.Set("Origin", "https://client.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1}
	s, err := New(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s.Handler(), http.MethodGet, "/health", nil).Code)
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery(newTestServer(t).logger))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(t, router, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := monitoring.NewMetrics()
	s := newTestServer(t, WithMetrics(metrics))

	do(t, s.Handler(), http.MethodPost, "/audit", AuditRequest{HTML: dirtyPage})

	w := do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `seolint_audits_total{status="defects"} 1`)
	assert.Contains(t, w.Body.String(), `seolint_defects_total{rule="h1-limit"} 1`)
	assert.Equal(t, int64(1), metrics.Snapshot().Audits)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
