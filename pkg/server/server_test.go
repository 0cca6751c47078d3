package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depmerge/pkg/cache"
	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/observability"
	"github.com/matzehuels/depmerge/pkg/pipeline"
	"github.com/matzehuels/depmerge/pkg/store"
)

const manifest = "1 foo[2.0] #0[2.0]\n\t/lib/foo.klib\n"

func newTestServer(t *testing.T, st store.Store, reg *prometheus.Registry) http.Handler {
	t.Helper()
	return New(Config{
		Runner:   pipeline.NewRunner(cache.NewMemoryCache(16, time.Minute), nil, nil),
		Store:    st,
		Registry: reg,
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil, nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())
	assert.Equal(t, "depmerge/dev", rec.Header().Get("Server"))
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	assert.NoError(t, err, "server should assign a uuid request id")

	id := uuid.NewString()
	rec = do(t, h, http.MethodGet, "/healthz", "", HeaderRequestID, id)
	assert.Equal(t, id, rec.Header().Get(HeaderRequestID))

	rec = do(t, h, http.MethodGet, "/healthz", "", HeaderRequestID, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(HeaderRequestID))
}

func TestMerge(t *testing.T) {
	h := newTestServer(t, nil, nil)
	body := `{
		"manifest": "1 foo[2.0] #0[2.0]\n\t/lib/foo.klib\n",
		"libraries": [
			{"name": "foo", "path": "/lib/foo.klib"},
			{"name": "bar", "path": "/lib/bar.klib", "depends": ["foo"]}
		],
		"formats": ["text", "dot"]
	}`

	rec := do(t, h, http.MethodPost, "/v1/merge", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp mergeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Nodes)
	assert.False(t, resp.CacheHit)
	assert.Contains(t, resp.Graph, "1 foo[2.0] #0[2.0] #2[2.0]\n")
	assert.Contains(t, resp.Graph, "2 bar[] #0[]\n")
	assert.Contains(t, resp.Artifacts["dot"], "digraph G")
	assert.Equal(t, resp.Graph, resp.Artifacts["text"])

	rec = do(t, h, http.MethodPost, "/v1/merge", body)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CacheHit)
}

func TestMergeErrors(t *testing.T) {
	h := newTestServer(t, nil, nil)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"unknown field", `{"manifest_path": "/etc/passwd"}`, http.StatusBadRequest},
		{"binary format", `{"formats": ["png"]}`, http.StatusBadRequest},
		{"bad library", `{"libraries": [{"name": "a,b", "path": "/x"}]}`, http.StatusBadRequest},
		{"project without store", `{"project": "app"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/merge", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, rec.Header().Get(HeaderRequestID), resp.RequestID)
		})
	}
}

func TestDecode(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := do(t, h, http.MethodPost, "/v1/decode", manifest)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"foo"`)

	rec = do(t, h, http.MethodPost, "/v1/decode", "1 bad-line-no-brackets")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []pipeline.MalformedLine{{Line: 0, Text: "1 bad-line-no-brackets"}}, resp.Malformed)
}

func TestProjects(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	h := newTestServer(t, st, nil)

	rec := do(t, h, http.MethodGet, "/v1/projects/app/graph", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := `{"project": "app", "manifest": "1 foo[2.0] #0[2.0]\n\t/lib/foo.klib\n"}`
	rec = do(t, h, http.MethodPost, "/v1/merge", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp mergeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RecordID)

	rec = do(t, h, http.MethodGet, "/v1/projects/app/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, manifest, rec.Body.String())
	assert.Equal(t, resp.RecordID, rec.Header().Get("X-Record-ID"))
}

func TestMergeRejectsBadProjectBeforeMerging(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	h := newTestServer(t, st, nil)

	rec := do(t, h, http.MethodPost, "/v1/merge", `{"project": "../app", "manifest": "1 foo[2.0] #0[2.0]\n"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/v1/merge", `{"manifest": "1 foo[2.0] #0[2.0]\n"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp mergeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.CacheHit, "rejected request must not have run the merge")
}

func TestMergeToolchainDefaultsPerField(t *testing.T) {
	h := New(Config{
		Runner:    pipeline.NewRunner(cache.NewMemoryCache(16, time.Minute), nil, nil),
		Toolchain: library.Toolchain{Home: "/opt/tc", Version: "2.1.0"},
	}).Handler()

	body := `{
		"libraries": [{"name": "util", "path": "/opt/tc/klib/util.klib"}],
		"toolchain": {"version": "9.9"}
	}`
	rec := do(t, h, http.MethodPost, "/v1/merge", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp mergeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Graph, "util[9.9]")

	rec = do(t, h, http.MethodPost, "/v1/merge", `{"libraries": [{"name": "util", "path": "/opt/tc/klib/util.klib"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Graph, "util[2.1.0]")
}

func TestWithServerToolchain(t *testing.T) {
	def := library.Toolchain{Home: "/opt/tc", Version: "2.1.0", BundledDir: "lib"}

	assert.Equal(t, def, withServerToolchain(library.Toolchain{}, def))
	assert.Equal(t,
		library.Toolchain{Home: "/srv/tc", Version: "2.1.0", BundledDir: "lib"},
		withServerToolchain(library.Toolchain{Home: "/srv/tc"}, def))
	assert.Equal(t,
		library.Toolchain{Home: "/opt/tc", Version: "9.9", BundledDir: "lib"},
		withServerToolchain(library.Toolchain{Version: "9.9"}, def))
}

func TestMetrics(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetHTTPHooks(hooks)

	h := newTestServer(t, nil, reg)
	do(t, h, http.MethodGet, "/healthz", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
	assert.Equal(t, http.StatusNotFound, statusFor("NOT_FOUND"))
	assert.Equal(t, http.StatusBadRequest, statusFor("INVALID_MANIFEST"))
}
