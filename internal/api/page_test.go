package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageHandler(t *testing.T) {
	e := newEnv(t, nil, Options{})
	h := PageHandler(e.d, PageOptions{Title: "Pagsusi", APIBase: "/api", StyleURL: "https://tiles.test/style.json"})

	testCases := []struct {
		name         string
		target       string
		wantStatus   int
		wantPrecinct string
	}{
		{"plain", "/", http.StatusOK, `precinct:\s*0\b`},
		{"deep link", "/?precinct=3", http.StatusOK, `precinct:\s*3\b`},
		{"unknown deep link", "/?precinct=77", http.StatusOK, `precinct:\s*0\b`},
		{"garbage deep link", "/?precinct=x", http.StatusOK, `precinct:\s*0\b`},
		{"other path", "/nope", http.StatusNotFound, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.target, nil))
			require.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantPrecinct == "" {
				return
			}
			body := rr.Body.String()
			assert.Regexp(t, tc.wantPrecinct, body)
			assert.Contains(t, body, "<title>Pagsusi</title>")
			assert.Contains(t, body, "Lahug ES")
			assert.Contains(t, body, "/static/app.js")
		})
	}
}

func TestStaticHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "maplibregl.Map")
}

func TestConfigJS(t *testing.T) {
	rr := httptest.NewRecorder()
	ConfigJS("/api").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/config.js", nil))
	b, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(b), `window.__API_BASE__="/api"`)
	assert.Equal(t, "application/javascript; charset=utf-8", rr.Header().Get("content-type"))
}
