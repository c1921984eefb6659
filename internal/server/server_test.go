package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/idoc-edi/internal/config"
	"github.com/rezonia/idoc-edi/internal/server"
)

const idoc = `<?xml version="1.0" encoding="UTF-8"?>
<IDOC BEGIN="1">
	<E1EDK01 SEGMENT="1"><BELNR>42</BELNR><WAERK>EUR</WAERK></E1EDK01>
	<E1EDKA1 SEGMENT="1"><PARVW>RE</PARVW><PARTN>9</PARTN></E1EDKA1>
	<E1EDKA1 SEGMENT="1"><PARVW>WE</PARVW><PARTN>8</PARTN></E1EDKA1>
	<E1EDP01 SEGMENT="1"><MENGE>2</MENGE><MENEE>PCE</MENEE><IDTNR>M1</IDTNR></E1EDP01>
</IDOC>`

func newTestServer() *server.Server {
	config := &server.Config{
		Address: ":8080",
		Debug:   true,
	}
	return server.NewServer(config)
}

func post(t testing.TB, srv *server.Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/xml")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestConvertStrictEndpoint(t *testing.T) {
	w := post(t, newTestServer(), "/api/v1/convert/strict", idoc)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, server.StatusConverted, response.Status)
	assert.Equal(t, "strict", response.Mode)
	assert.Empty(t, response.Path)
	assert.Equal(t, 1, response.Items)
	assert.True(t, strings.HasPrefix(response.Content, "UNB+UNOC:3+"))
	assert.Contains(t, response.Content, "\nBGM+380:42+9'\n")
	assert.Contains(t, response.Content, "\nNAD+BY+:9::92++'\n")
	require.Len(t, response.Warnings, 1)
	assert.Contains(t, response.Warnings[0], `"WE"`)
	assert.Equal(t, strings.Count(response.Content, "\n")+1, response.Segments)
}

func TestConvertDynamicEndpoint(t *testing.T) {
	w := post(t, newTestServer(), "/api/v1/convert/dynamic", idoc)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "dynamic", response.Mode)
	assert.Equal(t, "E1EDK01*42*EUR~\nE1EDKA1*RE*9~\nE1EDKA1*WE*8~\nE1EDP01*2*PCE*M1~", response.Content)
	assert.Equal(t, 4, response.Segments)
}

func TestConvertEndpoint_ModeQuery(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		query string
		code  int
		mode  string
	}{
		{"", http.StatusOK, "strict"},
		{"?mode=strict", http.StatusOK, "strict"},
		{"?mode=dynamic", http.StatusOK, "dynamic"},
		{"?mode=x12", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := post(t, srv, "/api/v1/convert"+tt.query, idoc)
			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				return
			}
			var response server.ConvertResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.mode, response.Mode)
		})
	}
}

func TestConvertEndpoint_Errors(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"empty body", "/api/v1/convert/strict", "", http.StatusBadRequest},
		{"not xml", "/api/v1/convert/strict", "not xml", http.StatusBadRequest},
		{"malformed xml", "/api/v1/convert/dynamic", "<a attr=>", http.StatusBadRequest},
		{"unrecognized root strict", "/api/v1/convert/strict", "<Invoice><No>1</No></Invoice>", http.StatusUnprocessableEntity},
		{"unrecognized root dynamic", "/api/v1/convert/dynamic", "<Invoice><No>1</No></Invoice>", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, srv, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code)

			var response server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response.Error)
		})
	}
}

func TestConvertEndpoint_Persists(t *testing.T) {
	dir := t.TempDir()
	srv := server.NewServer(&server.Config{OutputDir: dir})

	w := post(t, srv, "/api/v1/convert/strict", idoc)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Path)
	assert.Equal(t, dir, filepath.Dir(response.Path))
	assert.Equal(t, ".edi", filepath.Ext(response.Path))

	data, err := os.ReadFile(response.Path)
	require.NoError(t, err)
	assert.Equal(t, response.Content, string(data))
}

func TestConvertEndpoint_Profile(t *testing.T) {
	profile := config.Default()
	profile.Strict.Currency = "CHF"
	srv := server.NewServer(&server.Config{Profile: profile})

	w := post(t, srv, "/api/v1/convert/strict", idoc)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MOA+77:0,00:CHF'")
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv, "/api/v1/convert/strict", idoc)
	require.Equal(t, http.StatusOK, w.Code)
	var converted server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &converted))

	w = post(t, srv, "/api/v1/validate", converted.Content)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Equal(t, converted.Segments, response.Segments)

	tampered := strings.Replace(converted.Content, "CNT+2:1'", "CNT+2:5'", 1)
	w = post(t, srv, "/api/v1/validate", tampered)
	require.Equal(t, http.StatusOK, w.Code)

	response = server.ValidationResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Valid)
	require.Len(t, response.Errors, 1)
	assert.Contains(t, response.Errors[0], "CNT")
}

func TestValidateEndpoint_ReleasedText(t *testing.T) {
	srv := newTestServer()
	body := strings.Replace(idoc, "<IDTNR>M1</IDTNR>", "<IDTNR>M1</IDTNR><KTEXT>Men's 10+2</KTEXT>", 1)

	w := post(t, srv, "/api/v1/convert/strict", body)
	require.Equal(t, http.StatusOK, w.Code)
	var converted server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &converted))
	assert.Contains(t, converted.Content, "Men?'s 10?+2")

	w = post(t, srv, "/api/v1/validate", converted.Content)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid, response.Errors)
	assert.Equal(t, converted.Segments, response.Segments)
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv, "/api/v1/info", idoc)
	assert.Equal(t, http.StatusOK, w.Code)

	var response server.InfoResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "xml", response.Format)
	assert.Greater(t, response.Size, 0)
	require.NotNil(t, response.Summary)
	assert.Equal(t, "42", response.Summary.DocumentNumber)
	assert.Equal(t, []string{"RE", "WE"}, response.Summary.PartnerRoles)
	assert.Equal(t, []string{"RE"}, response.Summary.MappedRoles)
	assert.Equal(t, 1, response.Summary.LineItems)
}

func TestInfoEndpoint_Errors(t *testing.T) {
	srv := newTestServer()

	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/info", "").Code)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/info", "%PDF-1.7").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(t, srv, "/api/v1/info", `<?xml version="1.0"?><Invoice/>`).Code)
}

// Benchmark tests

func BenchmarkConvertStrict(b *testing.B) {
	srv := newTestServer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		post(b, srv, "/api/v1/convert/strict", idoc)
	}
}

func BenchmarkHealth(b *testing.B) {
	srv := newTestServer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
	}
}
