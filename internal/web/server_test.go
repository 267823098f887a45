// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscan/internal/core"
	"labscan/internal/formatters/fhir"
	"labscan/internal/formatters/shared"
	"labscan/internal/knowledge"
	"labscan/internal/preprocessors"
)

type stubRecognizer string

func (s stubRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	return string(s), nil
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	manager := preprocessors.NewDefaultManager(preprocessors.Options{
		Recognizer: stubRecognizer("Hemoglobin 9.5 g/dL\nPlatelet 250000 /µL"),
	})
	analyzer := core.NewAnalyzer(knowledge.Default(), core.WithPreprocessorManager(manager))
	opts.TempDir = t.TempDir()
	return NewServer(analyzer, zerolog.Nop(), opts)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) shared.JSONReport {
	t.Helper()
	var resp shared.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	return resp.Reports[0]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "labscan", body["service"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAnalyze_JSONBody(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, jsonRequest("/api/analyze", `{"text":"TSH 2.1 mIU/L\r\nSodium 95 mEq/L","source":"portal"}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))

	r := decodeReport(t, rec)
	assert.Equal(t, "portal", r.Source)
	require.Len(t, r.Values, 2)
	assert.Equal(t, "tsh", r.Values[0].Key)
	assert.Equal(t, 1, r.Values[0].Line)
	assert.Equal(t, "sodium", r.Values[1].Key)
	assert.Equal(t, 2, r.Values[1].Line)
	assert.Equal(t, "critical", r.Values[1].Status)
	assert.NotEmpty(t, r.Terms)
}

func TestAnalyze_StatusFilter(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, jsonRequest("/api/analyze?status=critical&show_terms=false", `{"text":"TSH 2.1\nSodium 95"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	r := decodeReport(t, rec)
	assert.Equal(t, "request", r.Source)
	require.Len(t, r.Values, 1)
	assert.Equal(t, "sodium", r.Values[0].Key)
	assert.Empty(t, r.Terms)
}

func TestAnalyze_FHIR(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, jsonRequest("/api/analyze?format=fhir&download=true", `{"text":"Potassium 3.0"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/fhir+json", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "labscan-report.fhir.json")

	var bundle fhir.Bundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))
	assert.Equal(t, "collection", bundle.Type)
	assert.Len(t, bundle.Entry, 2)
}

func TestAnalyze_BadRequests(t *testing.T) {
	s := newTestServer(t, Options{})

	cases := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"unknown format", jsonRequest("/api/analyze?format=pdf", `{"text":"tsh 2"}`), http.StatusBadRequest},
		{"unknown status", jsonRequest("/api/analyze?status=urgent", `{"text":"tsh 2"}`), http.StatusBadRequest},
		{"empty text", jsonRequest("/api/analyze", `{"text":"  \n "}`), http.StatusBadRequest},
		{"malformed json", jsonRequest("/api/analyze", `{"text":`), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, tc.req)
			assert.Equal(t, tc.code, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestAnalyze_UploadText(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, uploadRequest(t, "/api/analyze", "results.txt", []byte("Creatinine 2.0 mg/dL\n")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r := decodeReport(t, rec)
	assert.Equal(t, "results.txt", r.Source)
	require.Len(t, r.Values, 1)
	assert.Equal(t, "creatinine", r.Values[0].Key)
	assert.Equal(t, "critical", r.Values[0].Status)
}

func TestAnalyze_UploadImage(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, uploadRequest(t, "/api/analyze?verbose=true", "scan.PNG", []byte("x")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r := decodeReport(t, rec)
	require.Len(t, r.Values, 2)
	assert.Equal(t, "hemoglobin", r.Values[0].Key)
	assert.Equal(t, "warning", r.Values[0].Status)
	assert.Equal(t, "platelet", r.Values[1].Key)
	assert.Equal(t, "png", r.Metadata["format"])
}

func TestAnalyze_UploadErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, uploadRequest(t, "/api/analyze", "program.exe", []byte("MZ")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = do(s, uploadRequest(t, "/api/analyze", "blank.txt", []byte(" \n\t")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "No text could be extracted")
}

func TestAnalyze_BodyLimit(t *testing.T) {
	s := newTestServer(t, Options{BodyLimit: "1K"})
	text := strings.Repeat("TSH 2.1\n", 200)
	rec := do(s, jsonRequest("/api/analyze", `{"text":"`+strings.ReplaceAll(text, "\n", `\n`)+`"}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReference(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/reference", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body ReferenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Terms, 29)
	assert.Len(t, body.Ranges, 29)
	assert.Equal(t, "hemoglobin", body.Ranges[0].Key)
}

func TestFormats(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/formats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{"csv", "fhir", "json", "text", "yaml"} {
		assert.Contains(t, rec.Body.String(), `"name":"`+name+`"`)
	}
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t, Options{})
	s.echo.GET("/boom", func(c echo.Context) error { panic("boom") })

	rec := do(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "pdf", getFileExtension("report.PDF"))
	assert.Equal(t, "tmp", getFileExtension("noext"))
	assert.Equal(t, "tmp", getFileExtension("evil.p/h"))
}

func TestSanitizeUserInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script.txt", sanitizeUserInput("<script>alert(1)</script>.txt", 100))
	assert.Equal(t, "abc...", sanitizeUserInput("abcdef", 3))
}
