package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yashubustudio/goenrich/enrichment"
	"yashubustudio/goenrich/enrichment/enrichmenttest"
)

func newTestServer(t *testing.T, session *enrichmenttest.Session) *echo.Echo {
	t.Helper()
	svc, err := enrichment.NewService(enrichmenttest.HumanFixture(), enrichmenttest.Sessions(session), enrichment.Config{}, zap.NewNop())
	require.NoError(t, err)
	e, err := NewServer(svc, zap.NewNop(), "off", time.Minute)
	require.NoError(t, err)
	return e
}

func multipartRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	e := newTestServer(t, nil)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Human" selected>Human</option>`)
	assert.Contains(t, body, `<option value="Fruit fly">Fruit fly</option>`)
}

func TestOrganismsEndpoint(t *testing.T) {
	e := newTestServer(t, nil)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/organisms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []organismResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, len(enrichment.OrganismChoices()))
	assert.Equal(t, organismResponse{Label: "Fruit fly", Organism: "fruitfly"}, got[0])
}

func TestColumnsEndpoint(t *testing.T) {
	e := newTestServer(t, nil)
	rec := serve(e, multipartRequest(t, "/columns", "genes.csv", "id,symbol\n1,BRCA1\n", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got columnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"id", "symbol"}, got.Columns)
	assert.Equal(t, []string{"1", "BRCA1"}, got.Samples)
	assert.Equal(t, "symbol", got.Suggested)

	rec = serve(e, multipartRequest(t, "/columns", "genes.txt", "BRCA1\n", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Columns)

	rec = serve(e, multipartRequest(t, "/columns", "", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeReturnsCSV(t *testing.T) {
	session := &enrichmenttest.Session{Credential: "me@example.org", Accepted: 2, Report: enrichmenttest.ChartFixture()}
	e := newTestServer(t, session)
	req := multipartRequest(t, "/analyze", "genes.csv", "id,Gene Symbol\n1,BRCA1\n2,TP53\n3,bogus123\n", map[string]string{
		"species": "Human",
		"email":   "me@example.org",
	})
	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="GO_Gene Symbol.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "2", rec.Header().Get("X-Resolved-Ids"))
	assert.Equal(t, "1", rec.Header().Get("X-Unresolved-Ids"))
	assert.Equal(t, "symbol", rec.Header().Get("X-Matched-Scope"))
	assert.NotEmpty(t, rec.Header().Get("X-Run-Id"))

	records, err := enrichment.ReadTable(rec.Body)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "GOTERM_BP_DIRECT", records[0].Category)
	assert.Equal(t, "ENSG00000012048,ENSG00000141510", session.Submitted())
}

func TestAnalyzeJSON(t *testing.T) {
	session := &enrichmenttest.Session{Credential: "me@example.org", Accepted: 2, Report: enrichmenttest.ChartFixture()}
	e := newTestServer(t, session)
	req := multipartRequest(t, "/analyze", "genes.txt", "BRCA1\n", map[string]string{"species": "human", "email": "me@example.org"})
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res enrichment.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []enrichment.CanonicalID{"ENSG00000012048"}, res.IDs)
	assert.Len(t, res.Table, 2)
}

func TestAnalyzeOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		session *enrichmenttest.Session
		file    string
		content string
		fields  map[string]string
		status  int
	}{
		{"no file", nil, "", "", map[string]string{"species": "Human", "email": "me@example.org"}, http.StatusBadRequest},
		{"unknown column", nil, "genes.csv", "a,b\n1,2\n", map[string]string{"column": "missing", "species": "Human", "email": "me@example.org"}, http.StatusBadRequest},
		{"empty list", nil, "genes.txt", "\n\n", map[string]string{"species": "Human", "email": "me@example.org"}, http.StatusBadRequest},
		{"no species", nil, "genes.txt", "BRCA1\n", map[string]string{"email": "me@example.org"}, http.StatusBadRequest},
		{"no matches", &enrichmenttest.Session{Credential: "me@example.org", Accepted: 1}, "genes.txt", "bogus\n", map[string]string{"species": "Human", "email": "me@example.org"}, http.StatusUnprocessableEntity},
		{"no email", &enrichmenttest.Session{Credential: "me@example.org", Accepted: 1}, "genes.txt", "BRCA1\n", map[string]string{"species": "Human"}, http.StatusUnauthorized},
		{"wrong email", &enrichmenttest.Session{Credential: "me@example.org", Accepted: 1}, "genes.txt", "BRCA1\n", map[string]string{"species": "Human", "email": "you@example.org"}, http.StatusUnauthorized},
		{"list rejected", &enrichmenttest.Session{Credential: "me@example.org"}, "genes.txt", "BRCA1\n", map[string]string{"species": "Human", "email": "me@example.org"}, http.StatusBadGateway},
		{"report failed", &enrichmenttest.Session{Credential: "me@example.org", Accepted: 1, ReportErr: errors.New("soap fault")}, "genes.txt", "BRCA1\n", map[string]string{"species": "Human", "email": "me@example.org"}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(t, tc.session)
			rec := serve(e, multipartRequest(t, "/analyze", tc.file, tc.content, tc.fields))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.NotContains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
		})
	}
}

func TestOutcomeErrorKeepsCause(t *testing.T) {
	cause := &enrichment.SubmissionError{Step: "getChartReport", Err: errors.New("timeout")}
	err := outcomeError(cause)
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadGateway, he.Code)
	assert.True(t, strings.Contains(he.Message.(string), "getChartReport"))
	assert.ErrorIs(t, he.Internal, cause)
}
