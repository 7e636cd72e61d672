package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
	"github.com/sitemetrics/sitemetrics-go/internal/provider"
	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "broken" }

func (failingProvider) Load(context.Context) (*project.Portfolio, error) {
	return nil, errors.New("disk on fire")
}

func newTestServer(t *testing.T, p provider.Provider) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultConfig().Sitemetrics.Server
	cfg.DevMode = true
	builder := report.NewBuilder(metrics.NewCalculator(metrics.DefaultConfig()), nil)
	return New(p, builder, cfg, nil)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestGetStatus(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	decode(t, w, &resp)
	assert.Equal(t, "sample", resp.Source)
	assert.Equal(t, 5, resp.ProjectCount)
	assert.True(t, resp.OverallScore.Valid)
	assert.Equal(t, metrics.BandFor(resp.OverallScore.Value), resp.Band)
	assert.Equal(t, 1, resp.Warnings)
	assert.Equal(t, 0, resp.Errors)
}

func TestListProjects(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"2024-017", "2024-022", "2025-003", "2023-041", "2024-030"}},
		{"by code", "?sort=code", []string{"2023-041", "2024-017", "2024-022", "2024-030", "2025-003"}},
		{"stage", "?stage=preconstruction", []string{"2025-003"}},
		{"impossible score", "?min_score=101", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, "/api/projects"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Total    int `json:"total"`
				Projects []struct {
					Code string `json:"code"`
				} `json:"projects"`
			}
			decode(t, w, &resp)

			got := []string{}
			for _, p := range resp.Projects {
				got = append(got, p.Code)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), resp.Total)
		})
	}
}

func TestListProjectsSortedByScore(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/projects?sort=score")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Projects []struct {
			OverallScore int `json:"overallScore"`
		} `json:"projects"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Projects, 5)
	for i := 1; i < len(resp.Projects); i++ {
		assert.GreaterOrEqual(t, resp.Projects[i-1].OverallScore, resp.Projects[i].OverallScore)
	}
}

func TestListProjectsBadQuery(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	for _, query := range []string{"?sort=budget", "?min_score=high", "?band=great", "?delayed=maybe"} {
		w := get(t, s, "/api/projects"+query)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)

		var resp map[string]string
		decode(t, w, &resp)
		assert.NotEmpty(t, resp["error"], query)
	}
}

func TestGetProject(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/projects/2024-017")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Project project.Record `json:"project"`
		Report  struct {
			Code      string `json:"code"`
			DelayDays int    `json:"delayDays"`
			Delayed   bool   `json:"delayed"`
			SlipDays  int    `json:"slipDays"`
		} `json:"report"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "Riverside Medical Office Building", resp.Project.Name)
	assert.Equal(t, "2024-017", resp.Report.Code)
	assert.Equal(t, 65, resp.Report.DelayDays)
	assert.True(t, resp.Report.Delayed)
	assert.Equal(t, 65, resp.Report.SlipDays)
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/projects/9999-000")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "9999-000")
}

func TestGetPortfolio(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/portfolio")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ProjectCount       int            `json:"projectCount"`
		BandCounts         map[string]int `json:"bandCounts"`
		VarianceByCategory map[string]any `json:"varianceByCategory"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 5, resp.ProjectCount)

	total := 0
	for _, n := range resp.BandCounts {
		total += n
	}
	assert.Equal(t, 5, total)
	assert.Len(t, resp.VarianceByCategory, len(metrics.AllCategories()))
}

func TestGetDiagnostics(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/diagnostics")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Warnings    int             `json:"warnings"`
		Diagnostics []project.Issue `json:"diagnostics"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 1, resp.Warnings)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "2024-030", resp.Diagnostics[0].Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/export.csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 6)
	assert.Equal(t, "code", rows[0][0])
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/export.xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetPortfolio)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestExportFailureSendsNoAttachment(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	r := gin.New()
	r.GET("/export.pdf", s.export(report.Format("pdf")))
	req := httptest.NewRequest(http.MethodGet, "/export.pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "failed to build export")
}

func TestPortfolioStages(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/portfolio")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DelayedCount int `json:"delayedCount"`
		Stages       []struct {
			Stage    string `json:"stage"`
			Projects int    `json:"projects"`
		} `json:"stages"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 3, resp.DelayedCount)
	require.Len(t, resp.Stages, 3)
	assert.Equal(t, "Closeout", resp.Stages[0].Stage)
	assert.Equal(t, 3, resp.Stages[1].Projects)
}

func TestProviderFailure(t *testing.T) {
	s := newTestServer(t, failingProvider{})

	for _, path := range []string{"/api/status", "/api/projects", "/api/projects/x", "/api/portfolio", "/api/export.csv"} {
		w := get(t, s, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.NotContains(t, w.Body.String(), "disk on fire", path)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, provider.NewSampleProvider())

	w := get(t, s, "/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
