package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/application/geomap"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	interfacehttp "github.com/turtacn/RD-Observatory/internal/interfaces/http"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

type stubProvider struct {
	ds *observation.Dataset
}

func (p stubProvider) Current() (*observation.Dataset, error) {
	if p.ds == nil {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "no dataset loaded")
	}
	return p.ds, nil
}

func testDataset(t *testing.T) *observation.Dataset {
	t.Helper()
	obs := []observation.Observation{
		{EntityCode: "ES", Year: 2023, Sector: observation.SectorTotal, Value: 15000, HasValue: true},
		{EntityCode: "DE", Year: 2023, Sector: observation.SectorTotal, Value: 50000, HasValue: true},
		{EntityCode: "EU27_2020", Year: 2023, Sector: observation.SectorTotal, Value: 270000, HasValue: true},
		{EntityCode: "ES", Year: 2022, Sector: observation.SectorTotal, Value: 12000, HasValue: true},
	}
	return observation.NewDataset("v-test", "test", obs, nil)
}

func newTestRouter(t *testing.T, ds *observation.Dataset) *gin.Engine {
	t.Helper()

	cfg := config.DashboardConfig{
		HomeEntityCode:     "ES",
		UnionAggregateCode: "EU27_2020",
		MaxChartEntities:   25,
		DefaultLanguage:    "es",
	}
	provider := stubProvider{ds: ds}
	resolver := geo.NewResolver(nil)
	pipeline := dashboard.NewService(provider, resolver, nil, cfg, nil, nil)

	return interfacehttp.NewRouter(config.ServerConfig{Mode: "test"}, interfacehttp.RouterDeps{
		Pipeline:  pipeline,
		Geomap:    geomap.NewService(pipeline, resolver, nil),
		Provider:  provider,
		Dashboard: cfg,
	})
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRankingEndpoint(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodGet, "/api/v1/dashboard/ranking?year=2023", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result dashboard.RankingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	require.Len(t, result.Items, 3)
	assert.Equal(t, "DE", result.Items[0].Code, "highest value ranks first")
	assert.Equal(t, 1, result.Items[0].Rank)
	assert.Equal(t, 2, result.TotalRanked, "the aggregate is not ranked")
	assert.Equal(t, "v-test", result.DatasetVersion)
}

func TestRankingEndpoint_ParameterValidation(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	cases := []struct {
		name   string
		target string
		code   string
	}{
		{"missing year", "/api/v1/dashboard/ranking", "GEO_002"},
		{"bad year", "/api/v1/dashboard/ranking?year=twenty", "GEO_002"},
		{"unknown sector", "/api/v1/dashboard/ranking?year=2023&sector=MILITARY", "GEO_001"},
		{"bad language", "/api/v1/dashboard/ranking?year=2023&lang=fr", "GEO_003"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, tc.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestRankingEndpoint_NoDataset(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/dashboard/ranking?year=2023", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DATA_001", body["code"])
}

func TestStatisticsEndpoint(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodGet, "/api/v1/dashboard/statistics?year=2023", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 15000.0, body["min"])
	assert.Equal(t, 50000.0, body["max"])
}

func TestTooltipEndpoint(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodGet, "/api/v1/dashboard/tooltip/DE?year=2023", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tip dashboard.Tooltip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tip))
	assert.Equal(t, "Alemania", tip.DisplayName, "default language is Spanish")
	assert.True(t, tip.HasValue)
	assert.Equal(t, "1º de 2", tip.RankText)

	// Unknown codes are a normal map state, never an error.
	rec = doRequest(router, http.MethodGet, "/api/v1/dashboard/tooltip/XX?year=2023", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tip))
	assert.False(t, tip.HasValue)
}

func TestMetaEndpoints(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodGet, "/api/v1/meta/years", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var years struct {
		Years []int `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &years))
	assert.Equal(t, []int{2022, 2023}, years.Years)

	rec = doRequest(router, http.MethodGet, "/api/v1/meta/sectors?lang=en", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sectors struct {
		Sectors []dashboard.SectorOption `json:"sectors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sectors))
	require.Len(t, sectors.Sectors, 5)
	assert.Equal(t, observation.SectorTotal, sectors.Sectors[0].Code)
	assert.Equal(t, "All sectors", sectors.Sectors[0].Label)
}

func TestMapColorsEndpoint(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodGet, "/api/v1/map/colors?year=2023", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var idx geomap.ColorIndex
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idx))
	assert.Len(t, idx.Entries, 3)
}

func TestFeatureColorEndpoint(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodPost, "/api/v1/map/feature-color?year=2023",
		`{"properties":{"ISO_A3":"DEU"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Color string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Color, "#"))

	rec = doRequest(router, http.MethodPost, "/api/v1/map/feature-color?year=2023", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	ready := newTestRouter(t, testDataset(t))
	empty := newTestRouter(t, nil)

	rec := doRequest(ready, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(ready, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(empty, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meta/years", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"), "inbound IDs are honored")

	rec = doRequest(router, http.MethodGet, "/api/v1/meta/years", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), "missing IDs are generated")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, testDataset(t))

	rec := doRequest(router, http.MethodOptions, "/api/v1/meta/years", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
