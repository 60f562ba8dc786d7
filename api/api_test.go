package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"navarch/config"
	"navarch/core"
	"navarch/service"
	"navarch/storage"
	"navarch/testhull"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Backend = config.BackendMemory
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 8080
	cfg.API.AllowedOrigins = []string{"*"}
	cfg.API.RateLimit.RequestsPerSecond = 1000
	cfg.API.RateLimit.Burst = 1000
	cfg.API.ReadTimeout = 15 * time.Second
	cfg.API.WriteTimeout = 60 * time.Second
	cfg.Engine.LocalCacheSize = 16
	cfg.Engine.MaxCurvePoints = 500
	cfg.Engine.ComputeTimeout = 10 * time.Second
	cfg.Logging.Level = "info"
	return cfg
}

func newTestAPI(t *testing.T) (*API, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	logger := zaptest.NewLogger(t).Sugar()
	svc, err := service.NewHydroService(store, nil, service.Options{
		LocalCacheSize: 16,
		MaxCurvePoints: 500,
		ComputeTimeout: 10 * time.Second,
	}, logger)
	require.NoError(t, err)

	a := NewAPI(store, svc, testConfig(), logger)
	t.Cleanup(func() { a.Stop(context.Background()) })
	return a, store
}

func doJSON(t *testing.T, a *API, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// seedBarge creates a vessel with the standard barge geometry and a KG=2.5
// loadcase, returning their IDs.
func seedBarge(t *testing.T, a *API) (vesselID, loadcaseID string) {
	t.Helper()
	rec := doJSON(t, a, "POST", "/api/vessels", map[string]string{"name": "barge"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var vessel core.Vessel
	decodeBody(t, rec, &vessel)

	geom := testhull.Barge(100, 20, 8, 11, 9)
	payload := geometryPayload{Stations: geom.Stations, Waterlines: geom.Waterlines}
	for si, st := range geom.Stations {
		for wi, wl := range geom.Waterlines {
			payload.Offsets = append(payload.Offsets, core.Offset{
				StationIndex:   st.Index,
				WaterlineIndex: wl.Index,
				HalfBreadth:    geom.HalfBreadth(si, wi),
			})
		}
	}
	rec = doJSON(t, a, "PUT", "/api/vessels/"+vessel.ID+"/geometry", payload)
	require.Equal(t, http.StatusNoContent, rec.Code)

	kg := 2.5
	rec = doJSON(t, a, "POST", "/api/vessels/"+vessel.ID+"/loadcases", loadcaseRequest{
		Name: "design", Rho: 1.025, KG: &kg,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var lc core.Loadcase
	decodeBody(t, rec, &lc)
	return vessel.ID, lc.ID
}

func TestHealthCheck(t *testing.T) {
	a, _ := newTestAPI(t)
	rec := doJSON(t, a, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestVesselLifecycle(t *testing.T) {
	a, _ := newTestAPI(t)

	rec := doJSON(t, a, "POST", "/api/vessels", map[string]string{"name": "MV Test", "description": "d"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var vessel core.Vessel
	decodeBody(t, rec, &vessel)
	assert.NotEmpty(t, vessel.ID)

	rec = doJSON(t, a, "GET", "/api/vessels/"+vessel.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, a, "GET", "/api/vessels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list vesselListResponse
	decodeBody(t, rec, &list)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Vessels, 1)

	rec = doJSON(t, a, "PUT", "/api/vessels/"+vessel.ID, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, a, "DELETE", "/api/vessels/"+vessel.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, a, "GET", "/api/vessels/"+vessel.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateVessel_Validation(t *testing.T) {
	a, _ := newTestAPI(t)

	rec := doJSON(t, a, "POST", "/api/vessels", map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, a, "POST", "/api/vessels", map[string]string{"name": "x", "bogus": "field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeometryRoundTripAndRejection(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, _ := seedBarge(t, a)

	rec := doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/geometry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp geometryResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Stations, 11)
	assert.Len(t, resp.Offsets, 11*9)

	// A partial grid is rejected with 422 and leaves the geometry intact.
	bad := geometryPayload{
		Stations:   resp.Stations,
		Waterlines: resp.Waterlines,
		Offsets:    resp.Offsets[:len(resp.Offsets)-1],
	}
	rec = doJSON(t, a, "PUT", "/api/vessels/"+vesselID+"/geometry", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/geometry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGeometryNotFound(t *testing.T) {
	a, _ := newTestAPI(t)
	rec := doJSON(t, a, "POST", "/api/vessels", map[string]string{"name": "bare"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var vessel core.Vessel
	decodeBody(t, rec, &vessel)

	rec = doJSON(t, a, "GET", "/api/vessels/"+vessel.ID+"/geometry", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, a, "GET", "/api/vessels/"+vessel.ID+"/hydrostatics?draft=5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComputeHydrostaticsEndpoint(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, loadcaseID := seedBarge(t, a)

	rec := doJSON(t, a, "GET", fmt.Sprintf("/api/vessels/%s/hydrostatics?draft=5&loadcase_id=%s", vesselID, loadcaseID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res core.HydroResult
	decodeBody(t, rec, &res)
	assert.InDelta(t, 10000.0, res.Volume, 1e-5)
	assert.InDelta(t, 2.5, res.KB, 1e-5)
	require.NotNil(t, res.GMt)
	assert.InDelta(t, 6.666667, *res.GMt, 1e-5)

	// Missing draft is a 400.
	rec = doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/hydrostatics", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/hydrostatics?draft=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResponsesAreRounded(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, _ := seedBarge(t, a)

	rec := doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/hydrostatics?draft=3.333333333", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	decodeBody(t, rec, &raw)
	for _, field := range []string{"volume", "kb", "bmt"} {
		s := string(raw[field])
		if i := strings.IndexByte(s, '.'); i >= 0 {
			assert.LessOrEqual(t, len(s)-i-1, 6, "field %s has too many decimals: %s", field, s)
		}
	}
}

func TestComputeTableEndpoint(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, _ := seedBarge(t, a)

	rec := doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/hydrostatics/table", tableRequest{
		Drafts: []float64{1, 2, 3},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var results []core.HydroResult
	decodeBody(t, rec, &results)
	require.Len(t, results, 3)
	assert.InDelta(t, 2000.0, results[0].Volume, 1e-5)
}

func TestGenerateCurvesEndpoint(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, loadcaseID := seedBarge(t, a)

	rec := doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/curves", curvesRequest{
		LoadcaseID: loadcaseID,
		Types:      []core.CurveType{core.CurveDisplacement, core.CurveKB},
		MinDraft:   1,
		MaxDraft:   5,
		Points:     5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[core.CurveType]core.CurveData
	decodeBody(t, rec, &out)
	require.Len(t, out, 2)
	assert.Len(t, out[core.CurveDisplacement].Points, 5)

	// GMt without a loadcase is a 400.
	rec = doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/curves", curvesRequest{
		Types: []core.CurveType{core.CurveGMt}, MinDraft: 1, MaxDraft: 5, Points: 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBonjeanEndpoint(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, _ := seedBarge(t, a)

	rec := doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/curves/bonjean", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var curves []core.BonjeanCurve
	decodeBody(t, rec, &curves)
	assert.Len(t, curves, 11)
}

func TestGZAndCriteriaEndpoints(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, loadcaseID := seedBarge(t, a)

	req := core.GZRequest{
		LoadcaseID:     loadcaseID,
		MinAngle:       0,
		MaxAngle:       60,
		AngleIncrement: 5,
		Method:         core.MethodWallSided,
		Draft:          5,
	}
	rec := doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/stability/gz", req)
	require.Equal(t, http.StatusOK, rec.Code)
	var curve core.StabilityCurve
	decodeBody(t, rec, &curve)
	assert.Len(t, curve.Points, 13)
	assert.InDelta(t, 6.666667, curve.InitialGMt, 1e-5)

	rec = doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/stability/criteria", req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res criteriaResponse
	decodeBody(t, rec, &res)
	require.NotNil(t, res.Result)
	assert.True(t, res.Result.AllPassed)
	assert.Len(t, res.Result.Criteria, 6)
}

func TestGZValidationErrors(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, loadcaseID := seedBarge(t, a)

	// Missing method fails struct validation.
	rec := doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/stability/gz", map[string]interface{}{
		"loadcase_id": loadcaseID, "max_angle": 60, "angle_increment": 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown loadcase is a 404.
	rec = doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/stability/gz", core.GZRequest{
		LoadcaseID: "missing", MaxAngle: 60, AngleIncrement: 5, Method: core.MethodWallSided,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamGZWebsocket(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, loadcaseID := seedBarge(t, a)

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		fmt.Sprintf("/api/vessels/%s/stability/gz/stream?loadcase_id=%s&max_angle=30&increment=5&method=wall_sided&draft=5", vesselID, loadcaseID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var points int
	var complete bool
	for {
		var msg gzStreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "gz:point":
			points++
		case "gz:complete":
			complete = true
			require.NotNil(t, msg.Curve)
			assert.Len(t, msg.Curve.Points, points)
		case "gz:error":
			t.Fatalf("unexpected stream error: %s", msg.Error)
		}
		if complete {
			break
		}
	}
	assert.True(t, complete)
	assert.Equal(t, 7, points)
}

func TestLoadcaseEndpoints(t *testing.T) {
	a, _ := newTestAPI(t)
	vesselID, loadcaseID := seedBarge(t, a)

	rec := doJSON(t, a, "GET", "/api/vessels/"+vesselID+"/loadcases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []core.Loadcase
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)

	kg := 3.5
	rec = doJSON(t, a, "PUT", "/api/loadcases/"+loadcaseID, loadcaseRequest{
		Name: "ballast", Rho: 1.0, KG: &kg,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, a, "GET", "/api/loadcases/"+loadcaseID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lc core.Loadcase
	decodeBody(t, rec, &lc)
	assert.Equal(t, "ballast", lc.Name)
	require.NotNil(t, lc.KG)
	assert.InDelta(t, 3.5, *lc.KG, 1e-12)

	// Invalid rho fails validation.
	rec = doJSON(t, a, "POST", "/api/vessels/"+vesselID+"/loadcases", loadcaseRequest{Name: "x", Rho: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, a, "DELETE", "/api/loadcases/"+loadcaseID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, a, "GET", "/api/loadcases/"+loadcaseID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
