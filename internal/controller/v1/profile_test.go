package v1

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/pkg/middlewares"
	"github.com/kvv-bao/profiler/internal/server/httpserver"
	"github.com/kvv-bao/profiler/internal/server/svr"
	"github.com/kvv-bao/profiler/internal/service"
)

func testTree(t *testing.T) *profiletree.ProfileTree {
	t.Helper()

	pt, err := profiletree.Build(context.Background(), profiletree.Config{
		Features:                []string{"nationality", "visa_type", "post", "age_group", "travel_purpose", "occupation", "previous_visits"},
		MinHitRateForFavorable:  0.8,
		MinRejectionRateForRisk: 0.3,
	}, []profiletree.HistoricalRecord{
		{Path: []string{"A", "B", "C", "D", "E", "F", "G"}, Count: 100, HitCount: 90},
		{Path: []string{"X", "B", "C", "D", "E", "F", "G"}, Count: 100, HitCount: 10, RejectionCount: 50},
	}, profiletree.WithSnapshotID("snap"))
	require.NoError(t, err)
	return pt
}

func newTestApp(pt *profiletree.ProfileTree) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpserver.ErrorHandler})
	app.Use(middlewares.InjectI18n())
	RegisterProfile(&svr.V1{Router: app.Group("/api/v1")}, Profile{MatchService: service.NewStaticMatch(pt)})
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded), string(b))
	return resp.StatusCode, decoded
}

func TestMatchEndpoint(t *testing.T) {
	app := newTestApp(testTree(t))

	tests := []struct {
		name   string
		body   string
		status int
		label  string
	}{
		{"favorable vector", `{"values":["A","B","C","D","E","F","G"]}`, fiber.StatusOK, "favorable"},
		{"risk by attributes", `{"attributes":{"nationality":"X"}}`, fiber.StatusOK, "risk"},
		{"unknown value", `{"values":["Q","B","C","D","E","F","G"]}`, fiber.StatusOK, "no-profile"},
		{"missing value", `{"values":["","B"]}`, fiber.StatusOK, "no-profile"},
		{"empty request", `{}`, fiber.StatusBadRequest, ""},
		{"too many values", `{"values":["A","B","C","D","E","F","G","H"]}`, fiber.StatusBadRequest, ""},
		{"control character", `{"values":["A\u0000"]}`, fiber.StatusBadRequest, ""},
		{"malformed body", `{"values":`, fiber.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/api/v1/profiles/match", tt.body)
			assert.Equal(t, tt.status, status, body)
			if tt.label != "" {
				assert.Equal(t, tt.label, body["label"])
			} else {
				assert.Equal(t, "INVALID_REQUEST", body["code"])
			}
		})
	}
}

func TestMatchEndpointViolations(t *testing.T) {
	app := newTestApp(testTree(t))

	status, body := post(t, app, "/api/v1/profiles/match", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	violations, ok := body["violations"].([]any)
	require.True(t, ok, body)
	assert.Len(t, violations, 2)
}

func TestMatchBatchEndpoint(t *testing.T) {
	app := newTestApp(testTree(t))

	status, body := post(t, app, "/api/v1/profiles/match/batch", `{"applications":[{"values":["A"]},{"values":["X"]}]}`)
	require.Equal(t, fiber.StatusOK, status, body)

	profiles, ok := body["profiles"].([]any)
	require.True(t, ok)
	require.Len(t, profiles, 2)
	assert.Equal(t, "favorable", profiles[0].(map[string]any)["label"])
	assert.Equal(t, "risk", profiles[1].(map[string]any)["label"])

	status, _ = post(t, app, "/api/v1/profiles/match/batch", `{"applications":[]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMatchEndpointUnpublished(t *testing.T) {
	app := newTestApp(nil)

	status, body := post(t, app, "/api/v1/profiles/match", `{"values":["A"]}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "UNAVAILABLE", body["code"])
}

func TestFeaturesEndpoint(t *testing.T) {
	app := newTestApp(testTree(t))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/profiles/features", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Features []string `json:"features"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Features, 7)
	assert.Equal(t, "nationality", body.Features[0])
}
