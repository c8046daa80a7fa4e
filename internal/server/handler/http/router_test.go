package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/PlantCare/internal/care"
	"github.com/atinyakov/PlantCare/internal/repository/memstore"
	handler "github.com/atinyakov/PlantCare/internal/server/handler/http"
	"github.com/atinyakov/PlantCare/internal/service"
	"github.com/atinyakov/PlantCare/internal/token"
)

const serviceSecret = "svc-secret"

type apiClient struct {
	t   *testing.T
	srv *httptest.Server
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memstore.New()
	issuer, err := token.NewIssuer("test-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(store, issuer)
	router := handler.NewRouter(
		&handler.AuthHandler{AuthService: authSvc},
		&handler.PlantHandler{PlantService: service.NewPlantService(store, store, care.Default())},
		&handler.LogHandler{LogService: service.NewLogService(store, store)},
		&handler.CareHandler{Catalog: care.Default()},
		handler.RouterConfig{Tokens: issuer, Users: authSvc, ServiceToken: serviceSecret},
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiClient{t: t, srv: srv}
}

func (c *apiClient) do(method, path, auth string, body any) (int, map[string]any, []byte) {
	c.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rdr)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(c.t, err)

	var obj map[string]any
	_ = json.Unmarshal(raw.Bytes(), &obj)
	return resp.StatusCode, obj, raw.Bytes()
}

func (c *apiClient) register(username string) string {
	c.t.Helper()
	status, body, raw := c.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
		"username": username, "password": "s3cret-pass",
	})
	require.Equal(c.t, http.StatusCreated, status, string(raw))
	return "Bearer " + body["token"].(string)
}

func id(v any) string {
	return strconv.FormatInt(int64(v.(float64)), 10)
}

func TestPlantLifecycle(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")

	status, plant, raw := api.do(http.MethodPost, "/api/plants/", alice, map[string]string{
		"name": "Aloe", "category": "succulent", "pot_size": "small",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, "infrequent", plant["watering_schedule"])
	assert.Equal(t, "full_sun", plant["sunlight_preference"])
	plantID := id(plant["id"])

	status, logEntry, raw := api.do(http.MethodPost, "/api/logs/", alice, map[string]any{
		"plant": plant["id"], "log_type": "water", "sunlight_hours": 6,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, plant["owner"], logEntry["owner"])

	status, _, raw = api.do(http.MethodGet, "/api/plants/"+plantID+"/logs/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(raw, &logs))
	assert.Len(t, logs, 1)

	status, summary, _ := api.do(http.MethodGet, "/api/plants/"+plantID+"/summary/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, summary["needs_water"])
	assert.Equal(t, float64(1), summary["water_count"])

	status, _, _ = api.do(http.MethodDelete, "/api/plants/"+plantID+"/", alice, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _, _ = api.do(http.MethodGet, "/api/plants/"+plantID+"/logs/", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = api.do(http.MethodGet, "/api/logs/"+id(logEntry["id"])+"/", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCrossUserIsolation(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")

	status, plant, _ := api.do(http.MethodPost, "/api/plants/", alice, map[string]string{"name": "Aloe"})
	require.Equal(t, http.StatusCreated, status)
	plantID := id(plant["id"])

	status, _, _ = api.do(http.MethodGet, "/api/plants/"+plantID+"/", bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = api.do(http.MethodPatch, "/api/plants/"+plantID+"/", bob, map[string]string{"name": "Mine"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ := api.do(http.MethodPost, "/api/logs/", bob, map[string]any{
		"plant": plant["id"], "log_type": "water",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to add logs to this plant.", body["error"])

	status, _, raw := api.do(http.MethodGet, "/api/plants/", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestAuthFlow(t *testing.T) {
	api := newAPI(t)
	api.register("alice")

	status, body, _ := api.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
		"username": "alice", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username", body["field"])

	status, _, _ = api.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, login, _ := api.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"username": "alice", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)

	status, refreshed, _ := api.do(http.MethodPost, "/api/auth/refresh/", "", map[string]any{"refresh": login["refresh"]})
	require.Equal(t, http.StatusOK, status)
	bearer := "Bearer " + refreshed["token"].(string)

	status, me, _ := api.do(http.MethodGet, "/api/users/me/", bearer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", me["username"])

	status, _, _ = api.do(http.MethodGet, "/api/users/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = api.do(http.MethodGet, "/api/users/me/", "Token "+serviceSecret, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "service credential is not a user session")

	status, _, _ = api.do(http.MethodPost, "/api/auth/logout/", bearer, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _, _ = api.do(http.MethodDelete, "/api/users/me/", bearer, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _, _ = api.do(http.MethodGet, "/api/users/me/", bearer, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "tokens of deleted accounts are rejected")
}

func TestServiceUsers(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")

	status, _, _ := api.do(http.MethodGet, "/api/service/users/", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, raw := api.do(http.MethodGet, "/api/service/users/", "Token "+serviceSecret, nil)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0]["username"])
}

func TestHealthAndTemplates(t *testing.T) {
	api := newAPI(t)

	status, body, _ := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, tmpl, _ := api.do(http.MethodGet, "/api/care-templates/herb/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Basil", tmpl["placeholder_species"])
}

func TestRejectsNonJSONBody(t *testing.T) {
	api := newAPI(t)
	resp, err := api.srv.Client().Post(api.srv.URL+"/api/auth/login/", "text/plain", bytes.NewBufferString("hi"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
