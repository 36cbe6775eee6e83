package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence/file"
)

func setupTestAPI(t *testing.T, tempDir string) (*fiber.App, *file.Persistence) {
	t.Helper()

	store := file.NewPersistence(tempDir)

	api := NewAPI(
		slog.Default(),
		store,
		nil,
		5*time.Second,
		time.Hour,
	)
	t.Cleanup(api.Close)

	return api.App(), store
}

// fakeAutomation stands in for the remote automation so instance and
// calendar endpoints never leave the test process.
func fakeAutomation(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/create", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("qr-image-bytes"))
	})

	mux.HandleFunc("/agenda", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"evt-1","summary":"Banho do Rex"}]`))
	})

	mux.HandleFunc("/delete-event", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	mux.HandleFunc("/failing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func seedWebhook(t *testing.T, store *file.Persistence, identifier, target string) {
	t.Helper()

	err := store.WebhookRepository().Save(context.Background(), &models.WebhookEndpoint{
		Name:       identifier,
		URL:        target,
		Identifier: identifier,
	})
	require.NoError(t, err)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Petshop Gateway API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPI_GetWebhooks_Empty(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/webhooks/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Webhooks []models.WebhookEndpoint `json:"webhooks"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Empty(t, payload.Webhooks)
}

func TestAPI_SaveWebhook(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	body := `{"name":"Agenda","url":"https://hooks.example.com/agenda","identifier":"carrega_agenda"}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var endpoint models.WebhookEndpoint

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&endpoint))
	assert.NotEmpty(t, endpoint.ID)
	assert.Equal(t, "carrega_agenda", endpoint.Identifier)
}

func TestAPI_SaveWebhook_Invalid(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	tests := []struct {
		name string
		body string
	}{
		{"missing identifier", `{"name":"Agenda","url":"https://hooks.example.com"}`},
		{"missing url", `{"name":"Agenda","identifier":"carrega_agenda"}`},
		{"not a url", `{"name":"Agenda","url":"not a url","identifier":"carrega_agenda"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() {
				err := resp.Body.Close()
				require.NoError(t, err)
			}()

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAPI_UpdateWebhook(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())

	seedWebhook(t, store, "carrega_agenda", "https://hooks.example.com/v1")

	body := `{"url":"https://hooks.example.com/v2"}`

	req := httptest.NewRequest(http.MethodPatch, "/webhooks/carrega_agenda", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var endpoint models.WebhookEndpoint

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&endpoint))
	assert.Equal(t, "https://hooks.example.com/v2", endpoint.URL)
}

func TestAPI_UpdateWebhook_NotFound(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPatch, "/webhooks/unknown", strings.NewReader(`{"url":"https://hooks.example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteWebhook(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())

	seedWebhook(t, store, "carrega_agenda", "https://hooks.example.com/agenda")

	req := httptest.NewRequest(http.MethodDelete, "/webhooks/carrega_agenda", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/webhooks/carrega_agenda", nil)
	resp2, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp2.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusNotFound, resp2.StatusCode)
}

func TestAPI_ImportWebhooks(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())

	body := `{"webhooks":[
		{"name":"Agenda","url":"https://hooks.example.com/agenda","identifier":"carrega_agenda"},
		{"name":"Criar evento","url":"https://hooks.example.com/cria","identifier":"cria_evento"}
	]}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Imported int `json:"imported"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 2, payload.Imported)

	endpoints, err := store.WebhookRepository().All(context.Background())
	require.NoError(t, err)
	assert.Len(t, endpoints, 2)
}

func TestAPI_ImportWebhooks_SchemaRejection(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())

	// One row lacks a URL; nothing may be written.
	body := `{"webhooks":[
		{"name":"Agenda","url":"https://hooks.example.com/agenda","identifier":"carrega_agenda"},
		{"name":"Criar evento","identifier":"cria_evento"}
	]}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	endpoints, err := store.WebhookRepository().All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, endpoints)
}

func TestAPI_CreateInstance(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())
	automation := fakeAutomation(t)

	seedWebhook(t, store, models.WebhookCreateInstance, automation.URL+"/create")
	seedWebhook(t, store, models.WebhookConfirmStatus, automation.URL+"/failing")

	req := httptest.NewRequest(http.MethodPost, "/instances/", strings.NewReader(`{"instanceName":"Loja1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "qr-image-bytes", string(body))

	stateReq := httptest.NewRequest(http.MethodGet, "/instances/current", nil)
	stateResp, err := app.Test(stateReq)
	require.NoError(t, err)

	defer func() {
		err := stateResp.Body.Close()
		require.NoError(t, err)
	}()

	var state struct {
		InstanceName string `json:"instance_name"`
		Status       string `json:"status"`
	}

	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&state))
	assert.Equal(t, "Loja1", state.InstanceName)
	assert.Equal(t, "waiting", state.Status)
}

func TestAPI_CreateInstance_MissingName(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/instances/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateInstance_BackendDown(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())
	automation := fakeAutomation(t)

	seedWebhook(t, store, models.WebhookCreateInstance, automation.URL+"/failing")

	req := httptest.NewRequest(http.MethodPost, "/instances/", strings.NewReader(`{"instanceName":"Loja1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	stateReq := httptest.NewRequest(http.MethodGet, "/instances/current", nil)
	stateResp, err := app.Test(stateReq)
	require.NoError(t, err)

	defer func() {
		err := stateResp.Body.Close()
		require.NoError(t, err)
	}()

	var state struct {
		Status string `json:"status"`
	}

	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&state))
	assert.Equal(t, "not_started", state.Status)
}

func TestAPI_ResetInstance(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())
	automation := fakeAutomation(t)

	seedWebhook(t, store, models.WebhookCreateInstance, automation.URL+"/create")
	seedWebhook(t, store, models.WebhookConfirmStatus, automation.URL+"/failing")

	req := httptest.NewRequest(http.MethodPost, "/instances/", strings.NewReader(`{"instanceName":"Loja1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	resetReq := httptest.NewRequest(http.MethodPost, "/instances/reset", nil)
	resetResp, err := app.Test(resetReq)
	require.NoError(t, err)

	defer func() {
		err := resetResp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resetResp.StatusCode)

	var state struct {
		Status string `json:"status"`
	}

	require.NoError(t, json.NewDecoder(resetResp.Body).Decode(&state))
	assert.Equal(t, "not_started", state.Status)
}

func TestAPI_RetryInstance_WithoutPreviousAttempt(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/instances/retry", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetCalendarEvents(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())
	automation := fakeAutomation(t)

	seedWebhook(t, store, models.WebhookFetchAgenda, automation.URL+"/agenda")

	req := httptest.NewRequest(http.MethodGet, "/calendar/events/?date=2025-03-10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Events []models.CalendarEvent `json:"events"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "Banho do Rex", payload.Events[0].Summary)
}

func TestAPI_GetCalendarEvents_BadDate(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/calendar/events/?date=10-03-2025", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateCalendarEvent_MissingSummary(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	body := `{"date":"2025-03-10","start_time":"14:30","end_time":"15:00"}`

	req := httptest.NewRequest(http.MethodPost, "/calendar/events/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_DeleteCalendarEvent(t *testing.T) {
	app, store := setupTestAPI(t, t.TempDir())
	automation := fakeAutomation(t)

	seedWebhook(t, store, models.WebhookDeleteEvent, automation.URL+"/delete-event")

	req := httptest.NewRequest(http.MethodDelete, "/calendar/events/evt-42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestAPI_HealthEndpoint(t *testing.T) {
	app, _ := setupTestAPI(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Status string `json:"status"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "healthy", payload.Status)
}
