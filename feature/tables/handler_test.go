package tables

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	f := &Feature{service: newTestService(t)}
	f.handler = NewHandler(f.service)
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler})
	require.NoError(t, f.Load(app))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func TestTableRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/tables", `{"key":"cp","name":"Counterparties","columns":["Id","Name"],"data":[["1","Acme"]]}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "cp", body["key"])
	assert.Equal(t, "master", body["source_type"])

	status, body = doJSON(t, app, "POST", "/tables", `{"key":"cp","name":"Again"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "already exists")

	status, _ = doJSON(t, app, "POST", "/tables", `{"name":"No key"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, app, "GET", "/tables/cp", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []any{"Id", "Name"}, body["columns"])

	status, body = doJSON(t, app, "GET", "/tables?limit=10", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	status, _ = doJSON(t, app, "GET", "/tables?limit=501", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, app, "PUT", "/tables/cp/data", `{"columns":["Id"],"data":[["1"],["2"]]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["row_count"])

	status, body = doJSON(t, app, "PUT", "/tables/cp", `{"name":"CPs"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "CPs", body["name"])

	status, _ = doJSON(t, app, "DELETE", "/tables/cp", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, "GET", "/tables/cp", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
