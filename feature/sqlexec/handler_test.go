package sqlexec

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

func TestSQLRoutes(t *testing.T) {
	svc, tbl := newTestService(t, Config{})
	seed(t, tbl)
	f := &Feature{service: svc, handler: NewHandler(svc)}
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler})
	require.NoError(t, f.Load(app))

	call := func(method, path, body string) (int, []byte) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, raw
	}

	status, raw := call("POST", "/sql/execute", `{"query":"SELECT Ref FROM trades WHERE Desk = 'FX' ORDER BY Ref"}`)
	require.Equal(t, fiber.StatusOK, status)
	var res Result
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, [][]string{{"T1"}, {"T3"}}, res.Data)

	status, raw = call("POST", "/sql/execute", `{"query":"SELECT * FROM nowhere"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `"error"`)

	status, _ = call("POST", "/sql/execute", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call("POST", "/sql/execute", `{"query":"SELECT 1","table_keys":["ghost"]}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = call("GET", "/sql/schema", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), "CREATE TABLE")

	status, raw = call("GET", "/sql/tables?table_keys=trades,%20confirms", "")
	assert.Equal(t, fiber.StatusOK, status)
	var tablesOut []ScratchTable
	require.NoError(t, json.Unmarshal(raw, &tablesOut))
	assert.Len(t, tablesOut, 2)
}
