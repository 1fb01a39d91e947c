package processes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRoutes(t *testing.T) {
	f := setup(t)
	app := fiber.New()
	NewHandler(f.svc).RegisterRoutes(app)

	send := func(method, path, body string) (int, []byte) {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, r)
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, raw
	}

	status, body := send("POST", "/processes", `{"name":"q","process_type":"sql","config":{"query":"SELECT 1"}}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var p ProcessView
	require.NoError(t, json.Unmarshal(body, &p))

	status, _ = send("POST", "/processes", `{"name":"q","process_type":"shell","config":{"script":"x"}}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = send("POST", fmt.Sprintf("/processes/%d/run", p.ID), "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var rep RunReport
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.True(t, rep.Succeeded)

	chainBody := fmt.Sprintf(`{"name":"c","steps":[{"process_type":"match","config":{"match_config_id":%d}},{"process_type":"export","config":{"table_keys":["trades"]}}]}`, f.configID)
	status, body = send("POST", "/processes/chains", chainBody)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var chain ChainView
	require.NoError(t, json.Unmarshal(body, &chain))
	assert.Len(t, chain.Steps, 2)

	status, body = send("GET", "/processes/chains", "")
	require.Equal(t, fiber.StatusOK, status)
	var chains []ChainView
	require.NoError(t, json.Unmarshal(body, &chains))
	assert.Len(t, chains, 1)

	status, body = send("POST", fmt.Sprintf("/processes/chains/%d/run", chain.ID), "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, true, raw["succeeded"])
	steps := raw["steps"].([]any)
	assert.Equal(t, StatusSucceeded, steps[1].(map[string]any)["status"])

	status, _ = send("GET", "/processes/chains/999", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = send("GET", "/processes/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = send("DELETE", fmt.Sprintf("/processes/chains/%d", chain.ID), "")
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = send("DELETE", fmt.Sprintf("/processes/%d", p.ID), "")
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = send("GET", fmt.Sprintf("/processes/%d", p.ID), "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
