package exports

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRoutes(t *testing.T) {
	f := setup(t, nil)
	id := f.result(t)

	feat := &Feature{service: f.svc, handler: NewHandler(f.svc)}
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler})
	require.NoError(t, feat.Load(app))

	call := func(path, body string) (int, string, []byte) {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, resp.Header.Get(fiber.HeaderContentDisposition), raw
	}

	status, disposition, raw := call("/exports/excel", `{"table_keys":["trades"]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, disposition, "DIDP_Export.xlsx")
	assert.Equal(t, []string{"Trades_ FX_Rates"}, open(t, raw).GetSheetList())

	status, _, _ = call("/exports/excel", `{"table_keys":[]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, disposition, raw = call("/exports/csv/confirms", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, disposition, "confirms.csv")
	assert.True(t, strings.HasPrefix(string(raw), "Ref,Status,Desk\n"))

	status, _, _ = call("/exports/csv/ghost", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, disposition, raw = call("/exports/match-results/"+strconv.Itoa(int(id))+"?include_unmatched=false", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, disposition, "match_results_")
	assert.Equal(t, []string{"Summary", "Matched Pairs"}, open(t, raw).GetSheetList())

	status, _, _ = call("/exports/match-results/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = call("/exports/sql-results", `{"columns":["a"],"data":[["1"]]}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = call("/exports/comparison", `{"rows":[]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
