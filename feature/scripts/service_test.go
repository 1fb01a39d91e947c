package scripts

import (
	"context"
	"strings"
	"testing"
	"time"

	"didp/core/database"
	"didp/feature/tables"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, tables.Models()...))
	tbl := tables.NewService(db, zap.NewNop())

	ctx := context.Background()
	_, err = tbl.Create(ctx, tables.CreateInput{
		Key: "trades", Name: "Trades",
		Columns: []string{"Ref", "Desk", "Amount"},
		Data:    [][]string{{"T1", "FX", "100"}, {"T2", "Rates", "200"}, {"T3", "FX", "300"}},
	})
	require.NoError(t, err)
	_, err = tbl.Create(ctx, tables.CreateInput{Key: "empty", Name: "Empty"})
	require.NoError(t, err)
	return NewService(tbl, cfg, zap.NewNop())
}

func run(t *testing.T, svc *Service, script string) *Result {
	t.Helper()
	res, err := svc.Execute(context.Background(), ExecuteInput{Script: script})
	require.NoError(t, err)
	return res
}

func TestExecute_PrintAndFormulas(t *testing.T) {
	svc := newTestService(t, Config{})

	res := run(t, svc, `
print("hello", 1 + 1)
console.log(excel.upper("abc"), excel.sum(tables.trades, "Amount"))
print(excel.sumif(tables.trades, "Desk", "FX", "Amount"))
print(typeof require, typeof tables.empty)
`)
	assert.Empty(t, res.Error)
	assert.Equal(t, "hello 2\nABC 600\n400\nundefined undefined\n", res.Output)
	assert.Nil(t, res.ResultColumns)
}

func TestExecute_ResultShapes(t *testing.T) {
	svc := newTestService(t, Config{})

	tests := []struct {
		name    string
		script  string
		columns []string
		data    [][]string
	}{
		{
			name:    "dataset",
			script:  `result = tables.trades`,
			columns: []string{"Ref", "Desk", "Amount"},
			data:    [][]string{{"T1", "FX", "100"}, {"T2", "Rates", "200"}, {"T3", "FX", "300"}},
		},
		{
			name:    "dataset rows",
			script:  `result = tables.trades.rows`,
			columns: []string{"col_1", "col_2", "col_3"},
			data:    [][]string{{"T1", "FX", "100"}, {"T2", "Rates", "200"}, {"T3", "FX", "300"}},
		},
		{
			name:    "array of arrays",
			script:  `result = [[1, "a"], [2], [3, null, true]]`,
			columns: []string{"col_1", "col_2", "col_3"},
			data:    [][]string{{"1", "a", ""}, {"2", "", ""}, {"3", "", "true"}},
		},
		{
			name:    "array of objects",
			script:  `result = [{ref: "T1", amt: 1}, {ref: "T2", extra: 2.5}]`,
			columns: []string{"ref", "amt", "extra"},
			data:    [][]string{{"T1", "1", ""}, {"T2", "", "2.5"}},
		},
		{
			name:    "array of scalars",
			script:  `result = tables.trades.column("Ref").filter(r => r !== "T2")`,
			columns: []string{"result"},
			data:    [][]string{{"T1"}, {"T3"}},
		},
		{
			name:    "columns and rows",
			script:  `result = {columns: ["a", "b"], rows: [[1, 2], [3]]}`,
			columns: []string{"a", "b"},
			data:    [][]string{{"1", "2"}, {"3", ""}},
		},
		{
			name:    "scalar",
			script:  `result = excel.round(10 / 3, 2)`,
			columns: []string{"result"},
			data:    [][]string{{"3.33"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, svc, tt.script)
			require.Empty(t, res.Error)
			assert.Equal(t, tt.columns, res.ResultColumns)
			assert.Equal(t, tt.data, res.ResultData)
		})
	}
}

func TestExecute_ResultRowCap(t *testing.T) {
	svc := newTestService(t, Config{MaxResultRows: 3})

	res := run(t, svc, `result = Array.from({length: 10}, (_, i) => i)`)
	require.Empty(t, res.Error)
	assert.Equal(t, [][]string{{"0"}, {"1"}, {"2"}}, res.ResultData)
}

func TestExecute_Errors(t *testing.T) {
	svc := newTestService(t, Config{TimeoutSeconds: 1, MaxOutputBytes: 16})

	res := run(t, svc, `print("before"); throw new Error("boom")`)
	assert.Contains(t, res.Error, "boom")
	assert.Equal(t, "before\n", res.Output)

	res = run(t, svc, `this is not javascript`)
	assert.NotEmpty(t, res.Error)

	res = run(t, svc, `while (true) {}`)
	assert.Contains(t, res.Error, "timeout")

	res = run(t, svc, `for (let i = 0; i < 100; i++) print("line " + i)`)
	assert.Empty(t, res.Error)
	assert.True(t, strings.HasSuffix(res.Output, truncatedMarker))

	_, err := svc.Execute(context.Background(), ExecuteInput{Script: "1", TableKeys: []string{"ghost"}})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestExecute_ResultGetters(t *testing.T) {
	svc := newTestService(t, Config{TimeoutSeconds: 1})

	res := run(t, svc, `print("ran"); result = [{ get a() { throw new Error("boom") } }]`)
	assert.Contains(t, res.Error, "boom")
	assert.Equal(t, "ran\n", res.Output)
	assert.Nil(t, res.ResultColumns)
	assert.Nil(t, res.ResultData)

	done := make(chan *Result, 1)
	go func() {
		r, err := svc.Execute(context.Background(), ExecuteInput{Script: `result = [{ get a() { while (true) {} } }]`})
		assert.NoError(t, err)
		done <- r
	}()
	select {
	case r := <-done:
		assert.Contains(t, r.Error, "timeout")
		assert.Nil(t, r.ResultData)
	case <-time.After(10 * time.Second):
		t.Fatal("looping getter was not interrupted")
	}

	// the semaphore slot was released
	res = run(t, svc, `result = [{ get a() { return 1 } }]`)
	require.Empty(t, res.Error)
	assert.Equal(t, []string{"a"}, res.ResultColumns)
	assert.Equal(t, [][]string{{"1"}}, res.ResultData)
}

func TestExecute_ResultColumnCap(t *testing.T) {
	svc := newTestService(t, Config{MaxResultColumns: 3})

	tests := []struct {
		name    string
		script  string
		columns []string
		data    [][]string
	}{
		{
			name:    "sparse nested arrays",
			script:  `var a = []; a.length = 50000000; result = [a, a]`,
			columns: []string{"col_1", "col_2", "col_3"},
			data:    [][]string{{"", "", ""}, {"", "", ""}},
		},
		{
			name:    "sparse columns",
			script:  `var c = ["x", "y"]; c.length = 50000000; result = {columns: c, rows: [[1, 2, 3, 4]]}`,
			columns: []string{"x", "y", ""},
			data:    [][]string{{"1", "2", "3"}},
		},
		{
			name:    "wide records",
			script:  `var o = {}; for (var i = 0; i < 10; i++) o["k" + i] = i; result = [o, {k9: "z", k0: "y"}]`,
			columns: []string{"k0", "k1", "k2"},
			data:    [][]string{{"0", "1", "2"}, {"y", "", ""}},
		},
		{
			name:    "wide dataset",
			script:  `result = tables.trades`,
			columns: []string{"Ref", "Desk", "Amount"},
			data:    [][]string{{"T1", "FX", "100"}, {"T2", "Rates", "200"}, {"T3", "FX", "300"}},
		},
		{
			name:    "sparse cell",
			script:  `var a = []; a.length = 50000000; result = [[a]]`,
			columns: []string{"col_1"},
			data:    [][]string{{"<array of 50000000 items>"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, svc, tt.script)
			require.Empty(t, res.Error)
			assert.Equal(t, tt.columns, res.ResultColumns)
			assert.Equal(t, tt.data, res.ResultData)
		})
	}

	narrow := newTestService(t, Config{MaxResultColumns: 2})
	res := run(t, narrow, `result = tables.trades`)
	require.Empty(t, res.Error)
	assert.Equal(t, []string{"Ref", "Desk"}, res.ResultColumns)
	assert.Equal(t, []string{"T1", "FX"}, res.ResultData[0])
}

func TestTables(t *testing.T) {
	svc := newTestService(t, Config{})

	out, err := svc.Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, TableInfo{Key: "trades", Name: "Trades", Columns: []string{"Ref", "Desk", "Amount"}, RowCount: 3}, out[1])
	assert.Equal(t, []string{}, out[0].Columns)

	sets, err := svc.Datasets(context.Background(), []string{"trades", "empty"})
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}
