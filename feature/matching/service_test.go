package matching

import (
	"context"
	"testing"

	"didp/core/database"
	"didp/core/match"
	"didp/feature/tables"
	"didp/feature/valuemapping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	tables  *tables.Service
	mapping *valuemapping.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	models := append(tables.Models(), &valuemapping.ValueMapping{})
	require.NoError(t, database.Migrate(db, append(models, Models()...)...))

	tbl := tables.NewService(db, zap.NewNop())
	vm := valuemapping.NewService(db, zap.NewNop())
	return &fixture{db: db, svc: NewService(db, tbl, vm, zap.NewNop()), tables: tbl, mapping: vm}
}

func (f *fixture) table(t *testing.T, key string, columns []string, data [][]string) {
	t.Helper()
	_, err := f.tables.Create(context.Background(), tables.CreateInput{Key: key, Name: key, Columns: columns, Data: data})
	require.NoError(t, err)
}

func TestExecuteTradesAgainstConfirmations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "trades", []string{"Ref", "Side", "Ccy"}, [][]string{
		{"T1", "B", "eur"},
		{"T2", "S", "usd"},
		{"T3", "B", "gbp"},
		{" T4 ", "X", "chf"},
	})
	f.table(t, "confirms", []string{"Reference", "Direction", "Currency"}, [][]string{
		{"T2", "SELL", "USD"},
		{"T1", "BUY", "EUR"},
		{"T9", "BUY", "JPY"},
		{"T4", "X", "CHF"},
	})
	vm, err := f.mapping.Create(ctx, valuemapping.CreateInput{Name: "side", Mappings: map[string]string{"B": "BUY", "S": "SELL"}})
	require.NoError(t, err)

	cfg, err := f.svc.CreateConfig(ctx, ConfigInput{
		Name:           "trades vs confirms",
		SourceTableKey: "trades",
		TargetTableKey: "confirms",
		MatchColumns: []ColumnInput{
			{SourceColumn: "Ref", TargetColumn: "Reference", CaseSensitive: true},
			{SourceColumn: "Side", TargetColumn: "Direction", ValueMappingID: &vm.ID},
			{SourceColumn: "Ccy", TargetColumn: "Currency"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, cfg.MatchColumns, 3)
	assert.Equal(t, "trades", cfg.SourceTableKey)

	res, err := f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, res.MatchedCount)
	assert.Equal(t, 1, res.UnmatchedSourceCount)
	assert.Equal(t, 1, res.UnmatchedTargetCount)
	assert.Equal(t, PayloadVersion, res.PayloadVersion)
	assert.Equal(t, "trades vs confirms", res.ConfigName)
	assert.Equal(t, "confirms", res.TargetTableKey)

	assert.Equal(t, match.Pair{
		SourceIndex: 0, TargetIndex: 1,
		SourceRow: []string{"T1", "B", "eur"},
		TargetRow: []string{"T1", "BUY", "EUR"},
	}, res.MatchedPairs[0])
	assert.Equal(t, 3, res.MatchedPairs[2].SourceIndex, "whitespace is trimmed")
	assert.Equal(t, []match.Unmatched{{RowIndex: 2, Row: []string{"T3", "B", "gbp"}}}, res.UnmatchedSource)
	assert.Equal(t, 2, res.UnmatchedTarget[0].RowIndex)

	stored, err := f.svc.GetResult(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.MatchedPairs, stored.MatchedPairs)
	assert.Equal(t, res.UnmatchedTarget, stored.UnmatchedTarget)

	again, err := f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, res.MatchedPairs, again.MatchedPairs, "execution is deterministic")
	assert.NotEqual(t, res.ID, again.ID)
}

func TestExecuteFIFOConsumption(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "src", []string{"K"}, [][]string{{"A"}, {"A"}, {"A"}})
	f.table(t, "tgt", []string{"K"}, [][]string{{"A"}, {"A"}})

	cfg, err := f.svc.CreateConfig(ctx, ConfigInput{
		Name: "fifo", SourceTableKey: "src", TargetTableKey: "tgt",
		MatchColumns: []ColumnInput{{SourceColumn: "K", TargetColumn: "K"}},
	})
	require.NoError(t, err)

	res, err := f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)
	require.Len(t, res.MatchedPairs, 2)
	assert.Equal(t, [2]int{0, 0}, [2]int{res.MatchedPairs[0].SourceIndex, res.MatchedPairs[0].TargetIndex})
	assert.Equal(t, [2]int{1, 1}, [2]int{res.MatchedPairs[1].SourceIndex, res.MatchedPairs[1].TargetIndex})
	assert.Equal(t, 2, res.UnmatchedSource[0].RowIndex)
	assert.Empty(t, res.UnmatchedTarget)
	assert.NotNil(t, res.UnmatchedTarget)
}

func TestExecuteFailuresStoreNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, 42)
	assert.ErrorIs(t, err, database.ErrNotFound)

	f.table(t, "src", []string{"K"}, [][]string{{"A"}})
	src, err := f.tables.Lookup(ctx, "src")
	require.NoError(t, err)

	// target table id that was never created
	orphan := &MatchConfig{Name: "orphan", SourceTableID: src.ID, TargetTableID: 999}
	require.NoError(t, f.db.Create(orphan).Error)

	_, err = f.svc.Execute(ctx, orphan.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var n int64
	require.NoError(t, f.db.Model(&MatchResult{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestDeletedMappingBecomesIdentity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "src", []string{"Side"}, [][]string{{"B"}, {"BUY"}})
	f.table(t, "tgt", []string{"Side"}, [][]string{{"BUY"}})
	vm, err := f.mapping.Create(ctx, valuemapping.CreateInput{Name: "m", Mappings: map[string]string{"B": "BUY"}})
	require.NoError(t, err)

	cfg, err := f.svc.CreateConfig(ctx, ConfigInput{
		Name: "m", SourceTableKey: "src", TargetTableKey: "tgt",
		MatchColumns: []ColumnInput{{SourceColumn: "Side", TargetColumn: "Side", ValueMappingID: &vm.ID}},
	})
	require.NoError(t, err)

	res, err := f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)
	require.Len(t, res.MatchedPairs, 1)
	assert.Equal(t, 0, res.MatchedPairs[0].SourceIndex)

	require.NoError(t, f.mapping.Delete(ctx, vm.ID))

	view, err := f.svc.GetConfig(ctx, cfg.ID)
	require.NoError(t, err)
	require.Len(t, view.MatchColumns, 1, "rule survives mapping deletion")
	assert.Nil(t, view.MatchColumns[0].ValueMappingID)

	res, err = f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)
	require.Len(t, res.MatchedPairs, 1)
	assert.Equal(t, 1, res.MatchedPairs[0].SourceIndex)
}

func TestDanglingMappingReferenceIsIdentity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "src", []string{"K"}, [][]string{{"x"}})
	f.table(t, "tgt", []string{"K"}, [][]string{{"X"}})
	missing := uint(77)

	cfg, err := f.svc.CreateConfig(ctx, ConfigInput{
		Name: "d", SourceTableKey: "src", TargetTableKey: "tgt",
		MatchColumns: []ColumnInput{{SourceColumn: "K", TargetColumn: "K", ValueMappingID: &missing}},
	})
	require.NoError(t, err)

	res, err := f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchedCount)
}

func TestConfigLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "a", []string{"K", "V"}, nil)
	f.table(t, "b", []string{"K", "V"}, nil)

	_, err := f.svc.CreateConfig(ctx, ConfigInput{Name: "x", SourceTableKey: "a", TargetTableKey: "zz"})
	assert.ErrorIs(t, err, database.ErrNotFound)

	cfg, err := f.svc.CreateConfig(ctx, ConfigInput{
		Name: "ab", SourceTableKey: "a", TargetTableKey: "b",
		MatchColumns: []ColumnInput{{SourceColumn: "K", TargetColumn: "K"}},
	})
	require.NoError(t, err)

	name := "renamed"
	v, err := f.svc.UpdateConfig(ctx, cfg.ID, ConfigUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", v.Name)
	assert.Len(t, v.MatchColumns, 1, "rules kept when not given")

	v, err = f.svc.UpdateConfig(ctx, cfg.ID, ConfigUpdate{MatchColumns: []ColumnInput{
		{SourceColumn: "V", TargetColumn: "V", CaseSensitive: true},
		{SourceColumn: "K", TargetColumn: "K"},
	}})
	require.NoError(t, err)
	require.Len(t, v.MatchColumns, 2)
	assert.Equal(t, "V", v.MatchColumns[0].SourceColumn)
	assert.True(t, v.MatchColumns[0].CaseSensitive)

	_, err = f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)

	list, err := f.svc.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteConfig(ctx, cfg.ID))
	_, err = f.svc.GetConfig(ctx, cfg.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var rules, results int64
	require.NoError(t, f.db.Model(&MatchColumn{}).Count(&rules).Error)
	require.NoError(t, f.db.Model(&MatchResult{}).Count(&results).Error)
	assert.Zero(t, rules)
	assert.Zero(t, results)

	assert.ErrorIs(t, f.svc.DeleteConfig(ctx, cfg.ID), database.ErrNotFound)
}

func TestTableDeleteCascadesToConfigs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "a", []string{"K"}, [][]string{{"1"}})
	f.table(t, "b", []string{"K"}, [][]string{{"1"}})
	cfg, err := f.svc.CreateConfig(ctx, ConfigInput{
		Name: "ab", SourceTableKey: "a", TargetTableKey: "b",
		MatchColumns: []ColumnInput{{SourceColumn: "K", TargetColumn: "K"}},
	})
	require.NoError(t, err)
	_, err = f.svc.Execute(ctx, cfg.ID)
	require.NoError(t, err)

	require.NoError(t, f.tables.Delete(ctx, "b"))

	_, err = f.svc.GetConfig(ctx, cfg.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	results, err := f.svc.ListResults(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResultsListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.table(t, "a", []string{"K"}, [][]string{{"1"}})
	f.table(t, "b", []string{"K"}, [][]string{{"2"}})
	one, err := f.svc.CreateConfig(ctx, ConfigInput{Name: "one", SourceTableKey: "a", TargetTableKey: "b",
		MatchColumns: []ColumnInput{{SourceColumn: "K", TargetColumn: "K"}}})
	require.NoError(t, err)
	two, err := f.svc.CreateConfig(ctx, ConfigInput{Name: "two", SourceTableKey: "b", TargetTableKey: "a",
		MatchColumns: []ColumnInput{{SourceColumn: "K", TargetColumn: "K"}}})
	require.NoError(t, err)

	var ids []uint
	for _, id := range []uint{one.ID, two.ID, one.ID} {
		r, err := f.svc.Execute(ctx, id)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	all, err := f.svc.ListResults(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")

	limited, err := f.svc.ListResults(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	onlyOne, err := f.svc.ListResults(ctx, one.ID, 10)
	require.NoError(t, err)
	assert.Len(t, onlyOne, 2)
	for _, r := range onlyOne {
		assert.Equal(t, "one", r.ConfigName)
	}

	require.NoError(t, f.svc.DeleteResult(ctx, ids[0]))
	assert.ErrorIs(t, f.svc.DeleteResult(ctx, ids[0]), database.ErrNotFound)
	_, err = f.svc.GetResult(ctx, ids[0])
	assert.ErrorIs(t, err, database.ErrNotFound)
}
