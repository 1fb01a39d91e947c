package tables

import (
	"context"
	"testing"

	"didp/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	return NewService(db, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateInput{
		Key:      "trades",
		Name:     "Trades",
		Category: strPtr("fx"),
		Columns:  []string{"Ref", "Amount", "Ccy"},
		Data: [][]string{
			{"T1", "100", "EUR"},
			{"T2", "200"},
			{"T3", "300", "USD", "extra"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "trades", d.Key)
	assert.Equal(t, SourceMaster, d.SourceType)
	assert.Equal(t, 3, d.RowCount)
	assert.Equal(t, []string{"Ref", "Amount", "Ccy"}, d.Columns)
	assert.Equal(t, [][]string{
		{"T1", "100", "EUR"},
		{"T2", "200", ""},
		{"T3", "300", "USD"},
	}, d.Data)

	byID, err := svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Data, byID.Data)

	_, err = svc.GetByKey(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreateDuplicateKey(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Key: "dup", Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Key: "dup", Name: "B"})
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Key: "a", Name: "A", Category: strPtr("fx"), Columns: []string{"x", "y"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Key: "b", Name: "B", Category: strPtr("eq"), SourceType: SourceImported})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Key: "c", Name: "C", Category: strPtr("fx")})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ListFilter
		keys   []string
		total  int64
	}{
		{"All", ListFilter{}, []string{"a", "b", "c"}, 3},
		{"Category", ListFilter{Category: "fx"}, []string{"a", "c"}, 2},
		{"Source Type", ListFilter{SourceType: SourceImported}, []string{"b"}, 1},
		{"Paged", ListFilter{Skip: 1, Limit: 1}, []string{"b"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			var keys []string
			for _, s := range res.Tables {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, tt.keys, keys)
			assert.Equal(t, tt.total, res.Total)
		})
	}

	res, err := svc.List(ctx, ListFilter{Category: "fx"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tables[0].ColumnCount)
	assert.Equal(t, 0, res.Tables[1].ColumnCount)
}

func TestUpdateAndReplaceData(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Key: "t", Name: "T", Columns: []string{"A"}, Data: [][]string{{"1"}, {"2"}}})
	require.NoError(t, err)

	d, err := svc.Update(ctx, "t", UpdateInput{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", d.Name)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, d.Data, "metadata update keeps data")

	d, err = svc.ReplaceData(ctx, "t", DataInput{Columns: []string{"X", "Y"}, Data: [][]string{{"a", "b"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, d.Columns)
	assert.Equal(t, [][]string{{"a", "b"}}, d.Data)
	assert.Equal(t, 1, d.RowCount)

	_, err = svc.Update(ctx, "nope", UpdateInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteRunsHooks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateInput{Key: "t", Name: "T", Columns: []string{"A"}, Data: [][]string{{"1"}}})
	require.NoError(t, err)

	var seen []uint
	svc.OnDelete(func(tx *gorm.DB, id uint) error {
		seen = append(seen, id)
		return nil
	})

	require.NoError(t, svc.Delete(ctx, "t"))
	assert.Equal(t, []uint{d.ID}, seen)

	_, err = svc.GetByKey(ctx, "t")
	assert.ErrorIs(t, err, database.ErrNotFound)

	var rows int64
	require.NoError(t, svc.db.Model(&Row{}).Count(&rows).Error)
	assert.Zero(t, rows)

	assert.ErrorIs(t, svc.Delete(ctx, "t"), database.ErrNotFound)
}

func TestLoadManyAndMatchView(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Key: "b", Name: "B", Columns: []string{"K"}, Data: [][]string{{"x"}, {"y"}}})
	require.NoError(t, err)
	a, err := svc.Create(ctx, CreateInput{Key: "a", Name: "A", Columns: []string{"K"}})
	require.NoError(t, err)

	all, err := svc.LoadMany(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Key)

	some, err := svc.LoadMany(ctx, []string{"b"})
	require.NoError(t, err)
	require.Len(t, some, 1)

	_, err = svc.LoadMany(ctx, []string{"b", "zzz"})
	assert.ErrorIs(t, err, database.ErrNotFound)

	mt := ToMatchTable(some[0])
	assert.Equal(t, "b", mt.Key)
	assert.Equal(t, 1, mt.Rows[1].Index)
	assert.Equal(t, []string{"y"}, mt.Rows[1].Cells)

	keys, err := svc.KeysByID(ctx, a.ID, 12345)
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{a.ID: "a"}, keys)

	schemas, err := svc.Schemas(ctx)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "a", schemas[0].Key)
	assert.Equal(t, []string{"K"}, schemas[1].Columns)
	assert.Equal(t, 2, schemas[1].RowCount)
}

func TestLoadTableKeepsStoredRowIndexes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateInput{Key: "gaps", Name: "Gaps", Columns: []string{"K"},
		Data: [][]string{{"a"}, {"b"}, {"c"}}})
	require.NoError(t, err)
	require.NoError(t, svc.db.Where("table_id = ? AND row_index = ?", d.ID, 1).Delete(&Row{}).Error)
	require.NoError(t, svc.db.Model(&Row{}).Where("table_id = ? AND row_index = ?", d.ID, 2).Update("row_index", 7).Error)

	mt, err := svc.LoadTable(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, mt.Rows, 2)
	assert.Equal(t, 0, mt.Rows[0].Index)
	assert.Equal(t, 7, mt.Rows[1].Index)
	assert.Equal(t, []string{"c"}, mt.Rows[1].Cells)

	bare := ToMatchTable(&Detail{Columns: []string{"K"}, Data: [][]string{{"x"}, {"y"}}})
	assert.Equal(t, 1, bare.Rows[1].Index)
}

func TestLoadTableStorageFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `data_tables`").WillReturnError(assert.AnError)

	svc := NewService(db, zap.NewNop())
	_, err = svc.LoadTable(context.Background(), 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, database.ErrNotFound)
}
