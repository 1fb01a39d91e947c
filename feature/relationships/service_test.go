package relationships

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"didp/core/database"
	"didp/feature/tables"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*Service, *tables.Service) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, append(tables.Models(), &Relationship{})...))

	tbl := tables.NewService(db, zap.NewNop())
	ctx := context.Background()
	for _, k := range []string{"trades", "counterparties", "books"} {
		_, err := tbl.Create(ctx, tables.CreateInput{Key: k, Name: k, Columns: []string{"id"}})
		require.NoError(t, err)
	}
	return NewService(db, tbl, zap.NewNop()), tbl
}

func TestRelationshipLifecycle(t *testing.T) {
	svc, tbl := setup(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateInput{
		SourceTableKey:   "trades",
		SourceColumn:     "cp_id",
		TargetTableKey:   "counterparties",
		TargetColumn:     "id",
		RelationshipType: "lookup",
	})
	require.NoError(t, err)
	assert.Equal(t, "trades", v.SourceTableKey)
	assert.Equal(t, "counterparties", v.TargetTableKey)

	_, err = svc.Create(ctx, CreateInput{
		SourceTableKey:   "books",
		SourceColumn:     "id",
		TargetTableKey:   "trades",
		TargetColumn:     "book",
		RelationshipType: "foreignKey",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{SourceTableKey: "nope", TargetTableKey: "trades"})
	assert.ErrorIs(t, err, database.ErrNotFound)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyCP, err := svc.List(ctx, "counterparties")
	require.NoError(t, err)
	assert.Len(t, onlyCP, 1)

	_, err = svc.List(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)

	kind := "match"
	v, err = svc.Update(ctx, v.ID, UpdateInput{RelationshipType: &kind})
	require.NoError(t, err)
	assert.Equal(t, "match", v.RelationshipType)

	require.NoError(t, tbl.Delete(ctx, "trades"))
	all, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all, "relationships follow their tables")

	assert.ErrorIs(t, svc.Delete(ctx, v.ID), database.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setup(t)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Valid", `{"source_table_key":"trades","source_column":"a","target_table_key":"books","target_column":"b","relationship_type":"lookup"}`, fiber.StatusCreated},
		{"Bad Type", `{"source_table_key":"trades","source_column":"a","target_table_key":"books","target_column":"b","relationship_type":"join"}`, fiber.StatusBadRequest},
		{"Unknown Table", `{"source_table_key":"x","source_column":"a","target_table_key":"books","target_column":"b","relationship_type":"lookup"}`, fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/relationships", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, 2000)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
