package valuemapping

import (
	"context"
	"net/http/httptest"
	"testing"

	"didp/core/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &ValueMapping{}))
	return NewService(db, zap.NewNop())
}

func TestApplyAndReverse(t *testing.T) {
	m := &ValueMapping{Mappings: map[string]string{"B": "BUY", "Buy": "BUY", "S": "SELL"}}

	tests := []struct {
		name    string
		fn      func(string) string
		in, out string
	}{
		{"Apply Hit", m.Apply, "S", "SELL"},
		{"Apply Miss Is Identity", m.Apply, "X", "X"},
		{"Apply Is Exact", m.Apply, "s", "s"},
		{"Reverse Smallest Source Wins", m.Reverse, "BUY", "B"},
		{"Reverse Single", m.Reverse, "SELL", "S"},
		{"Reverse Miss Is Identity", m.Reverse, "HOLD", "HOLD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, tt.fn(tt.in))
		})
	}
}

func TestServiceCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: "side", Mappings: map[string]string{"B": "BUY"}})
	require.NoError(t, err)
	assert.NotZero(t, m.ID)

	got, err := svc.LoadMapping(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"B": "BUY"}, got)

	name := "direction"
	m, err = svc.Update(ctx, m.ID, UpdateInput{Name: &name, Mappings: map[string]string{"S": "SELL"}})
	require.NoError(t, err)
	assert.Equal(t, "direction", m.Name)

	tr, err := svc.Apply(ctx, m.ID, "S")
	require.NoError(t, err)
	assert.Equal(t, Translation{Original: "S", Transformed: "SELL"}, *tr)

	tr, err = svc.Reverse(ctx, m.ID, "SELL")
	require.NoError(t, err)
	assert.Equal(t, "S", tr.Original)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	var hooked []uint
	svc.OnDelete(func(tx *gorm.DB, id uint) error {
		hooked = append(hooked, id)
		return nil
	})
	require.NoError(t, svc.Delete(ctx, m.ID))
	assert.Equal(t, []uint{m.ID}, hooked)

	_, err = svc.LoadMapping(ctx, m.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, m.ID), database.ErrNotFound)
}

func TestDeleteHookFailureKeepsMapping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: "x", Mappings: map[string]string{}})
	require.NoError(t, err)

	svc.OnDelete(func(tx *gorm.DB, id uint) error { return assert.AnError })
	assert.ErrorIs(t, svc.Delete(ctx, m.ID), assert.AnError)

	_, err = svc.Get(ctx, m.ID)
	assert.NoError(t, err)
}

func TestHandlerRoutes(t *testing.T) {
	svc := newTestService(t)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	m, err := svc.Create(context.Background(), CreateInput{Name: "ccy", Mappings: map[string]string{"EURO": "EUR"}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"Get", "GET", "/value-mappings/1", fiber.StatusOK},
		{"Get Missing", "GET", "/value-mappings/99", fiber.StatusNotFound},
		{"Bad ID", "GET", "/value-mappings/abc", fiber.StatusBadRequest},
		{"Apply", "POST", "/value-mappings/1/apply?value=EURO", fiber.StatusOK},
		{"Reverse Missing", "POST", "/value-mappings/99/reverse?value=EUR", fiber.StatusNotFound},
		{"Delete", "DELETE", "/value-mappings/1", fiber.StatusNoContent},
	}
	require.Equal(t, uint(1), m.ID)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), 2000)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
