package server_test

import (
	"testing"

	"didp/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_BodyLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"Configured", 10, 10 * 1024 * 1024},
		{"Zero Falls Back", 0, 50 * 1024 * 1024},
		{"Negative Falls Back", -1, 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{BodyLimitMB: tt.limit}
			assert.Equal(t, tt.want, c.BodyLimit())
		})
	}
}

func TestConfig_Prefix(t *testing.T) {
	assert.Equal(t, "/api/v1", server.Config{}.Prefix())
	assert.Equal(t, "/api/v2", server.Config{APIPrefix: "/api/v2"}.Prefix())
}
