package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// APIPrefix is the route group every feature is mounted under.
	APIPrefix string `mapstructure:"api_prefix" default:"/api/v1"`
	// AllowOrigins is the comma separated CORS origin list.
	AllowOrigins string `mapstructure:"allow_origins" default:"*"`
	// BodyLimitMB caps request bodies, uploads included.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"50"`
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 50 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// Prefix returns the API prefix, defaulting to /api/v1.
func (c Config) Prefix() string {
	if c.APIPrefix == "" {
		return "/api/v1"
	}
	return c.APIPrefix
}
