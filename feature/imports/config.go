package imports

import "time"

// Config holds limits for the upload staging area.
type Config struct {
	// StagingTTLMinutes is how long an unconfirmed upload is kept.
	StagingTTLMinutes int `mapstructure:"staging_ttl_minutes" default:"30"`
	// PreviewRows is the number of data rows returned by upload and preview.
	PreviewRows int `mapstructure:"preview_rows" default:"20"`
	// MaxUploadMB caps the size of one uploaded file.
	MaxUploadMB int `mapstructure:"max_upload_mb" default:"50"`
}

// TTL returns the staging lifetime, defaulting to 30 minutes.
func (c Config) TTL() time.Duration {
	if c.StagingTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.StagingTTLMinutes) * time.Minute
}

func (c Config) previewRows() int {
	if c.PreviewRows <= 0 {
		return 20
	}
	return c.PreviewRows
}

func (c Config) maxUploadBytes() int {
	if c.MaxUploadMB <= 0 {
		return 50 * 1024 * 1024
	}
	return c.MaxUploadMB * 1024 * 1024
}
