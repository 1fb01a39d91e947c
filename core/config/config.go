package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"didp/core/database"
	"didp/core/logger"
	"didp/core/server"
	"didp/core/storage"
	"didp/feature/imports"
	"didp/feature/scripts"
	"didp/feature/sqlexec"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Database holds configuration for the row store.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the archive object store.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Imports holds limits for the upload staging area.
	Imports imports.Config `mapstructure:"imports"`
	// SQL holds limits for the ad-hoc SQL executor.
	SQL sqlexec.Config `mapstructure:"sql"`
	// Scripts holds limits for the script executor.
	Scripts scripts.Config `mapstructure:"scripts"`
}

// LoadConfig loads configuration from environment variables and an optional
// .env file located in path.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is fine (e.g. production)
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()

	// Register every key with its default so AutomaticEnv can see it
	bindValues(v, Config{}, "")

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues walks the struct and registers each mapstructure key in Viper
// with the value of its 'default' tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Set even when empty to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
