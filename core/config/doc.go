// Package config provides configuration management for didp.
//
// Values come from environment variables, optionally seeded from a .env file.
// Defaults live next to each setting as `default` struct tags and are
// registered in Viper by reflection, so a new field only needs its tags.
//
// # Sections
//
//   - Server: port, API key, route prefix, CORS origins, body limit
//   - Database: sqlite (default) or mysql connection
//   - Storage: MinIO/S3 archive bucket, disabled by default
//   - Log: level and format
//   - Imports, SQL, Scripts: executor and staging limits
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Driver)
package config
