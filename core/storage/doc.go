// Package storage wraps the MinIO client used to archive uploaded source
// files and generated workbooks.
//
// The Client interface abstracts the provider so tests can use the testify
// mock in core/storage/mocks. Archive layers bucket bootstrapping and key
// naming on top of it; when storage is disabled in configuration the archive
// is built without a client and every call returns ErrDisabled.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	archive := storage.NewArchive(client, cfg.Storage.Bucket)
//	key := storage.ObjectKey("exports", "result.xlsx", time.Now())
//	err = archive.Put(ctx, key, data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
package storage
