package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ErrDisabled is returned by archive operations when no store is configured.
var ErrDisabled = errors.New("archive storage is disabled")

// Object describes one archived file.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores uploaded spreadsheets and generated exports in one bucket.
// A nil *Archive or one built without a client is disabled.
type Archive struct {
	client Client
	bucket string

	mu    sync.Mutex
	ready bool
}

// NewArchive wraps client for the given bucket.
func NewArchive(client Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// Enabled reports whether archive calls reach a store.
func (a *Archive) Enabled() bool {
	return a != nil && a.client != nil
}

// Bucket returns the archive bucket name.
func (a *Archive) Bucket() string {
	if a == nil {
		return ""
	}
	return a.bucket
}

// ObjectKey builds a unique, date partitioned key such as
// "uploads/2024/03/01/<uuid>-trades.xlsx".
func ObjectKey(kind, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return path.Join(kind, now.UTC().Format("2006/01/02"), uuid.NewString()+"-"+name)
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	a.ready = true
	return nil
}

// Put uploads data under key.
func (a *Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return nil
}

// Get downloads the object stored under key.
func (a *Archive) Get(ctx context.Context, key string) ([]byte, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// List returns archived objects under prefix, newest first.
func (a *Archive) List(ctx context.Context, prefix string) ([]Object, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	var objects []Object
	for info := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list archive: %w", info.Err)
		}
		objects = append(objects, Object{Key: info.Key, Size: info.Size, LastModified: info.LastModified})
	}
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// Remove deletes the object stored under key.
func (a *Archive) Remove(ctx context.Context, key string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
