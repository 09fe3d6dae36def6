// Package source resolves input locations to readable streams and creates
// output files. Inputs are local paths or s3://bucket/key objects.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"post-sieve/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrNotFound is returned when an input does not exist.
var ErrNotFound = errors.New("input not found")

// ErrNoStorage is returned for an s3:// input when no storage client is configured.
var ErrNoStorage = errors.New("object storage not configured")

const s3Scheme = "s3://"

// Location is a parsed input address.
type Location struct {
	// Bucket is empty for local files.
	Bucket string
	// Key is the object key or the local path.
	Key string
}

// Remote reports whether the location lives in object storage.
func (l Location) Remote() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.Remote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// Parse splits uri into a Location.
func Parse(uri string) (Location, error) {
	if !strings.HasPrefix(uri, s3Scheme) {
		if uri == "" {
			return Location{}, fmt.Errorf("empty input path")
		}
		return Location{Key: uri}, nil
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("invalid object uri %q: want s3://bucket/key", uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// NeedsStorage reports whether any of uris refers to object storage.
func NeedsStorage(uris ...string) bool {
	for _, u := range uris {
		if strings.HasPrefix(u, s3Scheme) {
			return true
		}
	}
	return false
}

// Opener opens inputs. The storage client may be nil when only local files are used.
type Opener struct {
	storage storage.Client
}

// NewOpener creates an Opener.
func NewOpener(client storage.Client) *Opener {
	return &Opener{storage: client}
}

// Check verifies that every input exists. It returns the first missing one
// wrapped in ErrNotFound.
func (o *Opener) Check(ctx context.Context, uris ...string) error {
	for _, uri := range uris {
		loc, err := Parse(uri)
		if err != nil {
			return err
		}
		if err := o.stat(ctx, loc); err != nil {
			return err
		}
	}
	return nil
}

func (o *Opener) stat(ctx context.Context, loc Location) error {
	if !loc.Remote() {
		info, err := os.Stat(loc.Key)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", loc, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", loc)
		}
		return nil
	}

	if o.storage == nil {
		return fmt.Errorf("%w: %s", ErrNoStorage, loc)
	}
	if _, err := o.storage.StatObject(ctx, loc.Bucket, loc.Key, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return fmt.Errorf("stat %s: %w", loc, err)
	}
	return nil
}

// Open returns a stream over the input at uri.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}

	if !loc.Remote() {
		f, err := os.Open(loc.Key)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		return f, nil
	}

	if o.storage == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoStorage, loc)
	}
	obj, err := o.storage.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	return obj, nil
}

// Create truncates or creates the local output file at path, creating
// parent directories as needed.
func Create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}
