package fixtures

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
)

// Source reads fixture documents by file name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// DirSource reads fixtures from a local directory.
type DirSource struct {
	Dir string
}

// DefaultDir is the data directory shipped next to this package.
func DefaultDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("fixtures", "data")
	}
	return filepath.Join(filepath.Dir(file), "data")
}

// NewDirSource returns a DirSource for dir, or DefaultDir when dir is empty.
func NewDirSource(dir string) DirSource {
	if dir == "" {
		dir = DefaultDir()
	}
	return DirSource{Dir: dir}
}

func (s DirSource) Read(_ context.Context, name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	return b, nil
}

// ObjectReader is implemented by *aws_pkg.ObjectReader.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Source reads fixtures from bucket under prefix.
type S3Source struct {
	Reader ObjectReader
	Bucket string
	Prefix string
}

func (s S3Source) Read(ctx context.Context, name string) ([]byte, error) {
	key := path.Join(s.Prefix, name)
	b, err := s.Reader.ReadObject(ctx, s.Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	return b, nil
}

// SelectSource returns an S3Source when bucket is set and reader is available,
// otherwise a DirSource for dir.
func SelectSource(dir, bucket, prefix string, reader ObjectReader) Source {
	if bucket != "" && reader != nil {
		return S3Source{Reader: reader, Bucket: bucket, Prefix: prefix}
	}
	return NewDirSource(dir)
}
