// Package sink writes serialized byte-code to its destination.
package sink

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Sink stores a serialized buffer at path.
type Sink interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}

// DefaultFileMode is used for written files when none is configured.
const DefaultFileMode os.FileMode = 0o644

// FileSink writes files to a filesystem. The whole buffer is handed to a
// single write call; a failed write may leave a truncated file behind.
type FileSink struct {
	Fs   afero.Fs
	Mode os.FileMode
}

// NewFileSink returns a FileSink on fs.
func NewFileSink(fs afero.Fs) *FileSink {
	return &FileSink{Fs: fs, Mode: DefaultFileMode}
}

// WriteFile writes data to path with the sink's file mode, replacing any
// existing file.
func (s *FileSink) WriteFile(ctx context.Context, path string, data []byte) error {
	mode := s.Mode
	if mode == 0 {
		mode = DefaultFileMode
	}
	return afero.WriteFile(s.Fs, path, data, mode)
}

// Router sends s3:// paths to the S3 sink and everything else to the file
// sink.
type Router struct {
	File Sink
	S3   Sink
}

// WriteFile dispatches to the S3 sink for s3:// paths and to the file sink
// otherwise. It returns ErrNoS3 when an S3 path arrives without an S3 sink.
func (r *Router) WriteFile(ctx context.Context, path string, data []byte) error {
	if IsS3URL(path) {
		if r.S3 == nil {
			return ErrNoS3
		}
		return r.S3.WriteFile(ctx, path, data)
	}
	return r.File.WriteFile(ctx, path, data)
}

// IsS3URL reports whether path names an S3 object.
func IsS3URL(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}
