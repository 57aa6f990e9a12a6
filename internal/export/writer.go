package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/okian/boxbox/pkg/logger"
	"github.com/okian/boxbox/pkg/metrics"
)

// Writer persists documents into the output directory. A directory-level
// lock guards against two concurrent runs interleaving writes; each file is
// staged to a temp name and renamed into place.
type Writer struct {
	dir string
	lg  logger.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, lg: logger.Named("export")}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteJSON marshals doc as pretty-printed JSON and replaces name in the
// output directory. Returns the written path.
func (w *Writer) WriteJSON(ctx context.Context, name string, doc any) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMarshalDocument, name, err)
	}
	return w.writeFile(ctx, name, data)
}

// WriteMetrics dumps the pipeline's metric registry in Prometheus text
// exposition format alongside the documents.
func (w *Writer) WriteMetrics(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := metrics.WriteTo(&buf); err != nil {
		return "", err
	}
	return w.writeFile(ctx, MetricsFileName, buf.Bytes())
}

func (w *Writer) writeFile(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}

	lock := flock.New(filepath.Join(w.dir, ".boxbox.lock"))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("%w: lock output dir: %v", ErrWriteDocument, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.lg.Warn(ctx, "failed to release output dir lock", logger.Error(err))
		}
	}()

	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWriteDocument, name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: %s: %v", ErrWriteDocument, name, err)
	}

	metrics.RecordDocumentWritten()
	w.lg.Info(ctx, "document written", logger.String("path", path), logger.Int("bytes", len(data)))
	return path, nil
}
