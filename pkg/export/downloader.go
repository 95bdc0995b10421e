package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nexport/nexport/pkg/errors"
	"github.com/nexport/nexport/pkg/httputil"
)

const (
	tmpSuffix      = ".part"
	defaultBackoff = time.Second
)

// Downloader transfers single artifacts to disk.
//
// Each transfer streams to a temporary file next to the destination and is
// renamed into place only on full success, so a crash or a concurrent
// existence check never observes a half-written artifact. The temporary
// file is removed on every failure path.
type Downloader struct {
	Fetcher Fetcher
	Root    string

	// Retries is the number of re-attempts after a transient failure
	// (total attempts = Retries + 1).
	Retries int

	// Backoff is the initial delay between attempts, doubled each retry.
	Backoff time.Duration
}

// Download fetches d and writes it under the output root, returning the
// number of bytes written. Transient failures (connection drops, truncated
// streams, 5xx fetch errors) are retried with exponential backoff; local
// filesystem errors fail immediately.
func (w Downloader) Download(ctx context.Context, d Descriptor) (int64, error) {
	dest, err := DestPath(w.Root, d)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "create directory for %s", d.Path)
	}

	backoff := w.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	var written int64
	err = httputil.Retry(ctx, w.Retries+1, backoff, func() error {
		n, err := w.transfer(ctx, d, dest)
		written = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// transfer performs one download attempt.
func (w Downloader) transfer(ctx context.Context, d Descriptor, dest string) (int64, error) {
	body, err := w.Fetcher.Fetch(ctx, d)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmp := dest + tmpSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "create %s", tmp)
	}

	n, err := io.Copy(f, transientReader{body})
	if err != nil {
		f.Close()
		os.Remove(tmp)
		if httputil.IsRetryable(err) {
			return 0, err
		}
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "write %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "close %s", tmp)
	}

	// A transfer shorter or longer than the declared size means the stream
	// was cut or the listing is stale; either way the bytes on disk are not
	// the artifact.
	if d.Size != SizeUnknown && n != d.Size {
		os.Remove(tmp)
		return 0, httputil.Retryable(errors.New(errors.ErrCodeNetwork,
			"short transfer for %s: got %d bytes, want %d", d.Path, n, d.Size))
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "rename %s into place", tmp)
	}
	return n, nil
}

// transientReader marks read-side failures as retryable so the retry layer
// re-attempts interrupted streams but not local write errors.
type transientReader struct {
	r io.Reader
}

func (t transientReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		return n, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read artifact stream"))
	}
	return n, err
}
