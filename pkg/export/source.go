package export

import (
	"context"
	"io"
)

// Source is the remote artifact server as seen by the export engine.
// *nexus.Source implements it; tests substitute fakes.
type Source interface {
	// Repositories enumerates the repository names available for export.
	Repositories(ctx context.Context) ([]string, error)

	// List returns a pager over one repository's artifacts. Listing work
	// happens lazily inside Next, never in List itself.
	List(repository string) Pager

	// Fetch opens the content stream for one artifact.
	Fetch(ctx context.Context, d Descriptor) (io.ReadCloser, error)
}

// Pager yields artifact descriptors one at a time. Next returns io.EOF when
// the listing is exhausted. The sequence is finite and not restartable;
// re-listing starts from the beginning with a fresh Pager.
type Pager interface {
	Next(ctx context.Context) (Descriptor, error)
}

// Fetcher is the part of Source the download worker needs.
type Fetcher interface {
	Fetch(ctx context.Context, d Descriptor) (io.ReadCloser, error)
}
