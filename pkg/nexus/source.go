package nexus

import (
	"context"
	"io"

	"github.com/nexport/nexport/pkg/export"
)

// Source adapts a Client to the export engine's view of the server.
type Source struct {
	client  *Client
	refresh bool
}

// NewSource wraps client for use by the export engine.
// If refresh is true, listing caches are bypassed for the whole run.
func NewSource(client *Client, refresh bool) *Source {
	return &Source{client: client, refresh: refresh}
}

// Repositories enumerates the names of all repositories on the server.
func (s *Source) Repositories(ctx context.Context) ([]string, error) {
	repos, err := s.client.ListRepositories(ctx, s.refresh)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names, nil
}

// List returns a pager over one repository's artifacts.
func (s *Source) List(repository string) export.Pager {
	return &assetPager{pager: s.client.ListAssets(repository, s.refresh)}
}

// Fetch opens the content stream for one artifact.
func (s *Source) Fetch(ctx context.Context, d export.Descriptor) (io.ReadCloser, error) {
	return s.client.Fetch(ctx, d.URL)
}

var _ export.Source = (*Source)(nil)

// assetPager converts listed assets into export descriptors.
type assetPager struct {
	pager *Pager
}

func (p *assetPager) Next(ctx context.Context) (export.Descriptor, error) {
	a, err := p.pager.Next(ctx)
	if err != nil {
		return export.Descriptor{}, err
	}
	return export.Descriptor{
		Repository: a.Repository,
		Path:       a.Path,
		URL:        a.DownloadURL,
		Size:       a.Size,
	}, nil
}
