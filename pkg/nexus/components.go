package nexus

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/nexport/nexport/pkg/observability"
)

// SizeUnknown marks an asset whose size the server did not declare.
// Some repository formats omit fileSize from the components listing.
const SizeUnknown int64 = -1

// Asset is one downloadable file in a repository.
type Asset struct {
	Repository  string
	Path        string
	DownloadURL string
	Size        int64 // SizeUnknown when not declared
}

// Pager iterates a repository's assets page by page using the components
// endpoint and its continuation token. The sequence is finite and not
// restartable; create a new Pager to list again from the start.
//
// A Pager is not safe for concurrent use.
type Pager struct {
	client     *Client
	repository string
	refresh    bool

	token string
	done  bool
	err   error
	page  []Asset
	idx   int
}

// ListAssets returns a Pager over all assets of the repository.
// If refresh is true, cached listing pages are bypassed.
func (c *Client) ListAssets(repository string, refresh bool) *Pager {
	return &Pager{client: c, repository: repository, refresh: refresh}
}

// Next returns the next asset, fetching further pages as needed.
// It returns io.EOF when the listing is exhausted. A listing failure is
// sticky: every call after it returns the same error.
func (p *Pager) Next(ctx context.Context) (Asset, error) {
	for p.idx >= len(p.page) {
		if p.err != nil {
			return Asset{}, p.err
		}
		if p.done {
			return Asset{}, io.EOF
		}
		if err := p.fetchPage(ctx); err != nil {
			p.err = err
			return Asset{}, err
		}
	}
	a := p.page[p.idx]
	p.idx++
	return a, nil
}

func (p *Pager) fetchPage(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s%s/components?repository=%s",
		p.client.baseURL, restPrefix, url.QueryEscape(p.repository))
	if p.token != "" {
		endpoint += "&continuationToken=" + url.QueryEscape(p.token)
	}
	key := fmt.Sprintf("components:%s:%s:%s", p.client.baseURL, p.repository, p.token)

	var resp componentsResponse
	err := p.client.Cached(ctx, key, p.refresh, &resp, func() error {
		return p.client.GetJSON(ctx, endpoint, &resp)
	})
	if err != nil {
		return err
	}

	p.page = flatten(p.repository, resp.Items)
	p.idx = 0
	if resp.ContinuationToken == nil || *resp.ContinuationToken == "" {
		p.done = true
	} else {
		p.token = *resp.ContinuationToken
	}

	observability.Export().OnListingPage(ctx, p.repository, len(p.page))
	return nil
}

// flatten expands component items into assets, dropping entries the server
// returned without a path or download URL.
func flatten(repository string, items []componentItem) []Asset {
	var assets []Asset
	for _, item := range items {
		for _, a := range item.Assets {
			if a.Path == "" || a.DownloadURL == "" {
				continue
			}
			size := SizeUnknown
			if a.FileSize != nil {
				size = *a.FileSize
			}
			assets = append(assets, Asset{
				Repository:  repository,
				Path:        strings.TrimPrefix(a.Path, "/"),
				DownloadURL: a.DownloadURL,
				Size:        size,
			})
		}
	}
	return assets
}

type componentsResponse struct {
	Items             []componentItem `json:"items"`
	ContinuationToken *string         `json:"continuationToken"`
}

type componentItem struct {
	ID     string      `json:"id"`
	Group  string      `json:"group"`
	Name   string      `json:"name"`
	Assets []assetItem `json:"assets"`
}

type assetItem struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	DownloadURL string `json:"downloadUrl"`
	FileSize    *int64 `json:"fileSize"`
}
