package nexus

import "context"

// Repository describes one repository on the server.
type Repository struct {
	Name   string `json:"name"`
	Format string `json:"format"` // maven2, npm, raw, ...
	Type   string `json:"type"`   // hosted, proxy, group
	URL    string `json:"url"`
}

// ListRepositories returns all repositories visible to the configured user.
// If refresh is true, the listing cache is bypassed.
func (c *Client) ListRepositories(ctx context.Context, refresh bool) ([]Repository, error) {
	key := "repositories:" + c.baseURL

	var repos []Repository
	err := c.Cached(ctx, key, refresh, &repos, func() error {
		return c.GetJSON(ctx, c.baseURL+restPrefix+"/repositories", &repos)
	})
	if err != nil {
		return nil, err
	}
	return repos, nil
}
