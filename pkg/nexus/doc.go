// Package nexus provides an HTTP client for the Nexus Repository Manager 3
// REST API.
//
// # Overview
//
// The client covers the three endpoints an export needs:
//
//   - repository enumeration (GET /service/rest/v1/repositories)
//   - paginated asset listing (GET /service/rest/v1/components)
//   - artifact content download (the downloadUrl of each asset)
//
// Listing responses are cached through [cache.Cache] with a configurable
// TTL so repeated runs against a large server do not re-walk every page.
// Artifact content is never cached; it streams straight to disk.
//
// # Client Pattern
//
// Create a client once and share it:
//
//	client := nexus.NewClient(nexus.Config{
//	    BaseURL:  "https://nexus.example.com",
//	    Username: "admin",
//	    Password: "secret",
//	}, backend, 15*time.Minute)
//
//	repos, err := client.ListRepositories(ctx, false)
//
// List assets lazily, one page at a time:
//
//	pager := client.ListAssets("maven-releases", false)
//	for {
//	    asset, err := pager.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    // ...
//	}
//
// # Error Classification
//
// Responses are mapped onto the shared error taxonomy: 401/403 become
// fatal authentication errors, 404 a not-found error, and 429/5xx are
// wrapped as retryable so the retry layer re-attempts them with backoff.
//
// # Export Engine Adapter
//
// [Source] implements the export engine's source interface on top of the
// client, translating listed assets into artifact descriptors.
//
// [cache.Cache]: github.com/nexport/nexport/pkg/cache.Cache
package nexus
