// Package pkg provides the core libraries for exporting Nexus repositories.
//
// # Overview
//
// Nexport walks every repository of a Sonatype Nexus server and mirrors
// each artifact into a local directory tree. The pkg directory is organized
// into three main areas:
//
//  1. [nexus] - Nexus REST API client (listing, pagination, content fetch)
//  2. [export] - Export engine (admission, bounded downloads, reporting)
//  3. infrastructure - caching, configuration, errors, retries, hooks
//
// # Architecture
//
// The typical data flow through an export run:
//
//	Nexus REST API
//	         ↓
//	    [nexus] package (list repositories, page through components)
//	         ↓
//	    [export] package (skip complete files, download the rest)
//	         ↓
//	    <output>/<repository>/<path> on disk + run report
//
// # Quick Start
//
// Export every repository of a server:
//
//	import (
//	    "context"
//	    "github.com/nexport/nexport/pkg/cache"
//	    "github.com/nexport/nexport/pkg/export"
//	    "github.com/nexport/nexport/pkg/nexus"
//	)
//
//	client := nexus.NewClient(nexus.Config{
//	    BaseURL:  "https://nexus.example.com",
//	    Username: "admin",
//	    Password: "secret",
//	}, cache.NewNullCache(), 0)
//
//	runner := export.NewRunner(nexus.NewSource(client, false), export.Options{
//	    Root:        "/srv/nexus-backup",
//	    Concurrency: 8,
//	})
//	report, err := runner.Run(context.Background())
//
// Runs are resumable: artifacts already on disk with the expected size are
// skipped, so repeating an interrupted run only fetches the gaps.
//
// # Main Packages
//
// [nexus] - Client for the Nexus REST API with basic auth, listing-response
// caching and retry classification. Pager walks the continuation-token
// pagination of the components endpoint; Source adapts the client to the
// export engine.
//
// [export] - The engine. Coordinator exports one repository through a
// bounded worker pool, Runner sequences repositories and assembles the
// final Report, Downloader performs temp-file-and-rename transfers with
// retries, Checker decides what can be skipped.
//
// ## Infrastructure
//
// [cache] - Listing cache backends: file (default), redis, and a null
// backend that disables caching.
//
// [config] - TOML configuration with NEXPORT_* environment overrides.
//
// [credentials] - Saved logins for the CLI (~/.config/nexport/).
//
// [errors] - Coded errors with retry and fatality classification.
//
// [httputil] - Retry with exponential backoff and the retryable error
// marker used across transfers and listings.
//
// [observability] - Hook interfaces through which the engine reports
// progress without depending on terminal or HTTP-server code.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/export/...     # Specific package
//
// [nexus]: https://pkg.go.dev/github.com/nexport/nexport/pkg/nexus
// [export]: https://pkg.go.dev/github.com/nexport/nexport/pkg/export
// [cache]: https://pkg.go.dev/github.com/nexport/nexport/pkg/cache
// [config]: https://pkg.go.dev/github.com/nexport/nexport/pkg/config
// [credentials]: https://pkg.go.dev/github.com/nexport/nexport/pkg/credentials
// [errors]: https://pkg.go.dev/github.com/nexport/nexport/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/nexport/nexport/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/nexport/nexport/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/nexport/nexport/pkg/buildinfo
package pkg
