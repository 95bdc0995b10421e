// Package export implements the concurrent artifact export engine.
//
// # Overview
//
// The engine copies every artifact of a set of repositories to a local
// directory tree, skipping files that earlier runs already transferred.
// Work flows through a fixed pipeline:
//
//	Runner -> Coordinator -> Pager -> Checker -> worker pool -> Downloader
//
// The [Runner] enumerates repositories and runs one [Coordinator] per
// repository. The coordinator walks the repository's listing lazily, one
// page at a time, routes each descriptor through the [Checker], and hands
// the remainder to a pool of download workers capped at the configured
// concurrency. Workers stream each artifact to a temporary file and rename
// it into place only on full success.
//
// # Outcomes
//
// Every listed descriptor yields exactly one [Outcome]: downloaded,
// skipped, planned (dry-run) or failed. Outcomes flow through a single
// collector goroutine into the repository [Summary], so aggregation needs
// no locks no matter how many workers complete concurrently. The summaries
// and their grand total form the final [Report].
//
// # Failure Semantics
//
// Failures are contained at the smallest useful scope. A failed transfer
// is retried with exponential backoff and eventually recorded as a failed
// outcome; the repository continues. A failed listing marks the repository
// incomplete; the run continues with the next repository. Authentication
// failures stop the whole run, since every further request would be
// rejected the same way. Because completed files are skipped on the next
// run, rerunning after any failure retries only the gaps.
package export
