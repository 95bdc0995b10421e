package export

import (
	"path/filepath"

	"github.com/nexport/nexport/pkg/errors"
)

// SizeUnknown marks a descriptor whose remote size was not declared.
const SizeUnknown int64 = -1

// Artifact statuses recorded in outcomes.
const (
	StatusDownloaded = "downloaded"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
	StatusPlanned    = "planned"
)

// Descriptor identifies one artifact within a repository. It is immutable
// once produced by a listing; the relative path doubles as the local
// destination under the output root.
type Descriptor struct {
	Repository string `json:"repository"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	Size       int64  `json:"size"` // SizeUnknown when not declared
}

// Outcome records what happened to one descriptor. Every listed descriptor
// produces exactly one outcome; Bytes is zero unless the artifact was
// downloaded in this run.
type Outcome struct {
	Descriptor Descriptor `json:"descriptor"`
	Status     string     `json:"status"`
	Bytes      int64      `json:"bytes,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// DestPath computes the local destination for d under root, namespaced by
// repository. Repository name and artifact path are validated first so a
// hostile listing cannot place files outside the output tree.
func DestPath(root string, d Descriptor) (string, error) {
	if err := errors.ValidateRepositoryName(d.Repository); err != nil {
		return "", err
	}
	if err := errors.ValidateArtifactPath(d.Path); err != nil {
		return "", err
	}
	return filepath.Join(root, d.Repository, filepath.FromSlash(d.Path)), nil
}
