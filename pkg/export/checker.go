package export

import (
	"os"

	"github.com/nexport/nexport/pkg/errors"
)

// Checker decides whether a prior complete download already exists, making
// repeated runs against the same server idempotent.
type Checker struct {
	Root string
}

// Complete reports whether the artifact described by d is already fully
// present under the output root. A file whose declared size is known must
// match it exactly, so a truncated download from an interrupted run reads
// as incomplete and is fetched again from scratch. When the size is
// unknown, existence alone counts; the file content is never verified.
func (c Checker) Complete(d Descriptor) (bool, error) {
	dest, err := DestPath(c.Root, d)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(dest)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, errors.Wrap(errors.ErrCodeStorage, err, "stat %s", dest)
	case info.IsDir():
		return false, errors.New(errors.ErrCodeStorage, "destination %s is a directory", dest)
	case d.Size == SizeUnknown:
		return true, nil
	default:
		return info.Size() == d.Size, nil
	}
}
