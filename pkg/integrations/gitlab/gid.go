package gitlab

import (
	"regexp"
	"strconv"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
)

var globalIDPattern = regexp.MustCompile(`(?i)^gid://gitlab/Project/(\d+)$`)

// NumericID extracts n from a project global ID "gid://gitlab/Project/n".
// Any other input is an INVALID_GLOBAL_ID error.
func NumericID(globalID string) (int64, error) {
	m := globalIDPattern.FindStringSubmatch(globalID)
	if m == nil {
		return 0, gwerrors.New(gwerrors.ErrCodeInvalidGlobalID, "invalid project global ID %q", globalID)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, gwerrors.Wrap(gwerrors.ErrCodeInvalidGlobalID, err, "invalid project global ID %q", globalID)
	}
	return id, nil
}
