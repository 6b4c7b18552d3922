package server

import (
	"regexp"
	"strings"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

var (
	p2Pattern       = regexp.MustCompile(`^(.+)/p2/([^/]+)/([^/]+?)(?:~dev)?(?:\.json)?$`)
	packagesPattern = regexp.MustCompile(`^(.+)/packages(?:\.json)?$`)
)

// ParsePath turns a request path below the root, without the leading "/",
// into a selector. Paths that match no route are NOT_FOUND errors.
func ParsePath(p string) (gitlab.Selector, error) {
	var sel gitlab.Selector
	var scope string

	// packages routes win over p2, so a group named "p2" stays routable.
	if m := packagesPattern.FindStringSubmatch(p); m != nil {
		scope = m[1]
	} else if m := p2Pattern.FindStringSubmatch(p); m != nil {
		scope = m[1]
		sel.PackageName = m[2] + "/" + m[3]
		if err := gwerrors.ValidateComposerPackageName(sel.PackageName); err != nil {
			return gitlab.Selector{}, err
		}
	} else {
		return gitlab.Selector{}, gwerrors.New(gwerrors.ErrCodeNotFound, "no route for /%s", p)
	}

	if err := gwerrors.ValidatePath(scope); err != nil {
		return gitlab.Selector{}, err
	}
	segments := strings.Split(scope, "/")
	for _, s := range segments {
		if s == "" {
			return gitlab.Selector{}, gwerrors.New(gwerrors.ErrCodeInvalidPath, "empty segment in %q", scope)
		}
	}

	if len(segments) == 1 {
		sel.Namespace = segments[0]
		return sel, nil
	}
	sel.Project = segments[len(segments)-1]
	sel.Namespace = strings.Join(segments[:len(segments)-1], "/")
	return sel, nil
}
