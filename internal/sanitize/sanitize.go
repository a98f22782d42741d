package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips all HTML. Policies are safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// Clean trims surrounding whitespace and strips any HTML markup.
func Clean(s string) string {
	return strict.Sanitize(strings.TrimSpace(s))
}
