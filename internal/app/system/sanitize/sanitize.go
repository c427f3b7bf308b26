// internal/app/system/sanitize/sanitize.go
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips all markup. Free-text fields (transaction reasons, task
// titles and descriptions) are rendered verbatim by the SPA, so nothing
// that survives here may carry HTML.
var policy = bluemonday.StrictPolicy()

// Text strips any markup from a free-text input and trims whitespace.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
