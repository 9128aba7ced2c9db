package ws

import (
	"net/http"
	"strings"
)

// originChecker allows requests without an Origin header (native mobile
// clients) and, when allowed is non-empty, browser origins on the list.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(origin, o) {
				return true
			}
		}
		return false
	}
}
