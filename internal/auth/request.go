package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest returns the session token carried by r. The HttpOnly cookie
// wins over an Authorization bearer header; the ?token= query parameter is only
// consulted when allowQuery is set.
func TokenFromRequest(r *http.Request, allowQuery bool) string {
	if ck, err := r.Cookie(AuthCookieName); err == nil {
		if t := strings.TrimSpace(ck.Value); t != "" {
			return t
		}
	}
	if authz := r.Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if allowQuery {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}
