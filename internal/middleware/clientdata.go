package middleware

import (
	"net"
	"net/http"
	"strings"

	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

const (
	forwardedForHeader = "X-Forwarded-For"
	realIPHeader       = "X-Real-IP"
)

// ClientDataMiddleware stores the caller address and user agent in the
// context so audit entries can record them.
func ClientDataMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tenancyctx.InjectClientInfo(r.Context(), tenancyctx.ClientInfo{
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP returns the first parseable address of the forwarding headers or
// the remote address. Anything that is not an IP is dropped.
func clientIP(r *http.Request) string {
	candidates := strings.Split(r.Header.Get(forwardedForHeader), ",")
	candidates = append(candidates, r.Header.Get(realIPHeader))

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	candidates = append(candidates, host)

	for _, c := range candidates {
		ip := net.ParseIP(strings.TrimSpace(c))
		if ip != nil {
			return ip.String()
		}
	}

	return ""
}
