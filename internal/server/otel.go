package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// OTel starts a server span per request, named after the method and URL path.
func OTel(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "indexschema.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
