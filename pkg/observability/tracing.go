// Package observability provides X-Ray tracing for the HTTP surface.
package observability

import (
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// TracingMiddleware wraps handlers in an X-Ray segment named after the
// service. Enable only where an X-Ray daemon or the Lambda runtime is
// present, otherwise every request logs a missing-daemon error.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	namer := xray.NewFixedSegmentNamer(serviceName)
	return func(next http.Handler) http.Handler {
		return xray.Handler(namer, next)
	}
}
