// Package insight provides the data contract and HTTP client for the page
// analysis service.
//
// # Overview
//
// The service exposes a single endpoint, POST /api/analyze, that accepts a
// URL and returns a structured summary of the page: HTML version, title,
// heading counts, link statistics and login-form presence.
//
// The package is split into two files:
//
//   - types.go: request/response shapes and contract validation
//   - client.go: HTTP client and failure normalization
//
// # Client Usage
//
//	client, err := insight.NewClient("127.0.0.1:8080", insight.WithTimeout(30*time.Second))
//	if err != nil {
//		return err
//	}
//
//	resp, err := client.Analyze(ctx, "https://example.com")
//	if err != nil {
//		failure := insight.AsErrorResponse(err)
//		fmt.Println(failure) // Error 503: Service unavailable
//	}
//
// # Failure Taxonomy
//
// Analyze only ever fails with an *ErrorResponse:
//
//   - Service error: the service answered with a non-2xx status and a
//     {statusCode, message} body. Both fields are passed through unchanged.
//   - Transport failure: dial errors, timeouts, unreadable bodies, non-JSON
//     bodies and contract violations in a 2xx body. These collapse into
//     StatusCode 0 with the fixed message "An unexpected error occurred.".
//     The underlying cause is logged, never returned.
//
// # Contract Validation
//
// DecodeAnalyzeResponse checks the decoded body before it reaches the
// renderer. Every field of AnalyzeResponse is required; counts must be
// non-negative integers, headings must be an object of counts, and
// htmlVersion/title/hasLoginForm must have their JSON kinds. Violations are
// reported as *ContractError naming the offending field.
//
// Heading keys that are absent simply count as zero (see HeadingCount).
//
// # Request Correlation
//
// Every request carries a random X-Request-ID header. The same id is
// attached to the client's log lines so a failed analysis can be matched
// with the service's request log.
package insight
