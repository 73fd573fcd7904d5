package middleware

import (
	"net/http"

	apierrors "ordermetrics/internal/errors"
)

// Problem types written directly by middleware
const (
	TypeRateLimited      = apierrors.TypeRateLimit
	TypeTimeout          = apierrors.TypeTimeout
	TypeInternal         = apierrors.TypeInternal
	TypeUnsupportedMedia = "/errors/unsupported-media-type"
	TypeValidation       = apierrors.TypeValidation
)

// writeProblem sends an RFC 7807 response carrying the request trace id
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, detail string) *apierrors.ProblemDetails {
	problem := apierrors.NewProblemDetails(
		status,
		problemType,
		http.StatusText(status),
		detail,
		r.URL.Path,
	).WithExtension("trace_id", GetRequestID(r.Context()))

	_ = problem.Write(w)
	return problem
}
