package controllers

import (
	"errors"
	"net/http"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"
)

// statusFor maps the security error taxonomy onto HTTP status codes. The
// message sent to the client is always the generic class text; the precise
// reason stays in the attempt log.
func statusFor(err error) int {
	var rl *security.RateLimitError
	var lo *security.LockoutError
	var ve *security.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &rl), errors.As(err, &lo):
		return http.StatusTooManyRequests
	case errors.Is(err, security.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, security.ErrInactiveAccount):
		return http.StatusForbidden
	case errors.Is(err, security.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
