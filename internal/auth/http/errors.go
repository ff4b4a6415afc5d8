package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

const msgInternal = "Internal Server Error!"

// ErrorResponder turns any error into the uniform failure envelope. In
// development mode the error chain is returned as "stack".
type ErrorResponder struct {
	Dev bool
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (e *ErrorResponder) Write(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	code := statusFor(kind)

	msg := msgInternal
	var se *service.Error
	switch {
	case errors.As(err, &se):
		msg = se.Message
	case kind == service.KindAuthorization:
		msg = "Authorization failed!"
	}

	log := slogx.FromContext(r.Context())
	if code >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("kind", kind.String()), slog.Any("err", err))
	} else {
		log.Debug("request rejected", slog.String("kind", kind.String()), slog.Any("err", err))
	}

	body := httpx.ErrorBody{Success: false, Message: msg}
	if e != nil && e.Dev {
		body.Stack = errorChain(err)
	}
	httpx.WriteJSON(w, code, body)
}

// errorChain renders err and every error it wraps, one per line.
func errorChain(err error) string {
	var lines []string
	queue := []error{err}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%T: %v", cur, cur))

		switch u := cur.(type) {
		case interface{ Unwrap() error }:
			queue = append(queue, u.Unwrap())
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		}
	}
	return strings.Join(lines, "\n")
}
