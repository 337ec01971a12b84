package ez

import (
	"context"
	"errors"
	"net/http"

	"portfolio-api/internal/core/auth"
	"portfolio-api/internal/query"
	"portfolio-api/internal/service"
	resp "portfolio-api/internal/transport/http/response"
)

// FromError 把领域错误映射为 HTTP 错误；未识别的一律 500
func FromError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}

	var ve *service.ValidationError
	var pe *query.ParamError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		return &AErr{
			Code:   http.StatusBadRequest,
			Msg:    ve.Message,
			Err:    err,
			Fields: []resp.FieldError{{Field: ve.Field, Message: ve.Message}},
		}
	case errors.Is(err, query.ErrSearchRequired):
		return &AErr{Code: http.StatusBadRequest, Msg: "Search query is required", Err: err}
	case errors.As(err, &pe):
		return &AErr{Code: http.StatusBadRequest, Msg: pe.Error(), Err: err}
	case errors.Is(err, query.ErrInvalidQuery), errors.Is(err, service.ErrValidation):
		return &AErr{Code: http.StatusBadRequest, Msg: err.Error(), Err: err}
	case errors.Is(err, service.ErrInvalidCredentials):
		return &AErr{Code: http.StatusUnauthorized, Msg: "Invalid credentials", Err: err}
	case errors.Is(err, auth.ErrExpired), errors.Is(err, auth.ErrMalformed), errors.Is(err, auth.ErrInvalidSignature):
		return &AErr{Code: http.StatusUnauthorized, Msg: "Not authorized, token failed", Err: err}
	case errors.Is(err, service.ErrNotFound):
		return &AErr{Code: http.StatusNotFound, Msg: err.Error(), Err: err}
	case errors.Is(err, service.ErrEmailTaken):
		return &AErr{Code: http.StatusConflict, Msg: "User already exists with this email", Err: err}
	case errors.As(err, &mbe):
		return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: "request body too large", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &AErr{Code: http.StatusGatewayTimeout, Msg: "request timeout", Err: err}
	}
	return &AErr{Code: http.StatusInternalServerError, Msg: "internal server error", Err: err}
}
