package attendance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string     { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError { return &APIError{Code: CodeInvalidArgument, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) && api.Code == CodeInvalidArgument {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ===== Service =====

type Service struct {
	loc *time.Location
}

func NewService(loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{loc: loc}
}

// Normalize runs the normalizer on a posted payload. tz overrides the configured location.
func (s *Service) Normalize(_ context.Context, raw []byte, tz string) (NormalizeResponse, error) {
	loc := s.loc
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return NormalizeResponse{}, ErrInvalid("tz must be an IANA time zone name")
		}
		loc = l
	}
	days, shape := Normalize(raw, loc)
	return NormalizeResponse{Shape: shape, Days: days, Count: len(days)}, nil
}
