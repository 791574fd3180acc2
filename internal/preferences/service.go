package preferences

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	dateLayout   = "2006-01-02"
	maxFavorites = 50
)

var userKeyRe = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)

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

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) && api.Code == CodeInvalidArgument {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ===== Service =====

type Repository interface {
	Get(ctx context.Context, userKey string) (*Preferences, error)
	Put(ctx context.Context, p Preferences) (*Preferences, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Get returns empty preferences for a user with nothing stored.
func (s *Service) Get(ctx context.Context, userKey string) (*PreferencesResponse, error) {
	if !userKeyRe.MatchString(userKey) {
		return nil, ErrInvalid("invalid user_key")
	}
	p, err := s.repo.Get(ctx, userKey)
	if err != nil {
		s.log.Error("get preferences", zap.String("user_key", userKey), zap.Error(err))
		return nil, ErrInternal("failed to load preferences")
	}
	if p == nil {
		p = &Preferences{UserKey: userKey}
	}
	return toResponse(p), nil
}

func (s *Service) Put(ctx context.Context, userKey string, req PutPreferencesRequest) (*PreferencesResponse, error) {
	if !userKeyRe.MatchString(userKey) {
		return nil, ErrInvalid("invalid user_key")
	}
	favs := CleanFavorites(req.FavoriteDashboards)
	if len(favs) > maxFavorites {
		return nil, ErrInvalid(fmt.Sprintf("at most %d favorite dashboards", maxFavorites))
	}
	var lastDate string
	if req.LastDate != nil && *req.LastDate != "" {
		if _, err := time.Parse(dateLayout, *req.LastDate); err != nil {
			return nil, ErrInvalid("last_date must be YYYY-MM-DD")
		}
		lastDate = *req.LastDate
	}

	p, err := s.repo.Put(ctx, Preferences{UserKey: userKey, FavoriteDashboards: favs, LastDate: lastDate})
	if err != nil {
		s.log.Error("put preferences", zap.String("user_key", userKey), zap.Error(err))
		return nil, ErrInternal("failed to save preferences")
	}
	return toResponse(p), nil
}

// CleanFavorites trims ids, drops blanks and duplicates, keeping first-seen order.
func CleanFavorites(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
