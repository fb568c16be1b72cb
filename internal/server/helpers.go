package server

import (
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize    = 6
	maxPaginationLimit = 100
)

// Pagination holds parsed page/limit query parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// Page is the paginated list envelope: {count, next, previous, results}.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePagination extracts page and limit with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	if defaultLimit <= 0 {
		defaultLimit = defaultPageSize
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func (s *Server) pagination(c *fiber.Ctx) Pagination {
	return parsePagination(c, s.config.PageSize)
}

// newPage wraps results with absolute next/previous links built from the
// current request URL.
func newPage[T any](s *Server, c *fiber.Ctx, p Pagination, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	out := Page[T]{Count: count, Results: results}
	if int64(p.Offset+len(results)) < count {
		next := s.pageURL(c, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := s.pageURL(c, p.Page-1)
		out.Previous = &prev
	}
	return out
}

// pageURL rewrites the page parameter of the current request URL. Page 1 is
// expressed by dropping the parameter.
func (s *Server) pageURL(c *fiber.Ctx, page int) string {
	u, err := url.Parse(c.OriginalURL())
	if err != nil {
		u = &url.URL{Path: c.Path()}
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return s.baseURL(c) + u.RequestURI()
}

// baseURL is PUBLIC_BASE_URL when configured, otherwise the request's own.
func (s *Server) baseURL(c *fiber.Ctx) string {
	if s.config.PublicBaseURL != "" {
		return s.config.PublicBaseURL
	}
	return strings.TrimRight(c.BaseURL(), "/")
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten:
// a non-numeric id can never name an existing object.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessage("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "recipeId" -> "recipe ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseBody decodes the JSON body into dst. On failure it writes a 400 and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// statusFor maps an AppError code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case models.CodeValidation, models.CodeAlreadyExists, models.CodeSelfSubscription:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodePermissionDenied:
		return fiber.StatusForbidden
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// mapServiceError writes err as a JSON error response. Errors that are not an
// AppError are reported as INTERNAL_ERROR.
func mapServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status := statusFor(appErr.Code)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed with internal error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, appErr)
}

// currentUserID returns the authenticated user, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

func queryFlag(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// recipesLimit reads ?recipes_limit; absent or invalid means unlimited (0).
func recipesLimit(c *fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
