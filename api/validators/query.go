package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

// ParseQueryInt reads an integer query parameter. A missing value yields def; a value outside
// [lo, hi] is a validation error rather than being clamped.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, key+" must be a whole number").
			WithDetails(map[string]any{"fields": map[string]string{key: "must be a whole number"}})
	case n < lo || n > hi:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is out of range").
			WithDetails(map[string]any{
				"fields": map[string]string{key: "must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)},
			})
	}
	return n, nil
}

// ParseQueryString returns the trimmed value capped at maxLen runes.
func ParseQueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
