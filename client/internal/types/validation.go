package types

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/photostream/photostream/model"
)

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ValidateIDPresent ensures an id path segment is non-empty and contains no
// path separators.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required: %w", field, model.ErrValidation)
	}
	if strings.ContainsAny(id, "/?#") {
		return fmt.Errorf("%s contains reserved characters: %w", field, model.ErrValidation)
	}
	return nil
}

// ValidateCommentText rejects empty or whitespace-only comment text.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("comment text is empty: %w", model.ErrValidation)
	}
	return nil
}
