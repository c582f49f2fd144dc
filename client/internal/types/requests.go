package types

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ------------------------------
// Request Types
// ------------------------------

// CSSStyleRequest carries a CSS document to publish or update.
// An empty Workspace targets the global styles collection.
type CSSStyleRequest struct {
	Body      string `json:"body"`
	Name      string `json:"name"`
	Workspace string `json:"workspace,omitempty"`
}

// Validate checks that both the style name and the CSS body are present.
func (r CSSStyleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank("style.name_required", "style name is empty"))),
		validation.Field(&r.Body, validation.Required.Error("the style may not be empty")),
	)
}

// RemoveStyleRequest identifies a style to delete.
//
// Recurse clears references to the style from layers; Purge deletes the
// underlying style file on the server.
type RemoveStyleRequest struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace,omitempty"`
	Recurse   bool   `json:"recurse"`
	Purge     bool   `json:"purge"`
}

// Validate checks that the style name is present.
func (r RemoveStyleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank("style.name_required", "style name is empty"))),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
