// Package template renders prompt templates with Liquid semantics:
// {{ variable }} substitution, {% if %} / {% for %} control tags, and the
// standard filter set (upcase, strip, size, ...). Missing variables render
// as empty strings rather than failing, so prompt templates degrade
// gracefully when a stage omits an optional binding.
package template

import (
	"fmt"

	"github.com/osteele/liquid"
)

// Error reports a template that failed to parse or render.
type Error struct {
	TemplateName string
	Message      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("template %q: %s", e.TemplateName, e.Message)
}

// Renderer wraps a Liquid engine. Safe for concurrent use; the engine is
// stateless after construction.
type Renderer struct {
	engine *liquid.Engine
}

// NewRenderer returns a renderer with the standard Liquid tags and filters.
func NewRenderer() *Renderer {
	return &Renderer{engine: liquid.NewEngine()}
}

// Render parses and renders source with the given bindings. name identifies
// the template in errors only.
func (r *Renderer) Render(name, source string, vars map[string]any) (string, error) {
	tpl, err := r.engine.ParseString(source)
	if err != nil {
		return "", &Error{TemplateName: name, Message: err.Error()}
	}
	out, err := tpl.RenderString(vars)
	if err != nil {
		return "", &Error{TemplateName: name, Message: err.Error()}
	}
	return out, nil
}

// Validate parses source without rendering it.
func (r *Renderer) Validate(name, source string) error {
	if _, err := r.engine.ParseString(source); err != nil {
		return &Error{TemplateName: name, Message: err.Error()}
	}
	return nil
}
