package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pixil98/go-realm/internal/game"
)

const DefaultWidth = 80

// templateFuncs provides utility functions for message templates.
var templateFuncs = sprig.TxtFuncMap()

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// Truncate cuts text to at most width printable cells. A width of zero or
// less leaves the text untouched.
func Truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	return truncate.String(text, uint(width))
}

// InviteText is the template data for invitation responses.
type InviteText struct {
	Name  string
	Group string
}

// Catalog renders the human-readable text sent alongside a message code.
type Catalog struct {
	templates map[game.UIMessage]*template.Template
}

// DefaultTexts is the built-in English text for notification codes.
func DefaultTexts() map[game.UIMessage]string {
	return map[game.UIMessage]string{
		game.UIGuildInvitationAccepted: `{{ .Name }} accepted your invitation to {{ .Group | default "the guild" }}.`,
		game.UIGuildInvitationDeclined: `{{ .Name }} declined your invitation to {{ .Group | default "the guild" }}.`,
		game.UIPartyInvitationAccepted: `{{ .Name }} joined your party.`,
		game.UIPartyInvitationDeclined: `{{ .Name }} declined your party invitation.`,
	}
}

// NewCatalog compiles texts, keyed by message code.
func NewCatalog(texts map[game.UIMessage]string) (*Catalog, error) {
	c := &Catalog{templates: make(map[game.UIMessage]*template.Template, len(texts))}
	for code, text := range texts {
		tmpl, err := template.New(string(code)).Funcs(templateFuncs).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing template for %s: %w", code, err)
		}
		c.templates[code] = tmpl
	}
	return c, nil
}

// Render expands the text for code. Unknown codes and template failures
// render as the empty string so the client falls back to its own text.
func (c *Catalog) Render(code game.UIMessage, data any) string {
	if c == nil {
		return ""
	}
	tmpl, ok := c.templates[code]
	if !ok {
		return ""
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ""
	}
	return Wrap(buf.String())
}
