package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/rules"
)

type RulesConfig struct {
	// Path is a JSON file overlaid on the default rules.
	Path string `json:"path" env:"REALM_RULES_PATH"`
	// Texts overrides the built-in notification texts by message code.
	Texts map[game.UIMessage]string `json:"texts"`
}

func (c *RulesConfig) validate() error {
	if c.Path == "" {
		return nil
	}
	if _, err := os.Stat(c.Path); err != nil {
		return fmt.Errorf("rules: invalid path %q: %w", c.Path, err)
	}
	return nil
}

func (c *RulesConfig) BuildRules() (*rules.Rules, error) {
	r := rules.Default()
	if c.Path != "" {
		data, err := os.ReadFile(c.Path)
		if err != nil {
			return nil, fmt.Errorf("reading rules %q: %w", c.Path, err)
		}
		if err := json.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("parsing rules %q: %w", c.Path, err)
		}
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating rules: %w", err)
	}
	return r, nil
}

func (c *RulesConfig) BuildCatalog() (*display.Catalog, error) {
	texts := display.DefaultTexts()
	for code, text := range c.Texts {
		texts[code] = text
	}
	return display.NewCatalog(texts)
}
