// Package catalogdata embeds the built-in control catalogs used when a
// regulation has no persisted controls.
package catalogdata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var files embed.FS

type Control struct {
	Key            string  `yaml:"key"`
	Question       string  `yaml:"question"`
	Recommendation string  `yaml:"recommendation"`
	ArticleCode    string  `yaml:"article_code"`
	ArticleTitle   string  `yaml:"article_title"`
	Weight         float64 `yaml:"weight"`
}

type Catalog struct {
	Code     string    `yaml:"code"`
	Name     string    `yaml:"name"`
	Version  string    `yaml:"version"`
	Source   string    `yaml:"source_url"`
	Controls []Control `yaml:"controls"`
}

// Load parses every embedded catalog, keyed by upper-case code.
func Load() (map[string]Catalog, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	out := make(map[string]Catalog, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		b, err := files.ReadFile(e.Name())
		if err != nil {
			return nil, err
		}
		var c Catalog
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", e.Name(), err)
		}
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			return nil, fmt.Errorf("catalog %s: missing code", e.Name())
		}
		for i := range c.Controls {
			if c.Controls[i].Weight == 0 {
				c.Controls[i].Weight = 1
			}
		}
		c.Code = code
		out[code] = c
	}
	return out, nil
}
