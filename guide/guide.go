// Package guide provides access to embedded help and guide pages used by
// the CLI's built-in documentation system and the glossd_guide MCP tool.
package guide

import (
	"embed"
	"strings"
)

//go:embed *.md
var files embed.FS

// Get returns the content of a guide page by name. If `name` is empty
// the default "guide" page is returned. A leading "glossd " is ignored, so
// "glossd search" and "search" name the same page.
func Get(name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "glossd ")
	if name == "" {
		name = "guide"
	}
	data, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns the available guide page names (without the .md suffix).
func List() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if name != "guide.md" {
			names = append(names, strings.TrimSuffix(name, ".md"))
		}
	}
	return names, nil
}
