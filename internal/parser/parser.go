// Package parser splits Markdown content into YAML frontmatter and body and
// decodes the frontmatter into typed structs.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coursekit/coursekit/internal/clock"
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Tags        []string
	Title       string

	raw []byte
}

// Parse extracts frontmatter, body, tags, and title from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, raw, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(fm),
		Title:       deriveTitle(fm, body),
		raw:         raw,
	}, nil
}

// HasFrontmatter reports whether a valid frontmatter block was found.
func (r *Result) HasFrontmatter() bool { return r.Frontmatter != nil }

// Decode unmarshals the frontmatter block into v. It is a no-op when the
// file carries no frontmatter.
func (r *Result) Decode(v any) error {
	if len(r.raw) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("parser: decode frontmatter: %w", err)
	}
	return nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, []byte, string, error) {
	const delim = "---"
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(data, "\n")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep the whole file as body.
		return nil, nil, string(data), nil
	}
	if fm == nil {
		fm = map[string]any{}
	}

	return fm, yamlBlock, body, nil
}

// extractTags collects the frontmatter "tags" list, accepting either a YAML
// sequence or a comma separated string.
func extractTags(fm map[string]any) []string {
	seen := make(map[string]struct{})
	out := []string{}

	add := func(s string) {
		s = strings.Trim(strings.TrimSpace(s), `"'`)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Timestamp decodes a frontmatter date. Values without an offset are read in
// clock.Location, so "published: 2025-08-31" means midnight local time.
type Timestamp struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("parser: line %d: expected a date, got %s", node.Line, kindName(node.Kind))
	}
	if node.Tag == "!!null" || node.Value == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := clock.ParseLocal(node.Value)
	if err != nil {
		return fmt.Errorf("parser: line %d: %w", node.Line, err)
	}
	t.Time = parsed
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
