// Package patternfile loads a -f PATTERNFILE into compiled patterns. The
// plain-text form is one pattern per line, blank lines and #-comments
// skipped. A YAML list form is also accepted when the file's first
// non-blank line looks like a YAML document: sniff the first non-blank
// line and dispatch to whichever loader matches.
package patternfile

import (
	"bufio"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/netreduce/rgcidr/internal/ipaddr"
	"github.com/netreduce/rgcidr/internal/pattern"
)

// Load reads path and compiles every pattern it names. strict enables
// CIDR-alignment checking, matching -s's effect on inline patterns.
func Load(path string, strict bool) ([]pattern.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if looksLikeYAMLList(data) {
		return loadYAMLList(data, strict)
	}
	return loadPlainText(data, strict)
}

func looksLikeYAMLList(data []byte) bool {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		return line == "---" || strings.HasPrefix(line, "- ")
	}
	return false
}

func loadYAMLList(data []byte, strict bool) ([]pattern.Pattern, error) {
	var tokens []string
	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	out := make([]pattern.Pattern, 0, len(tokens))
	for _, tok := range tokens {
		p, err := pattern.CompileToken(strings.TrimSpace(tok), strict)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, &ipaddr.ParseError{Kind: ipaddr.InvalidFormat, Input: "<empty pattern file>"}
	}
	return out, nil
}

func loadPlainText(data []byte, strict bool) ([]pattern.Pattern, error) {
	var out []pattern.Pattern
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := pattern.CompileToken(line, strict)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &ipaddr.ParseError{Kind: ipaddr.InvalidFormat, Input: "<empty pattern file>"}
	}
	return out, nil
}
