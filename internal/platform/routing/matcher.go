package routing

import (
	"errors"
	"fmt"
	"strings"
)

// pattern is one compiled route pattern.
type pattern struct {
	raw      string
	segments []string
	prefix   bool
	root     bool
}

func compilePattern(raw string) (pattern, error) {
	s := strings.TrimSpace(raw)
	if s == "" || !strings.HasPrefix(s, "/") {
		return pattern{}, fmt.Errorf("route pattern %q must start with /", raw)
	}
	p := pattern{raw: s}
	if strings.HasSuffix(s, "*") {
		p.prefix = true
		s = strings.TrimSuffix(s, "*")
		if strings.Contains(s, ":") {
			return pattern{}, fmt.Errorf("route pattern %q: prefix patterns cannot have parameters", raw)
		}
		p.segments = []string{s}
		return p, nil
	}
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		p.root = true
		return p, nil
	}
	p.segments = strings.Split(strings.TrimPrefix(s, "/"), "/")
	for _, seg := range p.segments {
		if seg == "" {
			return pattern{}, fmt.Errorf("route pattern %q has an empty segment", raw)
		}
		if seg == ":" {
			return pattern{}, errors.New("route parameter needs a name")
		}
	}
	return p, nil
}

// match reports whether path is covered by the pattern. path must be cleaned.
func (p pattern) match(path string) bool {
	if p.prefix {
		return strings.HasPrefix(path, p.segments[0])
	}
	if p.root {
		return path == "/"
	}
	parts := splitPath(path)
	if len(parts) < len(p.segments) {
		return false
	}
	for i, seg := range p.segments {
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if parts[i] != seg {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// matcher is an ordered pattern list.
type matcher []pattern

func compileMatcher(raws []string) (matcher, error) {
	m := make(matcher, 0, len(raws))
	for _, raw := range raws {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		m = append(m, p)
	}
	return m, nil
}

func (m matcher) match(path string) bool {
	for _, p := range m {
		if p.match(path) {
			return true
		}
	}
	return false
}
