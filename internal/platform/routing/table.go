package routing

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// RouteClass is the partition a path belongs to. Every path has exactly one class.
type RouteClass int

const (
	// Protected is a page listed nowhere; it requires a session but belongs to no surface.
	Protected RouteClass = iota
	Public
	ProProtected
	ClientProtected
	APIProtected
)

func (c RouteClass) String() string {
	switch c {
	case Public:
		return "public"
	case ProProtected:
		return "pro"
	case ClientProtected:
		return "client"
	case APIProtected:
		return "api"
	default:
		return "protected"
	}
}

// tableFile is the YAML shape of a route table.
type tableFile struct {
	APIPrefix    string   `yaml:"api_prefix"`
	ProHome      string   `yaml:"pro_home"`
	ClientHome   string   `yaml:"client_home"`
	SignIn       string   `yaml:"sign_in"`
	ClientSignIn string   `yaml:"client_sign_in"`
	Public       []string `yaml:"public"`
	Pro          []string `yaml:"pro"`
	Client       []string `yaml:"client"`
}

// Table is a compiled route partition.
type Table struct {
	APIPrefix    string
	ProHome      string
	ClientHome   string
	SignIn       string
	ClientSignIn string

	public matcher
	pro    matcher
	client matcher
	api    pattern
}

// DefaultTable returns the embedded route table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultRoutes)
}

// LoadTable reads a route table from file, or the embedded table when file is empty.
func LoadTable(file string) (*Table, error) {
	if file == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable compiles a YAML route table.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}
	if f.APIPrefix == "" {
		f.APIPrefix = "/api"
	}
	if f.ProHome == "" || f.ClientHome == "" || f.SignIn == "" {
		return nil, fmt.Errorf("routes: pro_home, client_home and sign_in are required")
	}
	if f.ClientSignIn == "" {
		f.ClientSignIn = f.SignIn
	}

	t := &Table{
		APIPrefix:    strings.TrimSuffix(f.APIPrefix, "/"),
		ProHome:      f.ProHome,
		ClientHome:   f.ClientHome,
		SignIn:       f.SignIn,
		ClientSignIn: f.ClientSignIn,
	}
	var err error
	if t.public, err = compileMatcher(f.Public); err != nil {
		return nil, err
	}
	if t.pro, err = compileMatcher(f.Pro); err != nil {
		return nil, err
	}
	if t.client, err = compileMatcher(f.Client); err != nil {
		return nil, err
	}
	if t.api, err = compilePattern(t.APIPrefix); err != nil {
		return nil, err
	}
	return t, nil
}

// Classify returns the class of p. Surfaces are checked before the public list so a path
// listed in both resolves to the protected class.
func (t *Table) Classify(p string) RouteClass {
	p = cleanPath(p)
	switch {
	case t.pro.match(p):
		return ProProtected
	case t.client.match(p):
		return ClientProtected
	case t.public.match(p):
		return Public
	case t.IsAPI(p):
		return APIProtected
	default:
		return Protected
	}
}

// IsAPI reports whether p is under the API prefix.
func (t *Table) IsAPI(p string) bool {
	return t.api.match(cleanPath(p))
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
