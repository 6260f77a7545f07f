package registry

import (
	"fmt"
	"strings"

	"github.com/roach88/weave/internal/jtree"
)

// Identifier renders the descriptor's stable identifier:
//
//	scope, version | name | type1, type2, ...
//
// Only value parameters contribute to the type signature - injected
// parameters are an implementation detail of the running build, not part
// of the function's persisted identity.
func (d *Descriptor) Identifier() string {
	return formatIdentifier(d.Scope, d.Version, d.Name, d.signature())
}

// signature returns the comma-joined value-parameter types.
func (d *Descriptor) signature() []string {
	params := d.ValueParams()
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = string(p.Type)
	}
	return types
}

// structuralKey identifies a function ignoring version info. Used as the
// fallback resolution index when a persisted identifier carries stale
// version info.
func (d *Descriptor) structuralKey() string {
	return structuralKey(d.Scope, d.Name, d.signature())
}

func formatIdentifier(scope, version, name string, types []string) string {
	head := scope
	if version != "" {
		head = scope + ", " + version
	}
	return head + " | " + name + " | " + strings.Join(types, ", ")
}

func structuralKey(scope, name string, types []string) string {
	return scope + "|" + name + "|" + strings.Join(types, ",")
}

// ParsedIdentifier is the decoded form of a persisted identifier string.
type ParsedIdentifier struct {
	Scope      string
	Version    string
	Name       string
	ParamTypes []jtree.Type
}

// Structural returns the version-ignoring resolution key.
func (p ParsedIdentifier) Structural() string {
	types := make([]string, len(p.ParamTypes))
	for i, t := range p.ParamTypes {
		types[i] = string(t)
	}
	return structuralKey(p.Scope, p.Name, types)
}

// ParseIdentifier decodes "scope, version | name | type1, type2, ...".
// The version component is optional; the trailing type list may be empty
// for zero-parameter functions.
func ParseIdentifier(id string) (ParsedIdentifier, error) {
	parts := strings.Split(id, "|")
	if len(parts) != 3 {
		return ParsedIdentifier{}, fmt.Errorf("malformed function identifier %q: want 3 '|'-separated parts, got %d", id, len(parts))
	}

	var parsed ParsedIdentifier

	head := strings.TrimSpace(parts[0])
	if scope, version, ok := strings.Cut(head, ","); ok {
		parsed.Scope = strings.TrimSpace(scope)
		parsed.Version = strings.TrimSpace(version)
	} else {
		parsed.Scope = head
	}
	if parsed.Scope == "" {
		return ParsedIdentifier{}, fmt.Errorf("malformed function identifier %q: empty scope", id)
	}

	parsed.Name = strings.TrimSpace(parts[1])
	if parsed.Name == "" {
		return ParsedIdentifier{}, fmt.Errorf("malformed function identifier %q: empty name", id)
	}

	typeList := strings.TrimSpace(parts[2])
	if typeList != "" {
		for _, t := range strings.Split(typeList, ",") {
			parsed.ParamTypes = append(parsed.ParamTypes, jtree.Type(strings.TrimSpace(t)))
		}
	}

	return parsed, nil
}
