package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/nodes"
	"github.com/nikolalohinski/gonja/parser"
)

// Renderer renders one template expression against a native context.
// Implementations must be safe for concurrent use: nodes on independent
// branches bind their parameters concurrently.
type Renderer interface {
	Render(expr string, ctx map[string]any) (string, error)
}

// HasMarkers reports whether an expression contains template syntax.
// Expressions without markers are bare paths or literals and need no
// rendering pass.
func HasMarkers(expr string) bool {
	return strings.Contains(expr, "{{") || strings.Contains(expr, "{%")
}

// Jinja is the default Renderer, backed by gonja.
type Jinja struct{}

// NewJinja returns the jinja renderer. The underlying environment is
// process-wide and initialized once.
func NewJinja() (*Jinja, error) {
	if _, err := jinjaEnv(); err != nil {
		return nil, err
	}
	return &Jinja{}, nil
}

// Render parses and executes the expression with ctx as the variable set.
func (j *Jinja) Render(expr string, ctx map[string]any) (string, error) {
	env, err := jinjaEnv()
	if err != nil {
		return "", err
	}
	tpl, err := env.FromString(expr)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

var (
	envOnce    sync.Once
	env        *gonja.Environment
	envInitErr error
)

// disabledKeywords are statements that let a template reach outside its
// own text. A persisted document is untrusted input, so they are refused
// at parse time.
var disabledKeywords = []string{"include", "extends", "import", "from"}

// jinjaEnv builds the shared environment with unsafe statements disabled.
func jinjaEnv() (*gonja.Environment, error) {
	envOnce.Do(func() {
		env = gonja.NewEnvironment(config.DefaultConfig, gonja.DefaultLoader)
		for _, kw := range disabledKeywords {
			if !env.Statements.Exists(kw) {
				continue
			}
			keyword := kw
			err := env.Statements.Replace(keyword, func(p *parser.Parser, args *parser.Parser) (nodes.Statement, error) {
				return nil, fmt.Errorf("keyword[%s] has been disabled", keyword)
			})
			if err != nil {
				envInitErr = fmt.Errorf("init template env: %w", err)
				return
			}
		}
	})
	return env, envInitErr
}
