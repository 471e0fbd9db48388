package scaffolding

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
)

// tokenPattern matches {{NAME}} placeholders. Lowercase or spaced forms such
// as GitHub's ${{ github.ref }} are not placeholders.
var tokenPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// Bindings maps placeholder names to resolved values.
type Bindings map[string]string

// Names returns the bound names, sorted.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render replaces every placeholder present in bindings. Placeholders without
// a binding are left in place and reported as an ERR_UNRESOLVED_TOKENS
// validation error together with the partially rendered content.
func Render(content string, bindings Bindings) (string, error) {
	rendered := tokenPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := bindings[name]; ok {
			return value
		}
		return match
	})

	if remaining := FindTokens(rendered); len(remaining) > 0 {
		return rendered, NewUnresolvedTokensError(remaining)
	}
	return rendered, nil
}

// FindTokens returns the distinct placeholder names in content, sorted.
func FindTokens(content string) []string {
	seen := map[string]bool{}
	var tokens []string
	for _, m := range tokenPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			tokens = append(tokens, m[1])
		}
	}
	sort.Strings(tokens)
	return tokens
}

// NewUnresolvedTokensError reports placeholders left after rendering.
func NewUnresolvedTokensError(tokens []string) *errors.Error {
	return errors.NewValidationError(errors.ErrCodeUnresolvedTokens,
		fmt.Sprintf("unresolved placeholders: %s", strings.Join(tokens, ", "))).
		WithContext("tokens", tokens)
}

// UnresolvedTokens extracts the placeholder names from an error produced by
// Render, or nil.
func UnresolvedTokens(err error) []string {
	if err == nil {
		return nil
	}
	tokens, _ := errors.GetErrorContext(err)["tokens"].([]string)
	return tokens
}
