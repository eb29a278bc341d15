// Package structure locates class and method boundaries in raw source text.
//
// Two interchangeable parsing strategies are provided: a heuristic
// single-scan parser that never fails, and a grammar-based parser built on
// tree-sitter that returns no components on a syntax error. Both emit the
// same component schema, so consumers never depend on which one is active.
package structure

import (
	"errors"
	"fmt"
	"sort"
)

// Component is a parsed method or constructor with its inclusive source line
// range and the dot-joined path of its enclosing class(es). Components are
// produced fresh on every parse call and never persisted.
type Component struct {
	StartLine int
	EndLine   int
	ClassPath string
	Method    string
}

// Parser turns source text into an ordered component list.
type Parser interface {
	// Parse extracts components from the given source. It never returns an
	// error: unparseable input degrades to a partial or empty component list.
	Parse(source string) []Component
}

// Strategy selects a parser implementation for a language.
type Strategy string

const (
	// StrategyHeuristic is the pattern-matching single-scan parser.
	StrategyHeuristic Strategy = "heuristic"
	// StrategyGrammar is the tree-sitter grammar parser.
	StrategyGrammar Strategy = "grammar"
)

// ErrUnknownLanguage is returned when no parser exists for a language.
var ErrUnknownLanguage = errors.New("no structural parser for language")

// ErrUnknownStrategy is returned for strategy names other than heuristic/grammar.
var ErrUnknownStrategy = errors.New("unknown parser strategy")

// NewParser builds a parser for the given language (enry naming, e.g. "Java")
// using the requested strategy.
func NewParser(language string, strategy Strategy) (Parser, error) {
	if language != "Java" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}

	switch strategy {
	case StrategyHeuristic:
		return NewJavaHeuristic(), nil
	case StrategyGrammar:
		return NewJavaGrammar(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

// Registry maps recognized languages to their configured parser. It replaces
// filename-substring dispatch: the parser for a file is resolved once, by
// language name.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register binds a parser to a language name, replacing any previous binding.
func (r *Registry) Register(language string, parser Parser) {
	r.parsers[language] = parser
}

// Lookup returns the parser for a language, or nil when the language has no
// structural support.
func (r *Registry) Lookup(language string) Parser {
	return r.parsers[language]
}

// Languages returns the sorted list of registered language names.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		langs = append(langs, name)
	}

	sort.Strings(langs)

	return langs
}
