// Package lang decides which files participate in history extraction and
// which language's structural parser applies to them.
package lang

import (
	"fmt"
	"path"
	"regexp"

	"github.com/src-d/enry/v2"
)

// Classifier filters repository paths. A path is in scope when enry detects a
// language for it, it is not vendored, and it does not match the user's
// ignore pattern. Structural parsing additionally requires a registered
// parser for the detected language; everything else stays file-level only.
type Classifier struct {
	ignore     *regexp.Regexp
	structural map[string]bool
}

// NewClassifier compiles the ignore pattern and records the languages with
// structural parser support. An empty pattern ignores nothing.
func NewClassifier(ignorePattern string, structuralLanguages []string) (*Classifier, error) {
	var ignore *regexp.Regexp

	if ignorePattern != "" {
		compiled, err := regexp.Compile(ignorePattern)
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern: %w", err)
		}

		ignore = compiled
	}

	structural := make(map[string]bool, len(structuralLanguages))
	for _, name := range structuralLanguages {
		structural[name] = true
	}

	return &Classifier{ignore: ignore, structural: structural}, nil
}

// InScope reports whether a path participates in extraction at all.
func (c *Classifier) InScope(filePath string) bool {
	if filePath == "" {
		return false
	}

	if c.ignore != nil && c.ignore.MatchString(filePath) {
		return false
	}

	if enry.IsVendor(filePath) {
		return false
	}

	language := enry.GetLanguage(path.Base(filePath), nil)
	if language == "" {
		return false
	}

	// Prose, data and markup files never carry extractable structure and are
	// noise for per-file risk, so only programming languages count as source.
	return enry.GetLanguageType(language) == enry.Programming
}

// StructuralLanguage returns the language name for paths eligible for
// structural parsing, and false for file-level-only paths.
func (c *Classifier) StructuralLanguage(filePath string) (string, bool) {
	if !c.InScope(filePath) {
		return "", false
	}

	language := enry.GetLanguage(path.Base(filePath), nil)
	if !c.structural[language] {
		return "", false
	}

	return language, true
}
