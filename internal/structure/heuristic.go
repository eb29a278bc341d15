package structure

import (
	"regexp"
	"strings"
)

// scanState is the heuristic scanner's position in the source: outside any
// class, inside a class, or inside a class with an open method.
type scanState uint8

const (
	scanNone scanState = iota
	scanClassOpen
	scanMethodOpen
)

var (
	commentLineRe = regexp.MustCompile(`^\s*(//|/\*|\*)`)
	classDeclRe   = regexp.MustCompile(
		`^\s*(?:(?:public|protected|private|abstract|static|final|strictfp)\s+)*(?:class|interface|enum)\s+(\w+)`)
	methodDeclRe = regexp.MustCompile(
		`^\s*(?:(?:public|protected|private|static|final|synchronized|abstract|native|default)\s+)+` +
			`[\w<>\[\],.\s]*?(\w+)\s*\([^;{)]*\)\s*(?:throws\s+[\w,.\s]+)?\{?\s*$`)
	closingBraceRe = regexp.MustCompile(`^\s*}`)
)

// JavaHeuristic recognizes class and method boundaries in Java source with a
// single linear scan and pattern matching. It tracks one active class and one
// active method at a time (flat: concurrently-open sibling or nested classes
// are not supported) and never fails — constructs it cannot recognize are
// simply not reported as components.
type JavaHeuristic struct{}

// NewJavaHeuristic creates the heuristic Java parser.
func NewJavaHeuristic() *JavaHeuristic {
	return &JavaHeuristic{}
}

// Parse scans the source line by line. A method's end line resolves to the
// next closing-brace line encountered; at end of input any still-open method
// is closed at the last-seen closing-brace line.
func (p *JavaHeuristic) Parse(source string) []Component {
	lines := strings.Split(source, "\n")

	var (
		components []Component
		state      scanState
		class      string
		open       Component
		lastBrace  int
	)

	closeMethod := func(end int) {
		if end < open.StartLine {
			end = open.StartLine
		}

		open.EndLine = end
		components = append(components, open)
		state = scanClassOpen
	}

	for i, line := range lines {
		lineNum := i + 1

		if commentLineRe.MatchString(line) {
			continue
		}

		if m := classDeclRe.FindStringSubmatch(line); m != nil {
			if state == scanMethodOpen {
				closeMethod(lastBrace)
			}

			class = m[1]
			state = scanClassOpen

			continue
		}

		if state != scanNone {
			if m := methodDeclRe.FindStringSubmatch(line); m != nil {
				if state == scanMethodOpen {
					closeMethod(lastBrace)
				}

				open = Component{StartLine: lineNum, ClassPath: class, Method: m[1]}
				state = scanMethodOpen

				continue
			}
		}

		if closingBraceRe.MatchString(line) {
			lastBrace = lineNum

			if state == scanMethodOpen {
				closeMethod(lineNum)
			}
		}
	}

	if state == scanMethodOpen {
		closeMethod(lastBrace)
	}

	return components
}
