package structure

import (
	"context"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/java"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// JavaGrammar parses Java source with the tree-sitter grammar and emits one
// component per method or constructor declaration, recursing through nested
// class declarations with a dot-joined class-path stack. On a syntax error it
// returns an empty component list rather than failing.
type JavaGrammar struct {
	pool sync.Pool
}

// NewJavaGrammar creates the grammar-based Java parser.
func NewJavaGrammar() *JavaGrammar {
	lang := sitter.NewLanguage(java.GetLanguage())

	return &JavaGrammar{
		pool: sync.Pool{
			New: func() any {
				parser := sitter.NewParser()
				parser.SetLanguage(lang)

				return parser
			},
		},
	}
}

// Parse builds the full syntax tree and collects method components. The
// output schema is identical to the heuristic strategy's.
func (p *JavaGrammar) Parse(source string) []Component {
	parser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil
	}
	defer p.pool.Put(parser)

	tree, err := parser.ParseString(context.Background(), nil, []byte(source))
	if err != nil {
		return nil
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil
	}

	var components []Component

	collectClassMembers(root, source, nil, &components)

	return components
}

// classDeclTypes are the tree-sitter node types that open a new class context.
var classDeclTypes = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
}

// methodDeclTypes are the node types emitted as method components.
var methodDeclTypes = map[string]bool{
	"method_declaration":      true,
	"constructor_declaration": true,
}

// collectClassMembers walks the named children of node, pushing class names
// onto the path stack and emitting components for the methods it finds. It
// descends only through class bodies, not into method bodies, mirroring the
// flat member model of the component schema.
func collectClassMembers(node sitter.Node, source string, classPath []string, out *[]Component) {
	for i := range node.NamedChildCount() {
		child := node.NamedChild(i)

		switch {
		case classDeclTypes[child.Type()]:
			name := nodeFieldText(child, "name", source)
			if name == "" {
				continue
			}

			body := child.ChildByFieldName("body")
			if body.IsNull() {
				continue
			}

			collectClassMembers(body, source, append(classPath, name), out)
		case methodDeclTypes[child.Type()]:
			name := nodeFieldText(child, "name", source)
			if name == "" {
				continue
			}

			*out = append(*out, Component{
				StartLine: int(child.StartPoint().Row) + 1,
				EndLine:   int(child.EndPoint().Row) + 1,
				ClassPath: strings.Join(classPath, "."),
				Method:    name,
			})
		}
	}
}

// nodeFieldText returns the source text of a named field child, or "".
func nodeFieldText(node sitter.Node, field, source string) string {
	fieldNode := node.ChildByFieldName(field)
	if fieldNode.IsNull() {
		return ""
	}

	start, end := fieldNode.StartByte(), fieldNode.EndByte()
	if int(end) > len(source) {
		return ""
	}

	return source[start:end]
}
