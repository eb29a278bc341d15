package structure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline-sh/faultline/internal/structure"
)

func TestJavaGrammar_MethodsAndConstructor(t *testing.T) {
	t.Parallel()

	components := structure.NewJavaGrammar().Parse(javaAPISource)
	require.Len(t, components, 3)

	byName := map[string]structure.Component{}
	for _, c := range components {
		byName[c.Method] = c
	}

	ctor := byName["API"]
	assert.Equal(t, "API", ctor.ClassPath)
	assert.Equal(t, 8, ctor.StartLine)
	assert.Equal(t, 10, ctor.EndLine)

	getter := byName["getUrl"]
	assert.Equal(t, 12, getter.StartLine)
	assert.Equal(t, 14, getter.EndLine)
}

func TestJavaGrammar_NestedClassPath(t *testing.T) {
	t.Parallel()

	src := `public class Outer {
    public void outerMethod() {
    }

    public static class Inner {
        public void innerMethod() {
        }
    }
}
`

	components := structure.NewJavaGrammar().Parse(src)
	require.Len(t, components, 2)

	paths := map[string]string{}
	for _, c := range components {
		paths[c.Method] = c.ClassPath
	}

	assert.Equal(t, "Outer", paths["outerMethod"])
	assert.Equal(t, "Outer.Inner", paths["innerMethod"])
}

func TestJavaGrammar_SyntaxErrorYieldsEmpty(t *testing.T) {
	t.Parallel()

	components := structure.NewJavaGrammar().Parse("public class { oops(")
	assert.Empty(t, components)
}

func TestJavaGrammar_MatchesHeuristicSchema(t *testing.T) {
	t.Parallel()

	// Both strategies must report the same identities for plain sources so
	// the correlator can stay strategy-agnostic.
	grammar := structure.NewJavaGrammar().Parse(javaAPISource)
	heuristic := structure.NewJavaHeuristic().Parse(javaAPISource)

	identities := func(cs []structure.Component) map[[2]string]bool {
		ids := map[[2]string]bool{}
		for _, c := range cs {
			ids[[2]string{c.ClassPath, c.Method}] = true
		}

		return ids
	}

	assert.Equal(t, identities(heuristic), identities(grammar))
}

func TestNewParser_StrategySelection(t *testing.T) {
	t.Parallel()

	heuristic, err := structure.NewParser("Java", structure.StrategyHeuristic)
	require.NoError(t, err)
	assert.IsType(t, &structure.JavaHeuristic{}, heuristic)

	grammar, err := structure.NewParser("Java", structure.StrategyGrammar)
	require.NoError(t, err)
	assert.IsType(t, &structure.JavaGrammar{}, grammar)

	_, err = structure.NewParser("Java", "compiler")
	require.ErrorIs(t, err, structure.ErrUnknownStrategy)

	_, err = structure.NewParser("Brainfuck", structure.StrategyHeuristic)
	require.ErrorIs(t, err, structure.ErrUnknownLanguage)
}

func TestRegistry_LookupAndLanguages(t *testing.T) {
	t.Parallel()

	registry := structure.NewRegistry()
	assert.Nil(t, registry.Lookup("Java"))

	registry.Register("Java", structure.NewJavaHeuristic())
	assert.NotNil(t, registry.Lookup("Java"))
	assert.Equal(t, []string{"Java"}, registry.Languages())
}
