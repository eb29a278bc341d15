// Package correlate classifies structural changes between two versions of a
// file by reconciling two independent signals: exact set differences of named
// entities, and coarse line-range overlap between edit runs and component
// ranges.
package correlate

import (
	"sort"

	"github.com/faultline-sh/faultline/internal/editseq"
	"github.com/faultline-sh/faultline/internal/model"
	"github.com/faultline-sh/faultline/internal/structure"
)

// identity is the name-based key of a method: (class path, method name).
// Parameter signatures are ignored, so overloads sharing a name collapse
// into one identity.
type identity struct {
	class  string
	method string
}

// File is one side of a comparison: a path and its raw source.
type File struct {
	Path   string
	Source string
}

// Diff classifies every class and method change between version A and
// version B of a file, using the given parser for both sides. Identical
// sources yield no diffs. A side that fails to parse contributes an empty
// component set, so its counterparts classify as added or removed rather
// than modified.
func Diff(parser structure.Parser, fileA, fileB File) []model.Diff {
	componentsA := parser.Parse(fileA.Source)
	componentsB := parser.Parse(fileB.Source)

	touchedA := map[identity]bool{}
	touchedB := map[identity]bool{}

	// Coarse interval-overlap marking: any removed run intersecting a
	// before-side component marks it, symmetrically for added runs. Partial
	// overlap marks the whole component.
	for _, run := range editseq.Extract(fileA.Source, fileB.Source) {
		switch run.Dir {
		case editseq.Removed:
			markOverlaps(componentsA, run, touchedA)
		case editseq.Added:
			markOverlaps(componentsB, run, touchedB)
		}
	}

	methodsA := identitySet(componentsA)
	methodsB := identitySet(componentsB)

	added := subtract(methodsB, methodsA)
	removed := subtract(methodsA, methodsB)

	modified := map[identity]bool{}
	for id := range union(touchedA, touchedB) {
		if !added[id] && !removed[id] {
			modified[id] = true
		}
	}

	diffs := methodDiffs(fileB.Path, added, removed, modified)

	return append(diffs, classDiffs(fileB.Path, methodsA, methodsB, added, removed, modified)...)
}

// markOverlaps marks every component whose inclusive range intersects the run.
func markOverlaps(components []structure.Component, run editseq.Run, touched map[identity]bool) {
	for _, c := range components {
		if run.Start <= c.EndLine && run.End >= c.StartLine {
			touched[identity{class: c.ClassPath, method: c.Method}] = true
		}
	}
}

// methodDiffs emits method-granularity records grouped added/removed/modified,
// each group in deterministic order.
func methodDiffs(path string, added, removed, modified map[identity]bool) []model.Diff {
	var diffs []model.Diff

	for _, id := range sortedIdentities(added) {
		diffs = append(diffs, model.MethodDiff{Path: path, Class: id.class, MethodB: id.method, Op: model.OpAdded})
	}

	for _, id := range sortedIdentities(removed) {
		diffs = append(diffs, model.MethodDiff{Path: path, Class: id.class, MethodA: id.method, Op: model.OpRemoved})
	}

	for _, id := range sortedIdentities(modified) {
		diffs = append(diffs, model.MethodDiff{
			Path: path, Class: id.class, MethodA: id.method, MethodB: id.method, Op: model.OpModified,
		})
	}

	return diffs
}

// classDiffs rolls method changes up to class granularity: added/removed from
// class-path set difference, and a class present on both sides is modified
// iff it owns at least one added, removed or modified method.
func classDiffs(path string, methodsA, methodsB, added, removed, modified map[identity]bool) []model.Diff {
	classesA := classSet(methodsA)
	classesB := classSet(methodsB)

	ownersOfChanges := map[string]bool{}
	for _, set := range []map[identity]bool{added, removed, modified} {
		for id := range set {
			ownersOfChanges[id.class] = true
		}
	}

	var diffs []model.Diff

	for _, class := range sortedClasses(classesB, func(c string) bool { return !classesA[c] }) {
		diffs = append(diffs, model.ClassDiff{Path: path, ClassB: class, Op: model.OpAdded})
	}

	for _, class := range sortedClasses(classesA, func(c string) bool { return !classesB[c] }) {
		diffs = append(diffs, model.ClassDiff{Path: path, ClassA: class, Op: model.OpRemoved})
	}

	for _, class := range sortedClasses(classesA, func(c string) bool { return classesB[c] && ownersOfChanges[c] }) {
		diffs = append(diffs, model.ClassDiff{Path: path, ClassA: class, ClassB: class, Op: model.OpModified})
	}

	return diffs
}

func identitySet(components []structure.Component) map[identity]bool {
	set := make(map[identity]bool, len(components))
	for _, c := range components {
		set[identity{class: c.ClassPath, method: c.Method}] = true
	}

	return set
}

func classSet(methods map[identity]bool) map[string]bool {
	set := map[string]bool{}
	for id := range methods {
		set[id.class] = true
	}

	return set
}

func subtract(a, b map[identity]bool) map[identity]bool {
	out := map[identity]bool{}
	for id := range a {
		if !b[id] {
			out[id] = true
		}
	}

	return out
}

func union(a, b map[identity]bool) map[identity]bool {
	out := make(map[identity]bool, len(a)+len(b))
	for id := range a {
		out[id] = true
	}

	for id := range b {
		out[id] = true
	}

	return out
}

func sortedIdentities(set map[identity]bool) []identity {
	ids := make([]identity, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		if ids[i].class != ids[j].class {
			return ids[i].class < ids[j].class
		}

		return ids[i].method < ids[j].method
	})

	return ids
}

func sortedClasses(set map[string]bool, keep func(string) bool) []string {
	classes := make([]string, 0, len(set))

	for class := range set {
		if keep(class) {
			classes = append(classes, class)
		}
	}

	sort.Strings(classes)

	return classes
}
