// Package extract assembles a chronological sequence of structural change
// commits from a version-control history, fanning the per-commit work out
// over a worker pool.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/faultline-sh/faultline/internal/correlate"
	"github.com/faultline-sh/faultline/internal/lang"
	"github.com/faultline-sh/faultline/internal/model"
	"github.com/faultline-sh/faultline/internal/structure"
	"github.com/faultline-sh/faultline/pkg/gitlib"
)

// Granularity selects how deep the change-set goes.
type Granularity string

const (
	// GranularityFile emits file-level diffs only.
	GranularityFile Granularity = "file"
	// GranularityMethod adds class- and method-level diffs.
	GranularityMethod Granularity = "method"
)

// fallbackWorkers is used when the host CPU count cannot be determined.
const fallbackWorkers = 2

// Options tunes one extraction run.
type Options struct {
	// MaxCommits caps the extracted history when positive.
	MaxCommits int
	// Granularity selects file-only or method-level detail.
	Granularity Granularity
	// Workers sizes the pool; 0 means the host CPU count.
	Workers int
	// Sequential forces the non-concurrent path. Both paths produce
	// identical results.
	Sequential bool
}

// Extractor runs the extraction pipeline over a commit source.
type Extractor struct {
	factory    Factory
	registry   *structure.Registry
	classifier *lang.Classifier
	opts       Options
	log        *slog.Logger
}

// New creates an extractor. The logger may be nil.
func New(factory Factory, registry *structure.Registry, classifier *lang.Classifier, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		factory:    factory,
		registry:   registry,
		classifier: classifier,
		opts:       opts,
		log:        logger,
	}
}

// Extract mines the history and returns the assembled repository aggregate:
// commits in chronologically ascending order, repository time bounds, and the
// in-scope files of the newest snapshot. Commits whose extraction fails are
// skipped, never fatal.
func (e *Extractor) Extract(ctx context.Context) (*model.Repository, error) {
	primary, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("open commit source: %w", err)
	}
	defer func() { _ = primary.Close() }()

	full, err := primary.CommitHashes(0)
	if err != nil {
		return nil, fmt.Errorf("enumerate commits: %w", err)
	}

	if len(full) == 0 {
		return &model.Repository{Files: map[string]struct{}{}}, nil
	}

	hashes := full
	if e.opts.MaxCommits > 0 && e.opts.MaxCommits < len(full) {
		hashes = full[:e.opts.MaxCommits]
	}

	// Repository time bounds come from the full history, not the capped
	// range: the enumeration is newest first, so the last entry is the
	// repository's creation point.
	newest, err := primary.Commit(full[0])
	if err != nil {
		return nil, fmt.Errorf("resolve newest commit: %w", err)
	}

	oldest, err := primary.Commit(full[len(full)-1])
	if err != nil {
		return nil, fmt.Errorf("resolve oldest commit: %w", err)
	}

	results := make([]*model.Commit, len(hashes))

	if e.runSequential() {
		for i, hash := range hashes {
			results[i] = e.extractCommit(primary, hash)
		}
	} else if err := e.extractConcurrent(ctx, hashes, results); err != nil {
		return nil, err
	}

	files, err := e.currentFiles(primary, full[0])
	if err != nil {
		return nil, err
	}

	return &model.Repository{
		Commits:     chronological(results),
		CreatedAt:   oldest.Timestamp,
		EvaluatedAt: newest.Timestamp,
		Files:       files,
	}, nil
}

// runSequential reports whether the non-concurrent path applies.
func (e *Extractor) runSequential() bool {
	return e.opts.Sequential || e.workerCount() == 1
}

// workerCount sizes the pool: configured value, host CPU count, or the
// fallback constant when undetectable.
func (e *Extractor) workerCount() int {
	if e.opts.Workers > 0 {
		return e.opts.Workers
	}

	if n := runtime.NumCPU(); n > 0 {
		return n
	}

	return fallbackWorkers
}

// extractConcurrent fans commit units out over the worker pool. Every worker
// opens its own source handle; units share no mutable state and land their
// result at the submission index, which keeps the output identical to the
// sequential path.
func (e *Extractor) extractConcurrent(ctx context.Context, hashes []gitlib.Hash, results []*model.Commit) error {
	group, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	group.Go(func() error {
		defer close(jobs)

		for i := range hashes {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return nil
	})

	for range e.workerCount() {
		group.Go(func() error {
			src, err := e.factory()
			if err != nil {
				return fmt.Errorf("open worker source: %w", err)
			}
			defer func() { _ = src.Close() }()

			for i := range jobs {
				results[i] = e.extractCommit(src, hashes[i])
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("extract commits: %w", err)
	}

	return nil
}

// chronological drops skipped entries and reverses the newest-first results
// into ascending order.
func chronological(results []*model.Commit) []*model.Commit {
	commits := make([]*model.Commit, 0, len(results))

	for i := len(results) - 1; i >= 0; i-- {
		if results[i] != nil {
			commits = append(commits, results[i])
		}
	}

	return commits
}

// extractCommit builds one commit aggregate. Any failure inside the unit
// drops the whole commit: its contribution is omitted, the pipeline carries
// on.
func (e *Extractor) extractCommit(src CommitSource, hash gitlib.Hash) *model.Commit {
	info, err := src.Commit(hash)
	if err != nil {
		e.log.Debug("skipping commit", "commit", hash.String(), "err", err)

		return nil
	}

	var diffs []model.Diff

	if len(info.Parents) == 0 {
		diffs, err = e.rootDiffs(src, hash)
	} else {
		diffs, err = e.parentDiffs(src, hash, info.Parents)
	}

	if err != nil {
		e.log.Debug("skipping commit", "commit", hash.String(), "err", err)

		return nil
	}

	if len(diffs) == 0 {
		return nil
	}

	return &model.Commit{
		ID:        hash.String(),
		Message:   info.Message,
		Author:    info.Author,
		Timestamp: info.Timestamp,
		Diffs:     diffs,
	}
}

// rootDiffs handles a commit without parents: every in-scope snapshot file is
// an addition, and structural detail (when requested) is parsed straight from
// the snapshot — there is no "before" version to correlate against.
func (e *Extractor) rootDiffs(src CommitSource, hash gitlib.Hash) ([]model.Diff, error) {
	snapshot, err := src.Snapshot(hash)
	if err != nil {
		return nil, err
	}

	var diffs []model.Diff

	for _, file := range snapshot {
		if !e.classifier.InScope(file.Path) {
			continue
		}

		diffs = append(diffs, model.FileDiff{PathB: file.Path, Op: model.OpAdded})

		structural, err := e.addedStructure(src, file.Path, file.Blob)
		if err != nil {
			return nil, err
		}

		diffs = append(diffs, structural...)
	}

	return diffs, nil
}

// parentDiffs applies the delta table against every parent.
func (e *Extractor) parentDiffs(src CommitSource, hash gitlib.Hash, parents []gitlib.Hash) ([]model.Diff, error) {
	var diffs []model.Diff

	for _, parent := range parents {
		deltas, err := src.ParentDelta(hash, parent)
		if err != nil {
			return nil, err
		}

		for _, delta := range deltas {
			deltaDiffs, err := e.deltaDiffs(src, delta)
			if err != nil {
				return nil, err
			}

			diffs = append(diffs, deltaDiffs...)
		}
	}

	return diffs, nil
}

// deltaDiffs classifies one tree delta:
//
//	new                        file added [+ added-only structure]
//	deleted                    file removed only
//	renamed, content unchanged file renamed only
//	renamed, content changed   file renamed + correlator output
//	modified in place          file modified + correlator output
func (e *Extractor) deltaDiffs(src CommitSource, delta Delta) ([]model.Diff, error) {
	switch delta.Kind {
	case DeltaNew:
		if !e.classifier.InScope(delta.NewPath) {
			return nil, nil
		}

		diffs := []model.Diff{model.FileDiff{PathB: delta.NewPath, Op: model.OpAdded}}

		structural, err := e.addedStructure(src, delta.NewPath, delta.NewBlob)
		if err != nil {
			return nil, err
		}

		return append(diffs, structural...), nil
	case DeltaDeleted:
		if !e.classifier.InScope(delta.OldPath) {
			return nil, nil
		}

		return []model.Diff{model.FileDiff{PathA: delta.OldPath, Op: model.OpRemoved}}, nil
	case DeltaRenamed:
		if !e.classifier.InScope(delta.NewPath) {
			return nil, nil
		}

		diffs := []model.Diff{model.FileDiff{PathA: delta.OldPath, PathB: delta.NewPath, Op: model.OpRenamed}}

		if delta.OldBlob == delta.NewBlob {
			return diffs, nil
		}

		structural, err := e.correlated(src, delta)
		if err != nil {
			return nil, err
		}

		return append(diffs, structural...), nil
	case DeltaModified:
		if !e.classifier.InScope(delta.OldPath) && !e.classifier.InScope(delta.NewPath) {
			return nil, nil
		}

		diffs := []model.Diff{model.FileDiff{PathA: delta.OldPath, PathB: delta.NewPath, Op: model.OpModified}}

		structural, err := e.correlated(src, delta)
		if err != nil {
			return nil, err
		}

		return append(diffs, structural...), nil
	default:
		return nil, nil
	}
}

// addedStructure parses a new file and emits added-only method and class
// diffs, without invoking the correlator.
func (e *Extractor) addedStructure(src CommitSource, path string, blob gitlib.Hash) ([]model.Diff, error) {
	parser := e.parserFor(path)
	if parser == nil {
		return nil, nil
	}

	text, err := src.BlobText(blob)
	if err != nil {
		return nil, err
	}

	components := parser.Parse(text)

	var diffs []model.Diff

	classes := map[string]bool{}

	for _, c := range components {
		diffs = append(diffs, model.MethodDiff{Path: path, Class: c.ClassPath, MethodB: c.Method, Op: model.OpAdded})
		classes[c.ClassPath] = true
	}

	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		diffs = append(diffs, model.ClassDiff{Path: path, ClassB: name, Op: model.OpAdded})
	}

	return diffs, nil
}

// correlated runs the structural correlator over both versions of a changed
// file.
func (e *Extractor) correlated(src CommitSource, delta Delta) ([]model.Diff, error) {
	parser := e.parserFor(delta.NewPath)
	if parser == nil {
		return nil, nil
	}

	oldText, err := src.BlobText(delta.OldBlob)
	if err != nil {
		return nil, err
	}

	newText, err := src.BlobText(delta.NewBlob)
	if err != nil {
		return nil, err
	}

	return correlate.Diff(parser,
		correlate.File{Path: delta.OldPath, Source: oldText},
		correlate.File{Path: delta.NewPath, Source: newText},
	), nil
}

// parserFor resolves the structural parser for a path, or nil when the file
// participates at file level only or method granularity is off.
func (e *Extractor) parserFor(path string) structure.Parser {
	if e.opts.Granularity != GranularityMethod {
		return nil
	}

	language, ok := e.classifier.StructuralLanguage(path)
	if !ok {
		return nil
	}

	return e.registry.Lookup(language)
}

// currentFiles collects the in-scope paths of the newest snapshot.
func (e *Extractor) currentFiles(src CommitSource, newest gitlib.Hash) (map[string]struct{}, error) {
	snapshot, err := src.Snapshot(newest)
	if err != nil {
		return nil, fmt.Errorf("newest snapshot: %w", err)
	}

	files := make(map[string]struct{}, len(snapshot))

	for _, file := range snapshot {
		if e.classifier.InScope(file.Path) {
			files[file.Path] = struct{}{}
		}
	}

	return files, nil
}
