// Package workflow assembles vote and write tasks into a front-end workflow.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/cluster"
	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/random"
	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
)

// MaxTasks is the per-type limit imposed by five-digit keys
const MaxTasks = 99999

// ErrTooManyTasks is returned when a task type exceeds MaxTasks
var ErrTooManyTasks = errors.New("too many tasks")

// Key returns the zero-padded workflow key of the n-th task of a type
func Key(n int, taskType model.TaskType) string {
	suffix := "write"
	if taskType == model.TaskVerify {
		suffix = "vote"
	}
	return fmt.Sprintf("%05d_%s", n, suffix)
}

// Options tune write-task selection
type Options struct {
	MinPriority     int     // Priority pages are used alone only when more than this many remain
	TrueProbability float64 // Fraction of existing claims that are true
}

// Result is an assembled workflow and what was excluded from it
type Result struct {
	Workflow model.Workflow
	Banned   model.Set // Pages of rejected same-page pairs
	Votes    int
	Writes   int
}

// Assembler builds workflows
type Assembler struct {
	rng    random.Source
	opts   Options
	logger *zap.Logger
}

// NewAssembler creates an assembler drawing from rng
func NewAssembler(rng random.Source, opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{rng: rng, opts: opts, logger: logger}
}

// Assemble emits a vote task per accepted pair, then write tasks over the
// candidate pages. Pairs drawn from a single page are rejected and that page
// receives no write task.
func (a *Assembler) Assemble(pairs []cluster.Pair, categories category.Categories, priority model.Set) (Result, error) {
	res := Result{Workflow: make(model.Workflow), Banned: make(model.Set)}

	for _, p := range pairs {
		if p.Left.Page == p.Right.Page {
			res.Banned.Add(p.Left.Page)
			continue
		}
		if res.Votes >= MaxTasks {
			return Result{}, fmt.Errorf("%w: more than %d vote tasks", ErrTooManyTasks, MaxTasks)
		}
		res.Workflow[Key(res.Votes, model.TaskVerify)] = model.VoteTask(p.Left, p.Right)
		res.Votes++
	}

	var candidates []string
	if remaining := priority.Minus(res.Banned); len(remaining) > a.opts.MinPriority {
		candidates = priority.Sorted()
	} else {
		candidates = categories.Pages().Sorted()
	}
	random.ShuffleStrings(a.rng, candidates)

	for _, page := range candidates {
		if res.Banned.Has(page) {
			continue
		}
		if res.Writes >= MaxTasks {
			return Result{}, fmt.Errorf("%w: more than %d write tasks", ErrTooManyTasks, MaxTasks)
		}
		veracity := a.rng.Float64() > a.opts.TrueProbability
		res.Workflow[Key(res.Writes, model.TaskWrite)] = model.WriteTask(page, veracity)
		res.Writes++
	}

	a.logger.Info("Assembled workflow",
		zap.Int("votes", res.Votes),
		zap.Int("writes", res.Writes),
		zap.Int("banned_pages", len(res.Banned)))
	return res, nil
}

// BlobName returns the blob path of a workflow slot
func BlobName(name string) string {
	return "workflow/" + name + ".json"
}

// Publish uploads the workflow as pretty JSON with sorted keys
func Publish(ctx context.Context, blobs store.BlobStore, name string, w model.Workflow) error {
	data, err := export.PrettyJSON(w)
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	if err := blobs.Upload(ctx, BlobName(name), "application/json", data); err != nil {
		return fmt.Errorf("publish workflow %s: %w", name, err)
	}
	return nil
}
