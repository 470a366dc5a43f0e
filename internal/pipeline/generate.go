package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ppiankov/fibs/internal/cache"
	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/claims"
	"github.com/ppiankov/fibs/internal/cluster"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/random"
	"github.com/ppiankov/fibs/internal/reconcile"
	"github.com/ppiankov/fibs/internal/store"
	"github.com/ppiankov/fibs/internal/workflow"
	"go.uber.org/zap"
)

// Snapshot is everything a workflow run reads from the datastore
type Snapshot struct {
	Users    []store.User
	Statuses []store.StatusRecord
	Claims   []store.RawClaim
	Records  map[string]reconcile.ClaimRecords
}

// GenerateResult summarizes a workflow run
type GenerateResult struct {
	Name            string // Workflow slot
	Workflow        workflow.Result
	Claims          claims.Report
	Comparisons     int
	Issues          []reconcile.Issue
	Stats           []reconcile.StatRow
	TrueProbability float64
	FromCache       bool
}

// Generate reconciles the datastore into exports and publishes a new
// workflow named after the last element of run.Name.
func (p *Pipeline) Generate(ctx context.Context, run model.RunConfig, rng random.Source) (*GenerateResult, error) {
	categories, priority, err := category.Read(p.config.Paths.Categories)
	if err != nil {
		return nil, err
	}
	lookup := p.PageLengths(ctx, categories, run.MinLength).CategoryLookup(run.MinLength)

	snap, fromCache, err := p.snapshot(ctx, run)
	if err != nil {
		return nil, err
	}
	res := &GenerateResult{Name: filepath.Base(run.Name), FromCache: fromCache}

	agg := reconcile.NewAggregator(lookup, run.MissingCategory, p.logger).Aggregate(snap.Claims, snap.Records)
	res.Issues = append(res.Issues, agg.Issues...)

	res.Stats = reconcile.ComputeStats(displayNames(snap.Users), snap.Claims, agg.Votes, run.TimeOffset)
	if err := reconcile.SaveStats(res.Stats, run.Name); err != nil {
		return nil, err
	}

	normalized, report := claims.NewNormalizer(p.logger).Normalize(snap.Claims, agg.Engagement)
	res.Claims = report
	p.logger.Info(fmt.Sprintf("%d claims with %v fields", report.Accepted, report.Fields))

	res.TrueProbability = claims.TrueProbability(normalized)
	p.logger.Info(fmt.Sprintf("Percentage of true claims: %g", res.TrueProbability))

	// Inconsistent labels abort the run before anything is published
	seen, seenIssues := reconcile.BuildSeen(snap.Statuses, p.logger)
	res.Issues = append(res.Issues, seenIssues...)
	rows, rowIssues, err := reconcile.BuildComparisons(seen, byID(normalized), agg.Votes, p.logger)
	if err != nil {
		return nil, err
	}
	res.Issues = append(res.Issues, rowIssues...)
	res.Comparisons = len(rows)

	clusters := cluster.NewClusterer(cluster.BoundsFromConfig(p.config.Cluster), p.logger).ByCategory(normalized)
	pairs := cluster.NewPairBuilder(rng).BuildAll(clusters)

	assembler := workflow.NewAssembler(rng, workflow.Options{
		MinPriority:     p.config.Workflow.MinPriority,
		TrueProbability: res.TrueProbability,
	}, p.logger)
	res.Workflow, err = assembler.Assemble(pairs, categories, priority)
	if err != nil {
		return nil, err
	}
	if err := workflow.Publish(ctx, p.blobs, res.Name, res.Workflow.Workflow); err != nil {
		return nil, err
	}
	p.logger.Info(fmt.Sprintf("Created new workflow %s with %d authoring tasks and %d voting tasks.",
		res.Name, res.Workflow.Writes, res.Workflow.Votes))

	if err := claims.Save(normalized, run.Name); err != nil {
		return nil, err
	}
	if err := reconcile.SaveComparisons(rows, run.Name); err != nil {
		return nil, err
	}
	p.logger.Info(fmt.Sprintf("%d comparison rows", len(rows)))
	return res, nil
}

// snapshot loads the run snapshot from cache when asked to, falling back to
// a live fetch. Live fetches always refresh the cache.
func (p *Pipeline) snapshot(ctx context.Context, run model.RunConfig) (Snapshot, bool, error) {
	snapshots := p.Snapshots(run.Name)
	if run.UseCache {
		if snap, ok := loadSnapshot(snapshots); ok {
			p.logger.Info("Loaded snapshot from cache", zap.String("run", run.Name))
			return snap, true, nil
		}
		p.logger.Info("Snapshot cache miss, fetching from datastore", zap.String("run", run.Name))
	}

	snap, err := p.fetchSnapshot(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	if err := saveSnapshot(snapshots, snap); err != nil {
		p.logger.Warn("Snapshot not cached", zap.Error(err))
	}
	return snap, false, nil
}

func loadSnapshot(s *cache.Snapshots) (Snapshot, bool) {
	var snap Snapshot
	ok := s.Load(cache.KindUsers, &snap.Users) &&
		s.Load(cache.KindComparisons, &snap.Statuses) &&
		s.Load(cache.KindClaims, &snap.Claims) &&
		s.Load(cache.KindVotes, &snap.Records)
	return snap, ok
}

func saveSnapshot(s *cache.Snapshots, snap Snapshot) error {
	for kind, v := range map[string]any{
		cache.KindUsers:       snap.Users,
		cache.KindComparisons: snap.Statuses,
		cache.KindClaims:      snap.Claims,
		cache.KindVotes:       snap.Records,
	} {
		if err := s.Save(kind, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) fetchSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Users, err = p.store.Users(ctx); err != nil {
		return snap, fmt.Errorf("load users: %w", err)
	}
	if snap.Statuses, err = p.store.Statuses(ctx); err != nil {
		return snap, fmt.Errorf("load comparisons: %w", err)
	}
	pairs := 0
	for _, s := range snap.Statuses {
		pairs += len(s.Pairs)
	}
	p.logger.Info(fmt.Sprintf("Got %d comparisons from database", pairs))

	if snap.Claims, err = p.store.Claims(ctx); err != nil {
		return snap, fmt.Errorf("load claims: %w", err)
	}
	snap.Records = make(map[string]reconcile.ClaimRecords, len(snap.Claims))
	for _, c := range snap.Claims {
		votes, err := p.store.Votes(ctx, c.ID)
		var skipped store.RecordErrors
		switch {
		case errors.As(err, &skipped):
			for _, bad := range skipped {
				p.logger.Warn("Vote skipped", zap.String("claim", c.ID), zap.Error(bad))
			}
		case err != nil:
			p.logger.Warn("Votes skipped", zap.String("claim", c.ID), zap.Error(err))
			votes = nil
		}
		likes, err := p.store.Likes(ctx, c.ID)
		if err != nil {
			p.logger.Warn("Likes skipped", zap.String("claim", c.ID), zap.Error(err))
			likes = nil
		}
		snap.Records[c.ID] = reconcile.ClaimRecords{Votes: votes, Likes: likes}
	}
	p.logger.Info("Loaded claims and votes", zap.Int("claims", len(snap.Claims)))
	return snap, nil
}

func displayNames(users []store.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UID] = u.DisplayName
	}
	return names
}

func byID(list []model.Claim) map[string]model.Claim {
	m := make(map[string]model.Claim, len(list))
	for _, c := range list {
		m[c.ID] = c
	}
	return m
}
