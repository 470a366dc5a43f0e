package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/fibs/internal/category"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/random"
	"github.com/ppiankov/fibs/internal/store"
	"github.com/ppiankov/fibs/internal/workflow"
	"go.uber.org/zap"
)

// BootstrapAuthor is the author recorded on seeded claims
const BootstrapAuthor = "UNK"

// CORS applied to the bucket so the front-end can read blobs
var (
	CORSOrigins = []string{"*"}
	CORSMethods = []string{"GET"}
	CORSMaxAge  = 86400 * time.Second
)

// DatasetEvidence is one evidence sentence of a dataset claim
type DatasetEvidence struct {
	Text string `json:"text"`
}

// DatasetClaim is one line of the bootstrap dataset
type DatasetClaim struct {
	ID                string            `json:"id"`
	Text              string            `json:"text"`
	Label             model.Label       `json:"label"`
	WikipediaPage     string            `json:"wikipedia_page"`
	GoldEvidence      []DatasetEvidence `json:"gold_evidence"`
	RetrievedEvidence []DatasetEvidence `json:"retrieved_evidence"`
}

// Document returns the fibs document seeded for the claim
func (c DatasetClaim) Document() map[string]any {
	return map[string]any{
		"page":     c.WikipediaPage,
		"claim":    c.Text,
		"author":   BootstrapAuthor,
		"veracity": strings.ToUpper(fmt.Sprint(c.Label == model.LabelSupports)),
		"gold":     lines(c.GoldEvidence),
		"evidence": lines(c.RetrievedEvidence),
	}
}

func lines(evidence []DatasetEvidence) []any {
	out := make([]any, 0, len(evidence))
	for _, ev := range evidence {
		out = append(out, map[string]any{"line": ev.Text})
	}
	return out
}

// ReadDataset loads a JSONL claim dataset. Claims without an id get a random one.
func ReadDataset(path string) ([]DatasetClaim, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []DatasetClaim
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c DatasetClaim
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", lineNo, err)
		}
		if c.ID == "" {
			c.ID = datasetID(path, lineNo)
		}
		claims = append(claims, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return claims, nil
}

// datasetID names a claim without an id by its dataset file and line
func datasetID(path string, line int) string {
	name := fmt.Sprintf("%s:%d", filepath.Base(path), line)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// BootstrapResult summarizes a bootstrap run
type BootstrapResult struct {
	Workflow model.Workflow
	Writes   int
	Votes    int
	Harvest  int // Pages newly published
}

type categoryPage struct {
	category, page string
}

// Bootstrap prepares an empty deployment: bucket CORS, a few harvested pages
// with write tasks, seeded claim pairs with vote tasks and the default workflow.
// Every draw comes from a source seeded with seed.
func (p *Pipeline) Bootstrap(ctx context.Context, seed int64) (*BootstrapResult, error) {
	if cors, ok := p.blobs.(store.CORSConfigurer); ok {
		if err := cors.SetCORS(ctx, CORSOrigins, CORSMethods, CORSMaxAge); err != nil {
			return nil, fmt.Errorf("set bucket cors: %w", err)
		}
	}

	rng := random.Seeded(seed)
	cfg := p.config.Workflow
	res := &BootstrapResult{Workflow: make(model.Workflow)}

	categories, _, err := category.Read(p.config.Paths.Categories)
	if err != nil {
		return nil, err
	}
	var pages []categoryPage
	for name, titles := range categories {
		for _, title := range titles {
			pages = append(pages, categoryPage{name, title})
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].category != pages[j].category {
			return pages[i].category < pages[j].category
		}
		return pages[i].page < pages[j].page
	})
	rng.Shuffle(len(pages), func(i, j int) { pages[i], pages[j] = pages[j], pages[i] })

	for i, cp := range pages[:min(cfg.BootstrapWrites, len(pages))] {
		added, err := p.ProcessPage(ctx, cp.category, cp.page)
		if err != nil {
			p.logger.Warn("Page skipped", zap.String("page", cp.page), zap.Error(err))
		}
		if added {
			res.Harvest++
		}
		res.Workflow[workflow.Key(i, model.TaskWrite)] = model.WriteTask(cp.page, i%2 == 1)
		res.Writes++
	}

	dataset, err := ReadDataset(p.config.Paths.Dataset)
	if err != nil {
		return nil, err
	}
	var refutes, supports []DatasetClaim
	for _, c := range dataset {
		if c.Label == model.LabelSupports {
			supports = append(supports, c)
		} else {
			refutes = append(refutes, c)
		}
	}
	rng.Shuffle(len(refutes), func(i, j int) { refutes[i], refutes[j] = refutes[j], refutes[i] })
	rng.Shuffle(len(supports), func(i, j int) { supports[i], supports[j] = supports[j], supports[i] })

	votes := min(cfg.BootstrapVotes, len(refutes), len(supports))
	if votes < cfg.BootstrapVotes {
		p.logger.Warn("Dataset too small for requested vote tasks",
			zap.Int("requested", cfg.BootstrapVotes), zap.Int("available", votes))
	}
	for i := 0; i < votes; i++ {
		left, right := supports[i], refutes[i]
		if rng.Float64() < 0.5 {
			left, right = refutes[i], supports[i]
		}
		for _, c := range []DatasetClaim{left, right} {
			if err := p.store.PutClaim(ctx, c.ID, c.Document()); err != nil {
				return nil, fmt.Errorf("seed claim %s: %w", c.ID, err)
			}
		}
		res.Workflow[workflow.Key(i, model.TaskVerify)] = model.Task{
			Type:       model.TaskVerify,
			ClaimLeft:  left.ID,
			ClaimRight: right.ID,
			PageLeft:   left.WikipediaPage,
			PageRight:  right.WikipediaPage,
		}
		res.Votes++
	}

	if err := workflow.Publish(ctx, p.blobs, cfg.DefaultName, res.Workflow); err != nil {
		return nil, err
	}
	p.logger.Info(fmt.Sprintf("Created new workflow %s with %d authoring tasks and %d voting tasks.",
		cfg.DefaultName, res.Writes, res.Votes))
	return res, nil
}
