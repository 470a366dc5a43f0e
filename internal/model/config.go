package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config is the complete fibs configuration.
// Values load from flags, FIBS_* env, ~/.fibs/config.yaml and these defaults, in that order.
type Config struct {
	Run         RunConfig         `yaml:"run" mapstructure:"run"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Cluster     ClusterConfig     `yaml:"cluster" mapstructure:"cluster"`
	Workflow    WorkflowConfig    `yaml:"workflow" mapstructure:"workflow"`
	Index       IndexConfig       `yaml:"index" mapstructure:"index"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia" mapstructure:"wikipedia"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Random      RandomConfig      `yaml:"random" mapstructure:"random"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// RunConfig controls one workflow generation run
type RunConfig struct {
	Name            string `yaml:"name" mapstructure:"name"`                         // Output prefix, e.g. logs/2024-05-01
	MinLength       int    `yaml:"min_length" mapstructure:"min_length"`             // Pages with fewer sentences lose their category
	UseCache        bool   `yaml:"use_cache" mapstructure:"use_cache"`               // Read snapshots instead of the datastore
	TimeOffset      int    `yaml:"time_offset" mapstructure:"time_offset"`           // Hours added before computing stats days
	MissingCategory string `yaml:"missing_category" mapstructure:"missing_category"` // Category for uncategorized pages
}

// PathsConfig locates local inputs and outputs
type PathsConfig struct {
	Categories     string `yaml:"categories" mapstructure:"categories"`           // Manifest glob
	PagesDir       string `yaml:"pages_dir" mapstructure:"pages_dir"`             // Page index files
	Dataset        string `yaml:"dataset" mapstructure:"dataset"`                 // Bootstrap claims (JSONL)
	FirebaseConfig string `yaml:"firebase_config" mapstructure:"firebase_config"` // Web app config with projectId/storageBucket
}

// ExtractConfig tunes the sentence extractor
type ExtractConfig struct {
	MinSentenceLength int      `yaml:"min_sentence_length" mapstructure:"min_sentence_length"`
	MaxTotalLength    int      `yaml:"max_total_length" mapstructure:"max_total_length"`
	Segmenter         string   `yaml:"segmenter" mapstructure:"segmenter"` // punkt or rules
	BadSections       []string `yaml:"bad_sections" mapstructure:"bad_sections"`
	BadStarts         []string `yaml:"bad_starts" mapstructure:"bad_starts"`
	BadEnds           []string `yaml:"bad_ends" mapstructure:"bad_ends"`
	ReferMarkers      []string `yaml:"refer_markers" mapstructure:"refer_markers"`
}

// ClusterConfig bounds claim clusters
type ClusterConfig struct {
	MinSize int `yaml:"min_size" mapstructure:"min_size"`
	MaxSize int `yaml:"max_size" mapstructure:"max_size"`
	Desired int `yaml:"desired" mapstructure:"desired"`
}

// WorkflowConfig controls task assembly
type WorkflowConfig struct {
	MinPriority     int    `yaml:"min_priority" mapstructure:"min_priority"`         // Priority pool must exceed this to be used alone
	DefaultName     string `yaml:"default_name" mapstructure:"default_name"`         // Slot used by bootstrap
	BootstrapWrites int    `yaml:"bootstrap_writes" mapstructure:"bootstrap_writes"` // Write tasks in the default workflow
	BootstrapVotes  int    `yaml:"bootstrap_votes" mapstructure:"bootstrap_votes"`   // Vote tasks in the default workflow
}

// IndexConfig selects the secondary index builder
type IndexConfig struct {
	Builder string   `yaml:"builder" mapstructure:"builder"` // inverted, sqlite or exec
	Command []string `yaml:"command" mapstructure:"command"` // exec builder argv; {input} and {output} are substituted
}

// WikipediaConfig configures page retrieval
type WikipediaConfig struct {
	Language       string        `yaml:"language" mapstructure:"language"`
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"` // Overrides https://<language>.wikipedia.org
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSec float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots  bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy      string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy     string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// StoreConfig selects datastore and blob backends
type StoreConfig struct {
	Backend         string `yaml:"backend" mapstructure:"backend"` // firestore or file
	ProjectID       string `yaml:"project_id" mapstructure:"project_id"`
	Bucket          string `yaml:"bucket" mapstructure:"bucket"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	FixtureDir      string `yaml:"fixture_dir" mapstructure:"fixture_dir"` // file backend documents
	BlobDir         string `yaml:"blob_dir" mapstructure:"blob_dir"`       // file backend blobs
}

// RandomConfig controls the shared random source
type RandomConfig struct {
	Seeded        bool  `yaml:"seeded" mapstructure:"seeded"`
	Seed          int64 `yaml:"seed" mapstructure:"seed"`
	BootstrapSeed int64 `yaml:"bootstrap_seed" mapstructure:"bootstrap_seed"`
}

// ConcurrencyConfig sizes the harvest worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig locates run snapshots
type CacheConfig struct {
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Name:            filepath.Join("logs", time.Now().Format("2006-01-02")),
			MinLength:       20,
			TimeOffset:      -6,
			MissingCategory: "NOCAT",
		},
		Paths: PathsConfig{
			Categories:     filepath.Join("categories", "wikititle_*.txt"),
			PagesDir:       "pages",
			Dataset:        filepath.Join("dataset", "test.jsonl"),
			FirebaseConfig: filepath.Join("board", "src", "config", "firebase.json"),
		},
		Extract: ExtractConfig{
			MinSentenceLength: 30,
			MaxTotalLength:    200000,
			Segmenter:         "punkt",
			BadSections: []string{
				"References", "Further reading", "Further Reading", "Episodes", "Sources",
				"See also", "External links", "Citations", "Documentaries", "Media",
			},
			BadStarts: []string{"(", "'s"},
			BadEnds: []string{
				`, "`, "),", ")", `"`, ":", "...", "Yahoo!", "Jeopardy!", "site", "&", ";",
				"Sgt.", "Col.",
			},
			ReferMarkers: []string{"refer to:", "refers to:", "disambiguation"},
		},
		Cluster: ClusterConfig{
			MinSize: 8,
			MaxSize: 64,
			Desired: 16,
		},
		Workflow: WorkflowConfig{
			MinPriority:     100,
			DefaultName:     "default",
			BootstrapWrites: 10,
			BootstrapVotes:  10,
		},
		Index: IndexConfig{
			Builder: "inverted",
			Command: []string{"node", "util/single_index.js", "{input}", "{output}"},
		},
		Wikipedia: WikipediaConfig{
			Language:       "en",
			UserAgent:      "fibs/0.1 (+https://github.com/ppiankov/fibs)",
			Timeout:        30 * time.Second,
			MaxBodyBytes:   8_000_000,
			RequestsPerSec: 5,
			Burst:          5,
			RespectRobots:  true,
		},
		Store: StoreConfig{
			Backend:    "firestore",
			FixtureDir: filepath.Join("fixtures", "store"),
			BlobDir:    filepath.Join("fixtures", "blobs"),
		},
		Random: RandomConfig{
			Seed:          42,
			BootstrapSeed: 42,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Cache: CacheConfig{
			Dir:       ".fibs-cache",
			TTL:       30 * 24 * time.Hour,
			MemoryTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks value ranges and enum fields
func (c *Config) Validate() error {
	cl := c.Cluster
	if cl.MinSize < 1 || cl.Desired < cl.MinSize || cl.MaxSize < cl.Desired {
		return fmt.Errorf("%w: cluster sizes must satisfy 1 <= min_size <= desired <= max_size (got %d/%d/%d)",
			ErrInvalidConfig, cl.MinSize, cl.Desired, cl.MaxSize)
	}
	if cl.Desired+cl.MinSize-1 > cl.MaxSize {
		return fmt.Errorf("%w: desired+min_size-1 must not exceed max_size", ErrInvalidConfig)
	}
	if c.Extract.MinSentenceLength < 1 || c.Extract.MaxTotalLength < c.Extract.MinSentenceLength {
		return fmt.Errorf("%w: extract lengths out of range", ErrInvalidConfig)
	}
	switch c.Extract.Segmenter {
	case "punkt", "rules":
	default:
		return fmt.Errorf("%w: unknown segmenter %q", ErrInvalidConfig, c.Extract.Segmenter)
	}
	switch c.Index.Builder {
	case "inverted", "sqlite":
	case "exec":
		if len(c.Index.Command) == 0 {
			return fmt.Errorf("%w: exec index builder needs a command", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown index builder %q", ErrInvalidConfig, c.Index.Builder)
	}
	switch c.Store.Backend {
	case "firestore", "file":
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Concurrency.Workers < 1 {
		return fmt.Errorf("%w: concurrency.workers must be >= 1", ErrInvalidConfig)
	}
	if c.Workflow.MinPriority < 0 {
		return fmt.Errorf("%w: workflow.min_priority must be >= 0", ErrInvalidConfig)
	}
	if c.Workflow.BootstrapWrites < 0 || c.Workflow.BootstrapVotes < 0 {
		return fmt.Errorf("%w: bootstrap task counts must be >= 0", ErrInvalidConfig)
	}
	return nil
}
