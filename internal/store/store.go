// Package store reads and writes the backing datastore and blob store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/fibs/internal/model"
)

// Collection names used by the front-end
const (
	CollectionUsers  = "users"
	CollectionStatus = "status"
	CollectionFibs   = "fibs"
	CollectionVotes  = "votes"
	CollectionLikes  = "likes"
	CollectionPages  = "pages"
)

// ErrNotFound is returned for a missing document or blob
var ErrNotFound = errors.New("not found")

// Datastore is the document database shared with the front-end
type Datastore interface {
	Users(ctx context.Context) ([]User, error)
	Statuses(ctx context.Context) ([]StatusRecord, error)
	Claims(ctx context.Context) ([]RawClaim, error)

	// Votes returns the parsed votes on a claim. Malformed votes are skipped
	// and reported as RecordErrors next to the votes that parsed.
	Votes(ctx context.Context, claimID string) ([]VoteRecord, error)
	Likes(ctx context.Context, claimID string) ([]LikeRecord, error)

	// PageSentences returns the serialized page index stored under pages/<title>
	PageSentences(ctx context.Context, title string) (string, error)

	// PutClaim writes a fibs/<id> document
	PutClaim(ctx context.Context, id string, doc map[string]any) error

	Close() error
}

// BlobStore is the object storage served to the front-end
type BlobStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Upload(ctx context.Context, name, contentType string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// CORSConfigurer is implemented by blob stores that serve browsers directly
type CORSConfigurer interface {
	SetCORS(ctx context.Context, origins, methods []string, maxAge time.Duration) error
}

// FirebaseConfig is the subset of the web app config used here
type FirebaseConfig struct {
	ProjectID     string `json:"projectId"`
	StorageBucket string `json:"storageBucket"`
}

// LoadFirebaseConfig reads the web app config. A missing file is not an error.
func LoadFirebaseConfig(path string) (FirebaseConfig, error) {
	var cfg FirebaseConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read firebase config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode firebase config: %w", err)
	}
	return cfg, nil
}

// Open builds the configured datastore and blob store.
// Project and bucket fall back to the firebase web config when unset.
func Open(ctx context.Context, cfg model.StoreConfig, firebaseConfig string) (Datastore, BlobStore, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.FixtureDir), NewLocalBlobs(cfg.BlobDir), nil
	case "firestore", "":
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	web, err := LoadFirebaseConfig(firebaseConfig)
	if err != nil {
		return nil, nil, err
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = web.ProjectID
	}
	if cfg.Bucket == "" {
		cfg.Bucket = web.StorageBucket
	}
	if cfg.ProjectID == "" || cfg.Bucket == "" {
		return nil, nil, fmt.Errorf("store: project_id and bucket are required (set store.* or %s)", firebaseConfig)
	}

	db, err := NewFirestore(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := NewGCSBlobs(ctx, cfg.Bucket, cfg.CredentialsFile)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, blobs, nil
}
