package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore is a Datastore over JSON fixture files, one per collection:
//
//	users.json   {uid: {...}}
//	status.json  {uid: {...}}
//	fibs.json    {id: {...}}
//	votes.json   {claim id: {voter: {...}}}
//	likes.json   {claim id: [uid, ...]}
//	pages.json   {title: {"sentences": "..."}}
//
// Missing files are empty collections.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-backed datastore rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) load(name string, into any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) documents(name string) (map[string]map[string]any, error) {
	docs := make(map[string]map[string]any)
	if err := f.load(name, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Users implements Datastore
func (f *FileStore) Users(_ context.Context) ([]User, error) {
	docs, err := f.documents(CollectionUsers)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(docs))
	for _, id := range sortedKeys(docs) {
		users = append(users, ParseUser(id, docs[id]))
	}
	return users, nil
}

// Statuses implements Datastore
func (f *FileStore) Statuses(_ context.Context) ([]StatusRecord, error) {
	docs, err := f.documents(CollectionStatus)
	if err != nil {
		return nil, err
	}
	statuses := make([]StatusRecord, 0, len(docs))
	for _, id := range sortedKeys(docs) {
		statuses = append(statuses, ParseStatus(id, docs[id]))
	}
	return statuses, nil
}

// Claims implements Datastore
func (f *FileStore) Claims(_ context.Context) ([]RawClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs, err := f.documents(CollectionFibs)
	if err != nil {
		return nil, err
	}
	claims := make([]RawClaim, 0, len(docs))
	for _, id := range sortedKeys(docs) {
		claims = append(claims, ParseClaim(id, docs[id]))
	}
	return claims, nil
}

// Votes implements Datastore
func (f *FileStore) Votes(_ context.Context, claimID string) ([]VoteRecord, error) {
	all := make(map[string]map[string]map[string]any)
	if err := f.load(CollectionVotes, &all); err != nil {
		return nil, err
	}
	byVoter := all[claimID]
	votes := make([]VoteRecord, 0, len(byVoter))
	var skipped RecordErrors
	for _, id := range sortedKeys(byVoter) {
		vote, err := ParseVote(claimID, byVoter[id])
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		votes = append(votes, vote)
	}
	return votes, skipped.orNil()
}

// Likes implements Datastore
func (f *FileStore) Likes(_ context.Context, claimID string) ([]LikeRecord, error) {
	all := make(map[string][]string)
	if err := f.load(CollectionLikes, &all); err != nil {
		return nil, err
	}
	likes := make([]LikeRecord, 0, len(all[claimID]))
	for _, user := range all[claimID] {
		likes = append(likes, LikeRecord{ClaimID: claimID, User: user})
	}
	return likes, nil
}

// PageSentences implements Datastore
func (f *FileStore) PageSentences(_ context.Context, title string) (string, error) {
	docs, err := f.documents(CollectionPages)
	if err != nil {
		return "", err
	}
	sentences, ok := docs[title]["sentences"].(string)
	if !ok {
		return "", fmt.Errorf("pages/%s: %w", title, ErrNotFound)
	}
	return sentences, nil
}

// PutClaim implements Datastore
func (f *FileStore) PutClaim(_ context.Context, id string, doc map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.documents(CollectionFibs)
	if err != nil {
		return err
	}
	docs[id] = doc

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fibs: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, CollectionFibs+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write fibs: %w", err)
	}
	return nil
}

// Close implements Datastore
func (f *FileStore) Close() error {
	return nil
}
