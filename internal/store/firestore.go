package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Firestore is the production Datastore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore connects to the project's default database
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

// stream calls fn for every document of the collection
func stream(ctx context.Context, col *firestore.CollectionRef, fn func(id string, data map[string]any) error) error {
	docs := col.Documents(ctx)
	defer docs.Stop()
	for {
		doc, err := docs.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream %s: %w", col.Path, err)
		}
		if err := fn(doc.Ref.ID, doc.Data()); err != nil {
			return err
		}
	}
}

// Users implements Datastore
func (f *Firestore) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := stream(ctx, f.client.Collection(CollectionUsers), func(id string, data map[string]any) error {
		users = append(users, ParseUser(id, data))
		return nil
	})
	return users, err
}

// Statuses implements Datastore
func (f *Firestore) Statuses(ctx context.Context) ([]StatusRecord, error) {
	var statuses []StatusRecord
	err := stream(ctx, f.client.Collection(CollectionStatus), func(id string, data map[string]any) error {
		statuses = append(statuses, ParseStatus(id, data))
		return nil
	})
	return statuses, err
}

// Claims implements Datastore
func (f *Firestore) Claims(ctx context.Context) ([]RawClaim, error) {
	var claims []RawClaim
	err := stream(ctx, f.client.Collection(CollectionFibs), func(id string, data map[string]any) error {
		claims = append(claims, ParseClaim(id, data))
		return nil
	})
	return claims, err
}

// Votes implements Datastore
func (f *Firestore) Votes(ctx context.Context, claimID string) ([]VoteRecord, error) {
	var votes []VoteRecord
	var skipped RecordErrors
	col := f.client.Collection(CollectionFibs).Doc(claimID).Collection(CollectionVotes)
	err := stream(ctx, col, func(_ string, data map[string]any) error {
		vote, err := ParseVote(claimID, data)
		if err != nil {
			skipped = append(skipped, err)
			return nil
		}
		votes = append(votes, vote)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return votes, skipped.orNil()
}

// Likes implements Datastore
func (f *Firestore) Likes(ctx context.Context, claimID string) ([]LikeRecord, error) {
	var likes []LikeRecord
	col := f.client.Collection(CollectionFibs).Doc(claimID).Collection(CollectionLikes)
	err := stream(ctx, col, func(id string, _ map[string]any) error {
		likes = append(likes, LikeRecord{ClaimID: claimID, User: id})
		return nil
	})
	return likes, err
}

// PageSentences implements Datastore
func (f *Firestore) PageSentences(ctx context.Context, title string) (string, error) {
	snap, err := f.client.Collection(CollectionPages).Doc(title).Get(ctx)
	if snap != nil && !snap.Exists() {
		return "", fmt.Errorf("pages/%s: %w", title, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get pages/%s: %w", title, err)
	}
	sentences, ok := snap.Data()["sentences"].(string)
	if !ok {
		return "", fmt.Errorf("pages/%s: %w", title, ErrNotFound)
	}
	return sentences, nil
}

// PutClaim implements Datastore
func (f *Firestore) PutClaim(ctx context.Context, id string, doc map[string]any) error {
	if _, err := f.client.Collection(CollectionFibs).Doc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("set fibs/%s: %w", id, err)
	}
	return nil
}

// Close releases the client
func (f *Firestore) Close() error {
	return f.client.Close()
}
