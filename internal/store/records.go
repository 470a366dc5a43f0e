package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrMalformed wraps boundary parse failures
var ErrMalformed = errors.New("malformed record")

// RecordErrors lists records skipped while reading a collection.
// It is returned alongside the records that did parse.
type RecordErrors []error

func (e RecordErrors) Error() string {
	return errors.Join(e...).Error()
}

func (e RecordErrors) Unwrap() []error {
	return e
}

// orNil keeps an empty list from becoming a non-nil error
func (e RecordErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// EvidenceItem is one evidence entry as written by the front-end
type EvidenceItem struct {
	Name string // Section path
	Line string // Sentence text
}

// EvidenceField keeps whether an evidence field was present and structured
type EvidenceField struct {
	Present    bool
	Structured bool // Every entry is an object
	Count      int  // Entries in the list, structured or not
	Items      []EvidenceItem
}

// RawClaim is a fibs/<id> document before normalization
type RawClaim struct {
	ID       string
	Text     string
	Page     string
	Author   string
	Veracity string
	Created  *time.Time
	Evidence EvidenceField // "evidence", or "evidence1"/"evidence2" flattened
	Gold     EvidenceField
}

// ParseClaim reads a fibs document
func ParseClaim(id string, data map[string]any) RawClaim {
	raw := RawClaim{
		ID:       id,
		Text:     stringField(data, "claim"),
		Page:     stringField(data, "page"),
		Author:   stringField(data, "author"),
		Veracity: stringField(data, "veracity"),
	}
	if t, ok := toTime(data["created"]); ok {
		raw.Created = &t
	}

	if first, ok := data["evidence1"]; ok {
		raw.Evidence = parseEvidence([]any{first, data["evidence2"]})
	} else if list, ok := data["evidence"]; ok {
		raw.Evidence = parseEvidence(list)
	}
	if gold, ok := data["gold"]; ok {
		raw.Gold = parseEvidence(gold)
	}
	return raw
}

func parseEvidence(value any) EvidenceField {
	field := EvidenceField{Present: value != nil}
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return field
	}
	field.Count = len(list)
	field.Structured = true
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			field.Structured = false
			field.Items = nil
			return field
		}
		field.Items = append(field.Items, EvidenceItem{
			Name: stringField(m, "name"),
			Line: stringField(m, "line"),
		})
	}
	return field
}

// StatusRecord is the set of claim pairs a user was shown
type StatusRecord struct {
	User     string
	Pairs    [][2]string
	Rejected []string // pair-shaped keys that did not split into two ids
}

// ParseStatus reads a status/<user> document.
// Pair keys contain "_" and do not end in "true" or "false".
func ParseStatus(user string, data map[string]any) StatusRecord {
	rec := StatusRecord{User: user}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !strings.Contains(key, "_") || strings.HasSuffix(key, "true") || strings.HasSuffix(key, "false") {
			continue
		}
		parts := strings.Split(key, "_")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			rec.Rejected = append(rec.Rejected, key)
			continue
		}
		rec.Pairs = append(rec.Pairs, [2]string{parts[0], parts[1]})
	}
	return rec
}

// VoteRecord is a fibs/<id>/votes/<voter> document
type VoteRecord struct {
	ClaimID      string
	Voter        string
	Success      bool
	Points       float64
	HasPoints    bool
	Created      *time.Time
	SecondsLeft  int // -1 when absent
	Fibs         []string
	EvidenceUsed []int
}

// ParseVote reads a vote document. The voter is the "author" field.
func ParseVote(claimID string, data map[string]any) (VoteRecord, error) {
	voter := stringField(data, "author")
	if voter == "" {
		return VoteRecord{}, fmt.Errorf("%w: vote on %s has no author", ErrMalformed, claimID)
	}
	rec := VoteRecord{ClaimID: claimID, Voter: voter, SecondsLeft: -1}
	rec.Success, _ = data["success"].(bool)
	if points, ok := toFloat(data["points"]); ok {
		rec.Points = points
		rec.HasPoints = true
	}
	if t, ok := toTime(data["created"]); ok {
		rec.Created = &t
	}
	if seconds, ok := toFloat(data["secondsLeft"]); ok {
		rec.SecondsLeft = int(seconds)
	}
	if list, ok := data["fibs"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				rec.Fibs = append(rec.Fibs, s)
			}
		}
	}
	if list, ok := data["evidenceUsed"].([]any); ok {
		for _, item := range list {
			if n, ok := toFloat(item); ok {
				rec.EvidenceUsed = append(rec.EvidenceUsed, int(n))
			}
		}
	}
	return rec, nil
}

// LikeRecord is a fibs/<id>/likes/<user> document
type LikeRecord struct {
	ClaimID string
	User    string
}

// User is a users/<uid> document
type User struct {
	UID         string
	DisplayName string
}

// ParseUser reads a user document
func ParseUser(uid string, data map[string]any) User {
	return User{UID: uid, DisplayName: stringField(data, "displayName")}
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07:00", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
