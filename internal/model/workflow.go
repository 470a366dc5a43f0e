package model

import (
	"encoding/json"
	"fmt"
)

// TaskType discriminates workflow tasks
type TaskType string

const (
	TaskWrite  TaskType = "write"  // Author a claim about a page
	TaskVerify TaskType = "verify" // Compare two claims
)

// Task is one unit of work for a front-end user.
// Write tasks use Page and Veracity; verify tasks use the Claim*/Page* pairs.
type Task struct {
	Type       TaskType
	Page       string
	Veracity   bool
	ClaimLeft  string
	ClaimRight string
	PageLeft   string
	PageRight  string
}

// WriteTask builds a write task.
func WriteTask(page string, veracity bool) Task {
	return Task{Type: TaskWrite, Page: page, Veracity: veracity}
}

// VoteTask builds a verify task for the left/right claims.
func VoteTask(left, right Claim) Task {
	return Task{
		Type:       TaskVerify,
		ClaimLeft:  left.ID,
		ClaimRight: right.ID,
		PageLeft:   left.Page,
		PageRight:  right.Page,
	}
}

type writeTaskJSON struct {
	Page     string   `json:"page"`
	Type     TaskType `json:"type"`
	Veracity bool     `json:"veracity"`
}

type voteTaskJSON struct {
	ClaimLeft  string   `json:"claim_left"`
	ClaimRight string   `json:"claim_right"`
	PageLeft   string   `json:"page_left"`
	PageRight  string   `json:"page_right"`
	Type       TaskType `json:"type"`
}

// MarshalJSON encodes only the fields of the task's variant.
func (t Task) MarshalJSON() ([]byte, error) {
	switch t.Type {
	case TaskWrite:
		return json.Marshal(writeTaskJSON{Page: t.Page, Type: t.Type, Veracity: t.Veracity})
	case TaskVerify:
		return json.Marshal(voteTaskJSON{
			ClaimLeft:  t.ClaimLeft,
			ClaimRight: t.ClaimRight,
			PageLeft:   t.PageLeft,
			PageRight:  t.PageRight,
			Type:       t.Type,
		})
	default:
		return nil, fmt.Errorf("unknown task type %q", t.Type)
	}
}

// UnmarshalJSON decodes either variant based on the "type" field.
func (t *Task) UnmarshalJSON(data []byte) error {
	var head struct {
		Type TaskType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case TaskWrite:
		var w writeTaskJSON
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = WriteTask(w.Page, w.Veracity)
	case TaskVerify:
		var v voteTaskJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Task{Type: TaskVerify, ClaimLeft: v.ClaimLeft, ClaimRight: v.ClaimRight, PageLeft: v.PageLeft, PageRight: v.PageRight}
	default:
		return fmt.Errorf("unknown task type %q", head.Type)
	}
	return nil
}

// Workflow maps zero-padded task keys to tasks. Sorted keys give presentation order.
type Workflow map[string]Task

// Count returns the number of tasks of the given type.
func (w Workflow) Count(taskType TaskType) int {
	n := 0
	for _, task := range w {
		if task.Type == taskType {
			n++
		}
	}
	return n
}
