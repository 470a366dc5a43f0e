package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTaskJSON(t *testing.T) {
	w := Workflow{
		"00000_write": WriteTask("Cat", true),
		"00000_vote":  VoteTask(Claim{ID: "a", Page: "Cat"}, Claim{ID: "b", Page: "Dog"}),
	}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := `{"00000_vote":{"claim_left":"a","claim_right":"b","page_left":"Cat","page_right":"Dog","type":"verify"},` +
		`"00000_write":{"page":"Cat","type":"write","veracity":true}}`
	if string(data) != want {
		t.Errorf("Unexpected encoding:\n%s", data)
	}

	var back Workflow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff(w, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if back.Count(TaskWrite) != 1 || back.Count(TaskVerify) != 1 {
		t.Errorf("Unexpected counts in %v", back)
	}
}

func TestTaskJSON_UnknownType(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"type":"review"}`), &task); err == nil {
		t.Error("Expected error for unknown task type")
	}
	if _, err := json.Marshal(Task{Type: "review"}); err == nil {
		t.Error("Expected error encoding unknown task type")
	}
}

func TestLabelFor(t *testing.T) {
	if LabelFor(true) != LabelSupports || LabelFor(false) != LabelRefutes {
		t.Error("Unexpected label mapping")
	}
}
