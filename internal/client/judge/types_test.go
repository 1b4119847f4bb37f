package judge

import (
	"encoding/json"
	"testing"

	"ojcli/internal/client/verdict"
)

func TestSubmitReceiptAcceptsBothIDFields(t *testing.T) {
	var receipt SubmitReceipt
	if err := json.Unmarshal([]byte(`{"id":7,"status":"pending"}`), &receipt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if receipt.ID != 7 || receipt.Status != verdict.StatusPending {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	// Some deployments name the field submission_id instead.
	receipt = SubmitReceipt{}
	if err := json.Unmarshal([]byte(`{"submission_id":9,"status":"pending"}`), &receipt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if receipt.ID != 9 {
		t.Fatalf("submission_id not picked up: %+v", receipt)
	}

	// When both appear, id wins.
	receipt = SubmitReceipt{}
	if err := json.Unmarshal([]byte(`{"id":3,"submission_id":9,"status":"pending"}`), &receipt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if receipt.ID != 3 {
		t.Fatalf("id should win over submission_id: %+v", receipt)
	}
}

func TestSubmissionNullableMeasurements(t *testing.T) {
	var sub Submission
	raw := `{"id":1,"status":"running","time_taken":null,"memory_used":null,"submitted_at":"2026-01-02T15:04:05Z","evaluated_at":null}`
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if sub.TimeTakenMs != nil || sub.MemoryUsedMb != nil || sub.EvaluatedAt != nil {
		t.Fatalf("measurements must stay nil before a verdict: %+v", sub)
	}

	raw = `{"id":1,"status":"accepted","time_taken":120,"memory_used":14,"submitted_at":"2026-01-02T15:04:05Z","evaluated_at":"2026-01-02T15:04:10Z"}`
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if sub.TimeTakenMs == nil || *sub.TimeTakenMs != 120 {
		t.Fatalf("time_taken = %v, want 120", sub.TimeTakenMs)
	}
	if sub.MemoryUsedMb == nil || *sub.MemoryUsedMb != 14 {
		t.Fatalf("memory_used = %v, want 14", sub.MemoryUsedMb)
	}
	if sub.EvaluatedAt == nil {
		t.Fatalf("evaluated_at missing on terminal submission")
	}
}
