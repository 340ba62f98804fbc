package schema

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateKeyIsUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2026, 8, 27, 23, 30, 0, 0, loc)

	if got := DateKey(local.UnixMilli()); got != "2026-08-28" {
		t.Errorf("expected UTC date key 2026-08-28, got %s", got)
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid email", Task{Kind: TaskKindEmail, Payload: json.RawMessage(`{}`)}, false},
		{"valid journal", Task{Kind: TaskKindJournal, Payload: json.RawMessage(`{}`)}, false},
		{"missing kind", Task{Payload: json.RawMessage(`{}`)}, true},
		{"unknown kind", Task{Kind: "fax", Payload: json.RawMessage(`{}`)}, true},
		{"missing payload", Task{Kind: TaskKindEmail}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMillisRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 45, 123000000, time.UTC)

	ms := Millis(now)
	back := FromMillis(ms)
	if !back.Equal(now) {
		t.Errorf("round trip lost precision: %v != %v", back, now)
	}
}

func TestTaskJSONOmitsSeq(t *testing.T) {
	task := Task{Kind: TaskKindEmail, Payload: json.RawMessage(`{}`), EnqueuedAt: 1, Seq: 42}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["Seq"]; ok {
		t.Error("Seq must not be persisted; it is assigned by the queue")
	}
	if raw["type"] != "email" {
		t.Errorf("expected wire field %q, got %v", "type", raw["type"])
	}
}
