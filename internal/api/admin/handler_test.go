package admin

import (
	"encoding/json"
	"testing"
)

func TestToSettingsUpdate(t *testing.T) {
	var body map[string]json.RawMessage
	raw := `{"defaultTopK":3,"maxTopK":2.5,"enableLogging":null,"ragSystemPrompt":"   ","unknown":1}`
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	upd := toSettingsUpdate(body)

	if upd.DefaultTopK == nil || *upd.DefaultTopK != 3 {
		t.Errorf("DefaultTopK = %v, want 3", upd.DefaultTopK)
	}
	if upd.MaxTopK != nil {
		t.Errorf("non-integral maxTopK should be ignored, got %d", *upd.MaxTopK)
	}
	if upd.EnableLogging != nil {
		t.Errorf("null enableLogging should be ignored")
	}
	if upd.RagSystemPrompt != nil {
		t.Errorf("blank prompt should be ignored")
	}
}

func TestToSettingsUpdate_NegativeKept(t *testing.T) {
	body := map[string]json.RawMessage{
		"maxTopK":       json.RawMessage(`-1`),
		"enableLogging": json.RawMessage(`false`),
	}

	upd := toSettingsUpdate(body)

	// negative values reach the registry, which rejects them
	if upd.MaxTopK == nil || *upd.MaxTopK != -1 {
		t.Errorf("MaxTopK = %v, want -1", upd.MaxTopK)
	}
	if upd.EnableLogging == nil || *upd.EnableLogging {
		t.Errorf("EnableLogging = %v, want false", upd.EnableLogging)
	}
}
