package service_test

import (
	"encoding/json"
	"testing"

	"boardctl/internal/service"
)

func TestID_UnmarshalNumberAndString(t *testing.T) {
	var got struct {
		A service.ID `json:"a"`
		B service.ID `json:"b"`
		C service.ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":17,"b":"x-1","c":null}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.A != "17" || got.B != "x-1" || got.C != "" {
		t.Errorf("unexpected ids: %+v", got)
	}
}

func TestID_MarshalKeepsNumbersNumeric(t *testing.T) {
	data, err := json.Marshal(map[string]service.ID{"n": "17", "s": "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"n":17,"s":"abc"}`
	if string(data) != expected {
		t.Errorf("expected %s, got %s", expected, data)
	}
}
