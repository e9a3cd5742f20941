package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSetup_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Info("listing created", "listing_id", "l-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "listing created" {
		t.Errorf("msg = %v, want %q", entry["msg"], "listing created")
	}
	if entry["listing_id"] != "l-1" {
		t.Errorf("listing_id = %v, want %q", entry["listing_id"], "l-1")
	}
}

// Debug entries are below the configured level and must be suppressed.
func TestSetup_InfoLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Debug("noise")
	if buf.Len() != 0 {
		t.Errorf("debug log was written: %q", buf.String())
	}
}
