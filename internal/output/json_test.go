// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// statusPayload mirrors the shape the status command emits, enough to
// exercise nested structs, slices, and omitted fields.
type statusPayload struct {
	ProjectID         string              `json:"project_id"`
	ContainerMigrated bool                `json:"container_migrated"`
	Pending           []collectionPayload `json:"pending,omitempty"`
	Timestamp         time.Time           `json:"timestamp"`
}

type collectionPayload struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

func TestJSONTo(t *testing.T) {
	var buf bytes.Buffer

	payload := statusPayload{
		ProjectID:         "d41d8cd98f00b204",
		ContainerMigrated: true,
		Pending: []collectionPayload{
			{Name: "code_d41d8cd98f00b204", SizeBytes: 1000},
		},
		Timestamp: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}

	if err := JSONTo(&buf, payload); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}
	out := buf.String()

	// Pretty-printed with 2-space indentation.
	if !strings.Contains(out, "  \"project_id\"") {
		t.Errorf("expected 2-space indentation, got: %s", out)
	}
	if !strings.Contains(out, `"project_id": "d41d8cd98f00b204"`) {
		t.Errorf("missing project_id field, got: %s", out)
	}
	if !strings.Contains(out, `"size_bytes": 1000`) {
		t.Errorf("missing nested collection size, got: %s", out)
	}

	// json.Encoder terminates the document with a newline.
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("expected trailing newline, got: %q", out)
	}

	// The output must round-trip.
	var decoded statusPayload
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output does not parse back: %v", err)
	}
	if decoded.ProjectID != payload.ProjectID {
		t.Errorf("round-trip project_id = %q, want %q", decoded.ProjectID, payload.ProjectID)
	}
}

func TestJSONTo_OmitsEmptyPending(t *testing.T) {
	var buf bytes.Buffer

	if err := JSONTo(&buf, statusPayload{ProjectID: "abc"}); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}
	if strings.Contains(buf.String(), "pending") {
		t.Errorf("empty pending list should be omitted, got: %s", buf.String())
	}
}

func TestJSONTo_UnencodableValue(t *testing.T) {
	var buf bytes.Buffer

	err := JSONTo(&buf, map[string]any{"ch": make(chan int)})
	if err == nil {
		t.Fatal("expected an error for an unencodable value")
	}
	if !strings.Contains(err.Error(), "encode JSON output") {
		t.Errorf("error should carry encoding context, got: %v", err)
	}
}
