package scan_test

import (
	"testing"

	"greensprint/internal/scan"
)

func TestClassifyStructuredPayload(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantPrimary string
		wantField   scan.Field
		wantRecord  string
		wantCode    string
	}{
		{
			name:        "id only",
			raw:         `{"id":"4f2c6f6a-1f5e-4a61-90cd-0a6f6f8e1d21"}`,
			wantPrimary: "4f2c6f6a-1f5e-4a61-90cd-0a6f6f8e1d21",
			wantField:   scan.FieldRecordID,
			wantRecord:  "4f2c6f6a-1f5e-4a61-90cd-0a6f6f8e1d21",
		},
		{
			name:        "code only",
			raw:         `{"qr_code_id":"GS-1712345678-abc123"}`,
			wantPrimary: "GS-1712345678-abc123",
			wantField:   scan.FieldCode,
			wantCode:    "GS-1712345678-abc123",
		},
		{
			name:        "both prefers id",
			raw:         `{"id":"abc123","qr_code_id":"GS-999"}`,
			wantPrimary: "abc123",
			wantField:   scan.FieldRecordID,
			wantRecord:  "abc123",
			wantCode:    "GS-999",
		},
		{
			name:        "numeric id stringified",
			raw:         `{"id":9007199254740993}`,
			wantPrimary: "9007199254740993",
			wantField:   scan.FieldRecordID,
			wantRecord:  "9007199254740993",
		},
		{
			name:        "surrounding whitespace",
			raw:         "  {\"id\":\"x1\"}\n",
			wantPrimary: "x1",
			wantField:   scan.FieldRecordID,
			wantRecord:  "x1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed := scan.Classify(tc.raw)
			if parsed.Kind != scan.KindStructuredPayload {
				t.Fatalf("kind = %s, want structured payload", parsed.Kind)
			}
			if !parsed.Valid() {
				t.Fatal("expected valid classification")
			}
			if parsed.PrimaryID != tc.wantPrimary || parsed.PrimaryField != tc.wantField {
				t.Fatalf("primary = (%s,%q), want (%s,%q)", parsed.PrimaryField, parsed.PrimaryID, tc.wantField, tc.wantPrimary)
			}
			if parsed.RecordID != tc.wantRecord || parsed.CodeID != tc.wantCode {
				t.Fatalf("auxiliary = (%q,%q), want (%q,%q)", parsed.RecordID, parsed.CodeID, tc.wantRecord, tc.wantCode)
			}
			if parsed.Payload == nil {
				t.Fatal("expected decoded payload retained")
			}
		})
	}
}

func TestClassifyPayloadWithoutIdentifiersIsUnrecognized(t *testing.T) {
	parsed := scan.Classify(`{"species":"oak","note":"no ids here"}`)
	if parsed.Kind != scan.KindUnrecognized || parsed.Valid() {
		t.Fatalf("expected unrecognized, got %+v", parsed)
	}
}

func TestClassifyMalformedPayloadFallsThrough(t *testing.T) {
	// Broken JSON that still carries the native prefix after trimming fails
	// rule 1 and must not be classified as a payload.
	parsed := scan.Classify(`{"id": broken`)
	if parsed.Kind != scan.KindUnrecognized {
		t.Fatalf("expected fall-through to unrecognized, got %s", parsed.Kind)
	}
}

func TestClassifyNativeCode(t *testing.T) {
	raw := "GS-1712345678-k9f3q"
	parsed := scan.Classify(raw)
	if parsed.Kind != scan.KindNativeCode {
		t.Fatalf("kind = %s, want native code", parsed.Kind)
	}
	if parsed.PrimaryID != raw || parsed.PrimaryField != scan.FieldCode {
		t.Fatalf("primary = (%s,%q), want code field with raw input", parsed.PrimaryField, parsed.PrimaryID)
	}
}

func TestClassifyLocatorURL(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantPrimary string
		wantField   scan.Field
		wantRecord  string
		wantCode    string
	}{
		{
			name:        "both params prefer code",
			raw:         "https://app.example/tree-details.html?id=abc123&qr=GS-999",
			wantPrimary: "GS-999",
			wantField:   scan.FieldCode,
			wantRecord:  "abc123",
			wantCode:    "GS-999",
		},
		{
			name:        "record param only",
			raw:         "https://app.example/tree-details.html?id=abc123",
			wantPrimary: "abc123",
			wantField:   scan.FieldRecordID,
			wantRecord:  "abc123",
		},
		{
			name:        "schemeless with fragment",
			raw:         "app.example/tree-details?qr=GS-55",
			wantPrimary: "GS-55",
			wantField:   scan.FieldCode,
			wantCode:    "GS-55",
		},
		{
			name:        "no params uses final path segment",
			raw:         "https://app.example/trees/GS-1712345678-k9f3q",
			wantPrimary: "GS-1712345678-k9f3q",
			wantField:   scan.FieldCode,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed := scan.Classify(tc.raw)
			if parsed.Kind != scan.KindLocatorURL {
				t.Fatalf("kind = %s, want locator url", parsed.Kind)
			}
			if parsed.PrimaryID != tc.wantPrimary || parsed.PrimaryField != tc.wantField {
				t.Fatalf("primary = (%s,%q), want (%s,%q)", parsed.PrimaryField, parsed.PrimaryID, tc.wantField, tc.wantPrimary)
			}
			if parsed.RecordID != tc.wantRecord || parsed.CodeID != tc.wantCode {
				t.Fatalf("auxiliary = (%q,%q), want (%q,%q)", parsed.RecordID, parsed.CodeID, tc.wantRecord, tc.wantCode)
			}
		})
	}
}

func TestClassifyRawUUID(t *testing.T) {
	for _, raw := range []string{
		"4f2c6f6a-1f5e-4a61-90cd-0a6f6f8e1d21",
		"4F2C6F6A-1F5E-4A61-90CD-0A6F6F8E1D21",
	} {
		parsed := scan.Classify(raw)
		if parsed.Kind != scan.KindRawUUID {
			t.Fatalf("%q: kind = %s, want raw uuid", raw, parsed.Kind)
		}
		if parsed.PrimaryID != raw {
			t.Fatalf("%q: primary must keep input casing, got %q", raw, parsed.PrimaryID)
		}
		if parsed.RecordID != raw || parsed.PrimaryField != scan.FieldRecordID {
			t.Fatalf("%q: expected record auxiliary, got %+v", raw, parsed)
		}
	}
}

func TestClassifyUnrecognized(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not-a-real-code",
		"4f2c6f6a-1f5e-4a61-90cd",
		"SG-123-abc",
	} {
		parsed := scan.Classify(raw)
		if parsed.Kind != scan.KindUnrecognized || parsed.Valid() {
			t.Fatalf("%q: expected unrecognized, got %+v", raw, parsed)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A payload carrying a native-looking code is still a payload: rule
	// order is fixed and the first match wins.
	parsed := scan.Classify(`{"qr_code_id":"GS-77"}`)
	if parsed.Kind != scan.KindStructuredPayload {
		t.Fatalf("kind = %s, want structured payload", parsed.Kind)
	}

	// A native code that looks like it contains a URL fragment is still a
	// native code.
	parsed = scan.Classify("GS-1-tree-details")
	if parsed.Kind != scan.KindNativeCode {
		t.Fatalf("kind = %s, want native code", parsed.Kind)
	}
}
