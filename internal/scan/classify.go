package scan

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"
)

// Kind identifies which classification rule matched a raw scan string.
type Kind string

const (
	KindStructuredPayload Kind = "structured_payload"
	KindNativeCode        Kind = "native_code"
	KindLocatorURL        Kind = "locator_url"
	KindRawUUID           Kind = "raw_uuid"
	KindUnrecognized      Kind = "unrecognized"
)

// Field names a tree lookup column.
type Field string

const (
	// FieldRecordID selects the tree's record identifier column.
	FieldRecordID Field = "id"
	// FieldCode selects the tree's printed native code column.
	FieldCode Field = "qr_code"
)

// NativeCodePrefix is the namespace stamped on printed Green Sprint codes.
const NativeCodePrefix = "GS-"

// locatorFragment marks share links that omit an explicit URL scheme.
const locatorFragment = "tree-details"

const (
	recordParam = "id"
	codeParam   = "qr"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Parsed is the outcome of classifying one raw scan string. PrimaryID and
// PrimaryField are set whenever Valid; RecordID and CodeID carry auxiliary
// identifiers when the input encoded more than one.
type Parsed struct {
	Kind         Kind
	PrimaryID    string
	PrimaryField Field
	RecordID     string
	CodeID       string
	// Payload retains the full decoded object for structured payloads.
	Payload map[string]any
}

// Valid reports whether the input matched any identifier format.
func (p Parsed) Valid() bool {
	return p.Kind != KindUnrecognized && p.Kind != ""
}

// Classify sorts raw scan text into an identifier kind. It is deterministic
// and performs no I/O. Rules apply in fixed priority order: structured
// payload, native code, locator URL, raw UUID. A payload that fails to decode
// falls through to the later rules; input matching nothing is Unrecognized.
func Classify(raw string) Parsed {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Parsed{Kind: KindUnrecognized}
	}

	if strings.HasPrefix(trimmed, "{") {
		if parsed, handled := classifyPayload(trimmed); handled {
			return parsed
		}
	}

	if strings.HasPrefix(trimmed, NativeCodePrefix) {
		return Parsed{
			Kind:         KindNativeCode,
			PrimaryID:    trimmed,
			PrimaryField: FieldCode,
		}
	}

	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, locatorFragment) {
		if parsed, handled := classifyLocator(trimmed); handled {
			return parsed
		}
	}

	if uuidPattern.MatchString(trimmed) {
		return Parsed{
			Kind:         KindRawUUID,
			PrimaryID:    trimmed,
			PrimaryField: FieldRecordID,
			RecordID:     trimmed,
		}
	}

	return Parsed{Kind: KindUnrecognized}
}

// classifyPayload decodes a JSON object and extracts the id / qr_code_id
// fields. The second return value reports whether the input was consumed:
// decode failures fall through to later rules, while a well-formed object
// with neither identifier is final and classifies as Unrecognized.
func classifyPayload(raw string) (Parsed, bool) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return Parsed{}, false
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		// Trailing content after the object; not a payload.
		return Parsed{}, false
	}

	recordID := payloadString(payload, "id")
	codeID := payloadString(payload, "qr_code_id")

	parsed := Parsed{
		Kind:     KindStructuredPayload,
		RecordID: recordID,
		CodeID:   codeID,
		Payload:  payload,
	}
	switch {
	case recordID != "":
		parsed.PrimaryID = recordID
		parsed.PrimaryField = FieldRecordID
	case codeID != "":
		parsed.PrimaryID = codeID
		parsed.PrimaryField = FieldCode
	default:
		return Parsed{Kind: KindUnrecognized}, true
	}
	return parsed, true
}

// classifyLocator parses share URLs of the form
// https://host/tree-details.html?id=<record>&qr=<code>. The code parameter
// wins as primary when both are present; with neither, the final path
// segment stands in.
func classifyLocator(raw string) (Parsed, bool) {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return Parsed{}, false
	}

	query := parsedURL.Query()
	recordID := strings.TrimSpace(query.Get(recordParam))
	codeID := strings.TrimSpace(query.Get(codeParam))

	parsed := Parsed{
		Kind:     KindLocatorURL,
		RecordID: recordID,
		CodeID:   codeID,
	}
	switch {
	case codeID != "":
		parsed.PrimaryID = codeID
		parsed.PrimaryField = FieldCode
	case recordID != "":
		parsed.PrimaryID = recordID
		parsed.PrimaryField = FieldRecordID
	default:
		segment := lastPathSegment(parsedURL)
		if segment == "" {
			return Parsed{}, false
		}
		parsed.PrimaryID = segment
		parsed.PrimaryField = FieldCode
	}
	return parsed, true
}

func payloadString(payload map[string]any, key string) string {
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func lastPathSegment(u *url.URL) string {
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return strings.TrimSpace(segments[len(segments)-1])
}
