// Package cursor encodes and decodes opaque connection cursors.
// Cursors are base64-encoded JSON payloads carrying the node type name and
// the absolute offset of the row in the full, ordered result set. Decoding a
// cursor recovers that offset so a subsequent request can resume at the same
// position.
package cursor

import (
	"encoding/base64"
	"encoding/json"

	"graphql-pager/internal/pagerr"
)

type payloadV1 struct {
	Version  int    `json:"v"`
	TypeName string `json:"t"`
	Offset   int    `json:"o"`
}

// Encode builds an opaque cursor for the row at the given absolute offset.
// Offsets are zero-based: the first row of the full result set is offset 0.
func Encode(typeName string, offset int) string {
	payload := payloadV1{
		Version:  1,
		TypeName: typeName,
		Offset:   offset,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Decode parses an opaque cursor back into its type name and absolute offset.
// Malformed cursors fail with a ValidationError before any query executes.
func Decode(raw string) (typeName string, offset int, err error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", 0, pagerr.ValidationWrap(err, "invalid cursor")
	}
	var payload payloadV1
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", 0, pagerr.Validationf("invalid cursor format: expected offset v1 cursor")
	}
	if payload.Version != 1 {
		return "", 0, pagerr.Validationf("invalid cursor format: expected offset v1 cursor")
	}
	if payload.TypeName == "" {
		return "", 0, pagerr.Validationf("invalid cursor: missing type name")
	}
	if payload.Offset < 0 {
		return "", 0, pagerr.Validationf("invalid cursor: negative offset")
	}
	return payload.TypeName, payload.Offset, nil
}

// Validate confirms the cursor was issued for the expected node type.
func Validate(expectedType, actualType string) error {
	if actualType != expectedType {
		return pagerr.Validationf("cursor type mismatch: expected %s, got %s", expectedType, actualType)
	}
	return nil
}
