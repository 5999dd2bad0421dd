// Package bodycodec classifies request and response payloads by their declared
// content type and transcodes them into a storage-safe text form. JSON bodies
// are re-serialized compactly, text bodies are kept verbatim, and anything
// opaque is base64-encoded so binary data survives text columns and JSON
// transport intact.
package bodycodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
)

// BodyType tags how a stored body field was encoded.
type BodyType string

const (
	TypeJSON   BodyType = "json"
	TypeText   BodyType = "text"
	TypeHTML   BodyType = "html"
	TypeBinary BodyType = "binary"
)

// Kind discriminates a decoded request body value.
type Kind int

const (
	KindJSON Kind = iota
	KindText
	KindBinary
)

// Value is a caller-supplied body after its shape has been decided once at
// this boundary. Exactly one of the payload fields is meaningful, per Kind.
type Value struct {
	Kind  Kind
	JSON  json.RawMessage
	Text  string
	Bytes []byte
}

// EncodeResponse classifies raw response bytes against the origin's declared
// content-type header and returns the stored text plus its tag.
//
// Precedence: a JSON content type wins, then text/* (with an html refinement),
// then everything else is treated as opaque bytes. A body that claims JSON but
// does not parse falls back to the binary encoding rather than being dropped.
func EncodeResponse(raw []byte, contentType string) (string, BodyType) {
	if len(raw) == 0 {
		return "", ""
	}
	ct := strings.ToLower(contentType)

	if strings.Contains(ct, "application/json") {
		if json.Valid(raw) {
			return string(pretty.Ugly(raw)), TypeJSON
		}
		return base64.StdEncoding.EncodeToString(raw), TypeBinary
	}
	if strings.HasPrefix(ct, "text/") {
		if strings.Contains(ct, "html") {
			return string(raw), TypeHTML
		}
		return string(raw), TypeText
	}
	return base64.StdEncoding.EncodeToString(raw), TypeBinary
}

// ClassifyRequest decides the shape of a caller-supplied body against the
// caller-declared content-type request header. The body arrives as decoded
// JSON: a JSON content type keeps it as JSON; a plain string is text; a
// structured value is stringified first and then classified; remaining scalars
// are opaque.
func ClassifyRequest(body json.RawMessage, contentType string) Value {
	ct := strings.ToLower(contentType)

	if strings.Contains(ct, "application/json") {
		return Value{Kind: KindJSON, JSON: pretty.Ugly(body)}
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return Value{Kind: KindText, Text: s}
	}

	js := pretty.Ugly(body)
	if structured(js) {
		if strings.HasPrefix(ct, "text/") {
			return Value{Kind: KindText, Text: string(js)}
		}
		return Value{Kind: KindBinary, Bytes: js}
	}
	return Value{Kind: KindBinary, Bytes: js}
}

// Stored returns the storage text and tag for a classified request body.
func (v Value) Stored() (string, BodyType) {
	switch v.Kind {
	case KindJSON:
		return string(v.JSON), TypeJSON
	case KindText:
		return v.Text, TypeText
	default:
		return base64.StdEncoding.EncodeToString(v.Bytes), TypeBinary
	}
}

// Outbound returns the bytes forwarded to the origin. Text bodies go out
// verbatim rather than re-quoted, so the wire form matches the caller's
// declared content type.
func (v Value) Outbound() []byte {
	switch v.Kind {
	case KindJSON:
		return v.JSON
	case KindText:
		return []byte(v.Text)
	default:
		return v.Bytes
	}
}

// Decode reverses the stored encoding back into displayable or forwardable
// bytes. For json/text/html the stored text is the content; binary is
// base64-decoded back to the exact original bytes.
func Decode(stored string, typ BodyType) ([]byte, error) {
	if typ == TypeBinary {
		b, err := base64.StdEncoding.DecodeString(stored)
		if err != nil {
			return nil, fmt.Errorf("decoding binary body: %w", err)
		}
		return b, nil
	}
	return []byte(stored), nil
}

// structured reports whether compacted JSON is an object or array.
func structured(js []byte) bool {
	for _, c := range js {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c == '{' || c == '['
		}
	}
	return false
}
