package bodycodec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResponseJSON(t *testing.T) {
	stored, typ := EncodeResponse([]byte("{\n  \"a\": 1\n}"), "application/json; charset=utf-8")
	assert.Equal(t, TypeJSON, typ)
	assert.Equal(t, `{"a":1}`, stored)
}

func TestEncodeResponseInvalidJSONFallsBackToBinary(t *testing.T) {
	raw := []byte("{not json")
	stored, typ := EncodeResponse(raw, "application/json")
	assert.Equal(t, TypeBinary, typ)

	got, err := Decode(stored, typ)
	require.NoError(t, err)
	assert.Equal(t, raw, got, "fallback must not lose data")
}

func TestEncodeResponseText(t *testing.T) {
	stored, typ := EncodeResponse([]byte("hello"), "text/plain")
	assert.Equal(t, TypeText, typ)
	assert.Equal(t, "hello", stored)

	stored, typ = EncodeResponse([]byte("<p>hi</p>"), "TEXT/HTML; charset=utf-8")
	assert.Equal(t, TypeHTML, typ)
	assert.Equal(t, "<p>hi</p>", stored)
}

func TestEncodeResponseBinaryRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0xFF, 0x00, 0x10},
		{0x00},
		[]byte("plain ascii through an opaque type"),
		{0xC3, 0x28, 0xA0, 0xA1}, // invalid UTF-8
	}
	for _, raw := range payloads {
		stored, typ := EncodeResponse(raw, "application/octet-stream")
		require.Equal(t, TypeBinary, typ)

		got, err := Decode(stored, typ)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}
}

func TestEncodeResponseEmptyBody(t *testing.T) {
	stored, typ := EncodeResponse(nil, "application/json")
	assert.Empty(t, stored)
	assert.Empty(t, typ)
}

func TestEncodeResponseMissingContentType(t *testing.T) {
	stored, typ := EncodeResponse([]byte{0x01, 0x02}, "")
	assert.Equal(t, TypeBinary, typ)

	got, err := Decode(stored, typ)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, got)
}

func TestJSONRoundTripStructural(t *testing.T) {
	in := map[string]any{"b": []any{1.0, "two"}, "a": map[string]any{"nested": true}}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	stored, typ := EncodeResponse(raw, "application/json")
	require.Equal(t, TypeJSON, typ)

	decoded, err := Decode(stored, typ)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(decoded, &out))
	assert.Equal(t, in, out)
}

func TestClassifyRequestJSONContentType(t *testing.T) {
	v := ClassifyRequest(json.RawMessage("{ \"a\" : 1 }"), "Application/JSON")
	assert.Equal(t, KindJSON, v.Kind)

	stored, typ := v.Stored()
	assert.Equal(t, TypeJSON, typ)
	assert.Equal(t, `{"a":1}`, stored)
	assert.Equal(t, []byte(`{"a":1}`), v.Outbound())
}

func TestClassifyRequestStringIsVerbatimText(t *testing.T) {
	// A string body with no JSON content type is stored as-is, not re-quoted.
	v := ClassifyRequest(json.RawMessage(`"plain payload"`), "application/octet-stream")
	assert.Equal(t, KindText, v.Kind)

	stored, typ := v.Stored()
	assert.Equal(t, TypeText, typ)
	assert.Equal(t, "plain payload", stored)
	assert.Equal(t, []byte("plain payload"), v.Outbound())
}

func TestClassifyRequestStructuredWithTextContentType(t *testing.T) {
	v := ClassifyRequest(json.RawMessage(`[1, 2, 3]`), "text/plain")
	stored, typ := v.Stored()
	assert.Equal(t, TypeText, typ)
	assert.Equal(t, "[1,2,3]", stored)
}

func TestClassifyRequestStructuredUnknownContentType(t *testing.T) {
	v := ClassifyRequest(json.RawMessage(`{"x":1}`), "")
	stored, typ := v.Stored()
	require.Equal(t, TypeBinary, typ)

	got, err := Decode(stored, typ)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":1}`), got)
	assert.Equal(t, []byte(`{"x":1}`), v.Outbound())
}

func TestClassifyRequestScalarDefaultsToBinary(t *testing.T) {
	v := ClassifyRequest(json.RawMessage(`42`), "")
	stored, typ := v.Stored()
	require.Equal(t, TypeBinary, typ)

	got, err := Decode(stored, typ)
	require.NoError(t, err)
	assert.Equal(t, []byte(`42`), got)
}

func TestDecodeRejectsCorruptBase64(t *testing.T) {
	_, err := Decode("not base64!!!", TypeBinary)
	assert.Error(t, err)
}
