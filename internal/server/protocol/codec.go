package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// NoBlock is the wire sentinel for "no control block supplied".
const NoBlock = "."

var (
	// ErrMalformedRequest: wrong field count after normalization.
	ErrMalformedRequest = errors.New("invalid params")
	// ErrEncoding: a field is not valid base64 or not valid UTF-8.
	ErrEncoding = errors.New("encoding error")
	// ErrPayloadDecode: content does not match the method's request shape.
	ErrPayloadDecode = errors.New("payload decode error")
)

// MethodName returns the first space-delimited field of a raw request line.
func MethodName(raw string) string {
	raw = strings.TrimRight(raw, "\r\n")
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		return raw[:i]
	}
	return raw
}

// ParseInput decodes a raw request line into its control block and its
// method-specific content T.
//
// A two-field request gets an implicit empty content field. A missing
// control block (".") and a present-but-unparsable control block both yield
// the zero ControlBlock: methods that need no auth must still dispatch, and
// the auth gate downstream rejects the empty token anyway. Content decoding
// is strict: bad base64/UTF-8 is ErrEncoding, bad structure is
// ErrPayloadDecode.
func ParseInput[T any](raw string) (ControlBlock, T, error) {
	var content T

	parts := strings.Split(strings.TrimRight(raw, "\r\n"), " ")

	// no content payload supplied
	if len(parts) == 2 {
		parts = append(parts, "")
	}

	if len(parts) != 3 {
		return ControlBlock{}, content, ErrMalformedRequest
	}

	var blockText string
	if parts[1] != NoBlock {
		decoded, err := decodeField(parts[1])
		if err != nil {
			return ControlBlock{}, content, err
		}
		blockText = decoded
	}

	payloadText, err := decodeField(parts[2])
	if err != nil {
		return ControlBlock{}, content, err
	}

	var block ControlBlock
	if blockText != "" {
		// lenient: a malformed control block must not fail the request
		if err := json.Unmarshal([]byte(blockText), &block); err != nil {
			block = ControlBlock{}
		}
	}

	if err := json.Unmarshal([]byte(payloadText), &content); err != nil {
		var zero T
		return block, zero, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
	}

	return block, content, nil
}

// decodeField base64-decodes a wire field and checks it is UTF-8 text.
// An empty field decodes to the empty string.
func decodeField(field string) (string, error) {
	if field == "" {
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(field)
	if err != nil {
		return "", fmt.Errorf("%w: b64 decode err: %v", ErrEncoding, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: field is not valid utf-8", ErrEncoding)
	}
	return string(decoded), nil
}

// EncodeRequest builds a request line: method, control block (or "."), and
// the JSON content, both base64-wrapped. Used by the client and by tests.
func EncodeRequest(method string, cb *ControlBlock, content any) ([]byte, error) {
	blockField := NoBlock
	if cb != nil {
		blockJSON, err := json.Marshal(cb)
		if err != nil {
			return nil, err
		}
		blockField = base64.StdEncoding.EncodeToString(blockJSON)
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	contentField := base64.StdEncoding.EncodeToString(contentJSON)

	return []byte(method + " " + blockField + " " + contentField + "\n"), nil
}

// EncodeResponse renders a Return as a response line.
func EncodeResponse(ret Return) []byte {
	blockField := NoBlock
	if ret.Control != nil {
		// ControlBlock marshalling cannot fail: two scalar fields
		blockJSON, _ := json.Marshal(ret.Control)
		blockField = base64.StdEncoding.EncodeToString(blockJSON)
	}

	payloadField := ""
	if ret.Payload != "" {
		payloadField = base64.StdEncoding.EncodeToString([]byte(ret.Payload))
	}

	return []byte(strconv.FormatBool(ret.Success) + " " + blockField + " " + payloadField + "\n")
}

// DecodeResponse parses a response line back into a Return. Used by the
// client side of the protocol.
func DecodeResponse(raw string) (Return, error) {
	parts := strings.Split(strings.TrimRight(raw, "\r\n"), " ")
	if len(parts) != 3 {
		return Return{}, ErrMalformedRequest
	}

	success, err := strconv.ParseBool(parts[0])
	if err != nil {
		return Return{}, fmt.Errorf("%w: bad success field: %v", ErrMalformedRequest, err)
	}

	ret := Return{Success: success}

	if parts[1] != NoBlock {
		blockText, err := decodeField(parts[1])
		if err != nil {
			return Return{}, err
		}
		var block ControlBlock
		if err := json.Unmarshal([]byte(blockText), &block); err != nil {
			return Return{}, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
		}
		ret.Control = &block
	}

	payload, err := decodeField(parts[2])
	if err != nil {
		return Return{}, err
	}
	ret.Payload = payload

	return ret, nil
}
