package ipc

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Header is one entry of an inbound header collection. Values arrive as
// arbitrary renderer-supplied data; anything that is not representable as
// text normalizes to an empty string.
type Header struct {
	Name  string
	Value any
}

// Request is the inbound boundary shape delivered by the embedding renderer:
// method, target URI, protocol version, header collection, and body.
type Request struct {
	Method  string
	URI     string
	Proto   string
	Headers []Header
	Body    string
}

// NormalizedRequest is the canonical, serializable form of a Request. It is
// immutable once constructed and owned by the dispatcher for the duration of
// one dispatch call.
type NormalizedRequest struct {
	Method  string            `json:"method"`
	URI     string            `json:"uri"`
	Version string            `json:"version"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Normalize converts an inbound request into its canonical record. Header
// names are case-normalized and the last occurrence of a duplicate name
// wins. Normalization is total: it has no failure mode over the accepted
// input shape and does not retain the original request.
func Normalize(req Request) NormalizedRequest {
	headers := make(map[string]string, len(req.Headers))
	for _, header := range req.Headers {
		headers[strings.ToLower(header.Name)] = headerText(header.Value)
	}

	return NormalizedRequest{
		Method:  req.Method,
		URI:     req.URI,
		Version: req.Proto,
		Headers: headers,
		Body:    req.Body,
	}
}

// Serialize renders the record as pretty-printed JSON, the form handed to
// the scripting callback.
func (n NormalizedRequest) Serialize() (string, error) {
	raw, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func headerText(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case []byte:
		if utf8.Valid(typed) {
			return string(typed)
		}
		return ""
	default:
		return ""
	}
}
