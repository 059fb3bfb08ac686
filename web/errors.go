package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/NomadCrew/itinerary-builder/types"
)

// FallbackErrorMessage is shown when a failure carries no usable message.
const FallbackErrorMessage = "An unexpected error occurred. Please try again."

// RateLimitedMessage is shown when the page limiter rejects a request.
const RateLimitedMessage = "Too many requests. Please try again later."

// ExtractErrorMessage turns a failed submission into the text shown to the
// user. A non-empty "error" field wins, then the flattened "details" messages,
// then FallbackErrorMessage.
func ExtractErrorMessage(err error) string {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return FallbackErrorMessage
	}

	var body struct {
		Error   types.Value     `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if json.Unmarshal(respErr.Body, &body) != nil {
		return FallbackErrorMessage
	}

	if isScalar(body.Error) && body.Error.IsTruthy() {
		return body.Error.String()
	}

	if msg := flattenDetails(body.Details); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}

func isScalar(v types.Value) bool {
	raw := bytes.TrimSpace(v)
	return len(raw) > 0 && raw[0] != '{' && raw[0] != '['
}

// flattenDetails joins the messages of a details object in the order the
// server sent its keys. Each value is either a list of messages or a single
// message. A details array is read the same way, element by element.
func flattenDetails(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var values []json.RawMessage
		if err := json.Unmarshal(raw, &values); err != nil {
			return ""
		}
		var messages []string
		for _, value := range values {
			messages = append(messages, detailMessages(value)...)
		}
		return strings.Join(messages, ", ")
	}
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return ""
	}

	var messages []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return ""
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return ""
		}
		messages = append(messages, detailMessages(value)...)
	}
	return strings.Join(messages, ", ")
}

func detailMessages(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []types.Value
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.String())
		}
		return out
	}
	return []string{types.Value(trimmed).String()}
}
