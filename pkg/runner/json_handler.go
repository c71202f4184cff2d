package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// JSONMessage is one line written by the JSONHandler.
type JSONMessage struct {
	Type  string        `json:"type"`
	Reply *domain.Reply `json:"reply,omitempty"`
	Text  string        `json:"text,omitempty"`
}

// JSONInput is the object form accepted on input lines.
type JSONInput struct {
	Text string `json:"text"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	// Sanitize cleans each input line; nil uses SanitizeInput.
	Sanitize SanitizeFunc
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Present emits {"type":"reply","reply":{...}}.
func (h *JSONHandler) Present(ctx context.Context, reply *domain.Reply) error {
	return h.Encoder.Encode(JSONMessage{Type: "reply", Reply: reply})
}

// Input reads one line: a JSON object {"text": ...}, a JSON string, or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	line, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")

	var text string
	var obj JSONInput
	switch {
	case strings.HasPrefix(strings.TrimSpace(line), "{") && json.Unmarshal([]byte(line), &obj) == nil:
		text = obj.Text
	case json.Unmarshal([]byte(line), &text) == nil:
	default:
		// Fallback: return raw text (e.g. if they just sent plain text)
		text = line
	}

	if h.Sanitize != nil {
		return h.Sanitize(text)
	}
	return SanitizeInput(text)
}

// SystemOutput emits {"type":"system","text":...}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(JSONMessage{Type: "system", Text: msg})
}
