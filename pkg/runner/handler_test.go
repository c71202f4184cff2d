package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_InputSkipsBlankAndInvalid(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "12")

	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("\n   \nthis is far too long\nhi\x07 there\n"), out, WithPrompt(""))

	got, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
	assert.Contains(t, out.String(), "Error: input exceeds maximum allowed size")

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	h := NewTextHandler(r, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out)

	require.NoError(t, h.Present(context.Background(), &domain.Reply{Answer: "  hello \n"}))
	require.NoError(t, h.Present(context.Background(), &domain.Reply{}))
	require.NoError(t, h.SystemOutput(context.Background(), "note"))

	assert.Equal(t, "hello\n[System] note\n", out.String())
}

func TestJSONHandler_Input(t *testing.T) {
	in := strings.NewReader(`{"text":"order pizza"}` + "\n" + `"menu"` + "\n" + "plain text\r\n" + "last")
	h := NewJSONHandler(in, io.Discard)

	for _, want := range []string{"order pizza", "menu", "plain text", "last"} {
		got, err := h.Input(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_SystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader(""), out)

	require.NoError(t, h.SystemOutput(context.Background(), "resumed"))
	assert.JSONEq(t, `{"type":"system","text":"resumed"}`, out.String())
}

func TestTextHandler_WithSanitizer(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("toolong\nok\n"), out,
		WithPrompt(""),
		WithSanitizer(LimitSanitizer(3)),
	)

	text, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Contains(t, out.String(), "exceeds")
}

func TestNewTextHandler_KeepsNonTerminalReader(t *testing.T) {
	in := strings.NewReader("hello\n")
	h := NewTextHandler(in, io.Discard, WithPrompt(""))

	text, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestJSONHandler_Sanitize(t *testing.T) {
	h := NewJSONHandler(strings.NewReader(`{"text":"order pizza"}`+"\n"), io.Discard)
	h.Sanitize = LimitSanitizer(4)

	_, err := h.Input(context.Background())
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
