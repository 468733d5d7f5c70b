package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	m, err := build(Message{
		From:    "scout@example.com",
		To:      []string{"founder@example.com"},
		Subject: "Reddit Problem & Sentiment Report",
		Text:    "plain body",
		HTML:    "<h1>Report</h1>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Reddit Problem & Sentiment Report")
	assert.Contains(t, raw, "scout@example.com")
	assert.Contains(t, raw, "founder@example.com")
	assert.Contains(t, raw, "plain body")
	assert.Contains(t, raw, "<h1>Report</h1>")
	assert.Contains(t, raw, "multipart/alternative")
}

func TestBuildMessageTextOnly(t *testing.T) {
	t.Parallel()

	m, err := build(Message{
		From:    "scout@example.com",
		To:      []string{"founder@example.com"},
		Subject: "Report",
		Text:    "plain body",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "multipart/alternative")
}

func TestBuildMessageInvalidAddresses(t *testing.T) {
	t.Parallel()

	_, err := build(Message{From: "not-an-address", To: []string{"x@example.com"}})
	require.Error(t, err)

	_, err = build(Message{From: "scout@example.com", To: []string{"also not valid"}})
	require.Error(t, err)
}
