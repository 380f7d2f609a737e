package handler

import (
	"testing"

	"agent-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmbedIsDeterministic(t *testing.T) {
	widget := &model.Widget{
		ID:       3,
		AgentID:  7,
		Theme:    "dark",
		Position: "bottom-left",
		Greeting: "Welcome to Marina Towers!",
	}

	first, err := RenderEmbed(widget, "Ana", "Marina Towers", "https://cdn.example.com/widget.js")
	require.NoError(t, err)
	second, err := RenderEmbed(widget, "Ana", "Marina Towers", "https://cdn.example.com/widget.js")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same config must render byte-identical snippets")
	assert.Contains(t, first, `data-widget-id="3"`)
	assert.Contains(t, first, `data-agent-id="7"`)
	assert.Contains(t, first, `data-agent-name="Ana"`)
	assert.Contains(t, first, `data-project-name="Marina Towers"`)
	assert.Contains(t, first, `data-theme="dark"`)
	assert.Contains(t, first, `data-position="bottom-left"`)
	assert.Contains(t, first, `<script src="https://cdn.example.com/widget.js" async></script>`)
}

func TestRenderEmbedEscapesNames(t *testing.T) {
	widget := &model.Widget{ID: 1, AgentID: 2, Theme: "light", Position: "bottom-right"}

	out, err := RenderEmbed(widget, `Ana"><script>alert(1)</script>`, "", "https://cdn.example.com/widget.js")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>alert(1)</script>")
}
