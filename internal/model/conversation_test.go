package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptPreservesOrderAndShape(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	turns := []ConversationTurn{
		{ConversationID: 1, Seq: 1, Role: RoleUser, Content: "Hi", CreatedAt: t0},
		{ConversationID: 1, Seq: 2, Role: RoleAssistant, Content: "Hello!", CreatedAt: t0.Add(time.Second)},
		{ConversationID: 1, Seq: 3, Role: RoleUser, Content: "Any 2-bed units?", CreatedAt: t0.Add(2 * time.Second)},
	}

	entries := Transcript(turns)
	require.Len(t, entries, 3)

	assert.Equal(t, RoleUser, entries[0].Role)
	assert.Equal(t, "Hi", entries[0].Content)
	assert.Equal(t, t0, entries[0].Timestamp)
	assert.Equal(t, RoleAssistant, entries[1].Role)
	assert.Equal(t, "Any 2-bed units?", entries[2].Content)
}

func TestTranscriptEmpty(t *testing.T) {
	entries := Transcript(nil)
	require.NotNil(t, entries, "empty transcript serializes as [], not null")
	assert.Len(t, entries, 0)
}
