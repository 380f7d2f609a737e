package reconcile

import (
	"testing"

	"agent-service/pkg/elevenlabs"

	"github.com/stretchr/testify/assert"
)

func TestPlanOrphanDeletesFiltersReferenced(t *testing.T) {
	remote := []elevenlabs.AgentSummary{
		{AgentID: "rv_live"},
		{AgentID: "rv_orphan_a"},
		{AgentID: "rv_orphan_b"},
	}
	referenced := map[string]bool{"rv_live": true}

	orphans := planOrphanDeletes(remote, referenced, 0)

	assert.Equal(t, []string{"rv_orphan_a", "rv_orphan_b"}, orphans)
}

func TestPlanOrphanDeletesSkipsWhenCreatesInFlight(t *testing.T) {
	// A create in flight has already provisioned its remote agent but not
	// yet recorded the id locally, so the remote agent looks orphaned.
	remote := []elevenlabs.AgentSummary{
		{AgentID: "rv_just_created"},
	}

	orphans := planOrphanDeletes(remote, map[string]bool{}, 1)

	assert.Empty(t, orphans)
}

func TestPlanOrphanDeletesNothingRemote(t *testing.T) {
	orphans := planOrphanDeletes(nil, map[string]bool{"rv_live": true}, 0)

	assert.Empty(t, orphans)
}
