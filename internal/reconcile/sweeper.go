package reconcile

import (
	"time"

	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/pkg/elevenlabs"
	"agent-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper reconciles the provider account against the local agent records.
// It deletes remote agents no local record references and purges local rows
// stranded mid-provisioning. It never deletes a remote agent that a live
// local record points at: the provider account may be shared, so "delete
// everything remote" is not a safe administrative operation.
type Sweeper struct {
	provider elevenlabs.API
	log      *zap.Logger

	// Local rows younger than this are skipped; they may belong to a
	// create request still in flight.
	GracePeriod time.Duration
}

// ItemResult reports the outcome of one sweep action
type ItemResult struct {
	RemoteID string `json:"remote_id,omitempty"`
	LocalID  uint   `json:"local_id,omitempty"`
	Action   string `json:"action"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Sweep actions. A locally deleted agent whose remote deletion failed needs
// no dedicated retry action: its soft-deleted row no longer counts as a
// reference, so the orphan pass picks the remote agent up.
const (
	ActionDeleteOrphanRemote = "delete_orphan_remote"
	ActionPurgeStalePending  = "purge_stale_pending"
)

// NewSweeper creates a reconciliation sweeper
func NewSweeper(provider elevenlabs.API, log *zap.Logger) *Sweeper {
	return &Sweeper{
		provider:    provider,
		log:         log,
		GracePeriod: 15 * time.Minute,
	}
}

// planOrphanDeletes selects the remote agents no local record references.
// With any create still inside its grace period the whole remote pass is
// skipped: the new remote agent exists before the local row records its id,
// so deleting apparent orphans during that window would tear down an agent
// that is about to be referenced. The stale-pending purge is unaffected.
func planOrphanDeletes(remote []elevenlabs.AgentSummary, referenced map[string]bool, inflight int64) []string {
	if inflight > 0 {
		return nil
	}

	var orphans []string
	for _, agent := range remote {
		if !referenced[agent.AgentID] {
			orphans = append(orphans, agent.AgentID)
		}
	}
	return orphans
}

// Run performs one full reconciliation pass and returns per-item results
func (s *Sweeper) Run() ([]ItemResult, error) {
	db := database.GetDB()
	results := []ItemResult{}

	remoteAgents, err := s.provider.ListAgents()
	if err != nil {
		s.log.Error("Sweep failed to list remote agents", zap.Error(err))
		return nil, err
	}

	// Remote ids referenced by any live local record are off limits.
	var referencedIDs []string
	if result := db.Model(&model.Agent{}).
		Where("eleven_labs_agent_id <> ''").
		Pluck("eleven_labs_agent_id", &referencedIDs); result.Error != nil {
		return nil, result.Error
	}

	referenced := make(map[string]bool, len(referencedIDs))
	for _, id := range referencedIDs {
		referenced[id] = true
	}

	// A create still in flight has a local row with no remote id yet, so its
	// freshly created remote agent would look orphaned here.
	var inflight int64
	if result := db.Model(&model.Agent{}).
		Where("provision_state = ? AND created_at >= ?",
			model.ProvisionStatePendingRemote, time.Now().Add(-s.GracePeriod)).
		Count(&inflight); result.Error != nil {
		return nil, result.Error
	}

	orphans := planOrphanDeletes(remoteAgents, referenced, inflight)
	if inflight > 0 {
		s.log.Info("Sweep skipping remote deletions, agent creates in flight",
			zap.Int64("in_flight", inflight))
	}

	for _, remoteID := range orphans {
		item := ItemResult{RemoteID: remoteID, Action: ActionDeleteOrphanRemote}
		if err := s.provider.DeleteAgent(remoteID); err != nil {
			s.log.Warn("Sweep failed to delete orphaned remote agent",
				zap.String("remote_agent_id", remoteID),
				zap.Error(err))
			prometheus.AgentProvisionErrorCounter.WithLabelValues("sweep").Inc()
			item.Error = err.Error()
		} else {
			item.Success = true
			prometheus.SweepDeletedCounter.Inc()
			s.log.Info("Sweep deleted orphaned remote agent",
				zap.String("remote_agent_id", remoteID))
		}
		results = append(results, item)
	}

	results = append(results, s.purgeStalePending(db)...)

	return results, nil
}

// purgeStalePending removes local rows that never made it to provisioned.
// A pending_remote row with no remote id past the grace period means the
// create request died between the local insert and the remote call, or its
// compensating delete failed; either way there is nothing remote to keep it
// for.
func (s *Sweeper) purgeStalePending(db *gorm.DB) []ItemResult {
	var stale []model.Agent
	cutoff := time.Now().Add(-s.GracePeriod)
	if result := db.Where("provision_state = ? AND eleven_labs_agent_id = '' AND created_at < ?",
		model.ProvisionStatePendingRemote, cutoff).Find(&stale); result.Error != nil {
		s.log.Error("Sweep failed to list stale pending agents", zap.Error(result.Error))
		return nil
	}

	results := make([]ItemResult, 0, len(stale))
	for _, agent := range stale {
		item := ItemResult{LocalID: agent.ID, Action: ActionPurgeStalePending}
		if result := db.Delete(&model.Agent{}, agent.ID); result.Error != nil {
			item.Error = result.Error.Error()
		} else {
			item.Success = true
			s.log.Info("Sweep purged stale pending agent", zap.Uint("agent_id", agent.ID))
		}
		results = append(results, item)
	}

	return results
}
