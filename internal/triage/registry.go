package triage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// agentState pairs an agent record with its own mutex. Reservation and
// release on one agent never contend with operations on another, and lock
// acquisition is always single-agent, so no ordering cycles can form.
type agentState struct {
	mu    sync.Mutex
	agent domain.Agent
}

// AgentRegistry tracks responder capacity and specialty state. It is the
// single mutation path for an agent's current load: Reserve and Release are
// atomic per agent, keeping 0 <= current_load <= max_capacity at all times.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]*agentState
}

// NewAgentRegistry creates an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*agentState)}
}

// Register adds an agent. Fails with DuplicateAgent if the id is present and
// with a validation error on malformed capacity or rating.
func (r *AgentRegistry) Register(agent domain.Agent) error {
	if strings.TrimSpace(agent.ID) == "" {
		return apperrors.NewValidationError("agent id required", nil)
	}
	if agent.MaxCapacity <= 0 {
		return apperrors.NewValidationError("agent max_capacity must be positive",
			map[string]any{"agent_id": agent.ID})
	}
	if agent.CurrentLoad < 0 || agent.CurrentLoad > agent.MaxCapacity {
		return apperrors.NewValidationError("agent current_load must lie within [0, max_capacity]",
			map[string]any{"agent_id": agent.ID})
	}
	if agent.Satisfaction < 0 || agent.Satisfaction > 5 {
		return apperrors.NewValidationError("agent satisfaction must lie within [0, 5]",
			map[string]any{"agent_id": agent.ID})
	}
	if len(agent.Specialties) == 0 {
		return apperrors.NewValidationError("agent requires at least one specialty",
			map[string]any{"agent_id": agent.ID})
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[agent.ID]; exists {
		return apperrors.NewDuplicateAgent(agent.ID)
	}
	r.agents[agent.ID] = &agentState{agent: agent}
	return nil
}

// Get returns a copy of the agent record.
func (r *AgentRegistry) Get(agentID string) (domain.Agent, error) {
	state, err := r.state(agentID)
	if err != nil {
		return domain.Agent{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.agent, nil
}

// Candidates returns agents whose specialty set covers the category and who
// have free capacity, ordered best-fit first: ascending load-to-capacity
// ratio, then descending satisfaction rating, then id for determinism. The
// returned records are snapshots; a concurrent reservation may invalidate
// them, which Reserve re-validates.
func (r *AgentRegistry) Candidates(category string) []domain.Agent {
	r.mu.RLock()
	states := make([]*agentState, 0, len(r.agents))
	for _, s := range r.agents {
		states = append(states, s)
	}
	r.mu.RUnlock()

	candidates := make([]domain.Agent, 0, len(states))
	for _, s := range states {
		s.mu.Lock()
		agent := s.agent
		s.mu.Unlock()
		if agent.HasSpecialty(category) && agent.HasCapacity() {
			candidates = append(candidates, agent)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := candidates[i].LoadRatio(), candidates[j].LoadRatio()
		if ri != rj {
			return ri < rj
		}
		if candidates[i].Satisfaction != candidates[j].Satisfaction {
			return candidates[i].Satisfaction > candidates[j].Satisfaction
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}

// Reserve atomically claims one unit of the agent's capacity. It re-checks
// capacity under the agent's lock, so concurrent reservations on the same
// agent can never push load past max_capacity. Fails with CapacityExceeded
// when no room remains and UnknownAgent when the id is not registered.
func (r *AgentRegistry) Reserve(agentID string) error {
	state, err := r.state(agentID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.agent.HasCapacity() {
		return apperrors.NewCapacityExceeded(agentID)
	}
	state.agent.CurrentLoad++
	return nil
}

// Release returns one unit of capacity. Fails with InvalidRelease when the
// load is already zero, signaling an upstream bug instead of corrupting state.
func (r *AgentRegistry) Release(agentID string) error {
	state, err := r.state(agentID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.agent.CurrentLoad == 0 {
		return apperrors.NewInvalidRelease(agentID)
	}
	state.agent.CurrentLoad--
	return nil
}

// Snapshot returns copies of every registered agent, ordered by id. Used by
// the dashboard utilization surface.
func (r *AgentRegistry) Snapshot() []domain.Agent {
	r.mu.RLock()
	states := make([]*agentState, 0, len(r.agents))
	for _, s := range r.agents {
		states = append(states, s)
	}
	r.mu.RUnlock()

	agents := make([]domain.Agent, 0, len(states))
	for _, s := range states {
		s.mu.Lock()
		agents = append(agents, s.agent)
		s.mu.Unlock()
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents
}

func (r *AgentRegistry) state(agentID string) (*agentState, error) {
	r.mu.RLock()
	state, ok := r.agents[agentID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewUnknownAgent(agentID)
	}
	return state, nil
}
