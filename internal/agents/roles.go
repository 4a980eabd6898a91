// Package agents implements the multi-stage task pipeline: agent roles, task
// prompt construction, the stage state machine, sequential execution, and
// confidence extraction from the fact-check report.
package agents

import "askpilot/internal/core"

// Roles bundles the per-request agent configurations. Agents are stateless;
// a role is just a model binding handed to the execution engine per task.
type Roles struct {
	Researcher  core.RoleConfig
	Explainer   core.RoleConfig
	FactChecker core.RoleConfig
	Guard       core.RoleConfig
}

// DefaultRoles returns the production role bindings. The researcher is the
// only role with web access; the fact checker grades claims strictly against
// the evidence it is handed.
func DefaultRoles() Roles {
	return Roles{
		Researcher: core.RoleConfig{
			Name:            "researcher",
			Model:           "gemini-2.5-flash",
			Temperature:     0,
			MaxOutputTokens: 350,
			WebSearch:       true,
		},
		Explainer: core.RoleConfig{
			Name:            "explainer",
			Model:           "gemini-2.5-flash-lite",
			Temperature:     0.2,
			MaxOutputTokens: 350,
		},
		FactChecker: core.RoleConfig{
			Name:            "fact_checker",
			Model:           "gemini-2.5-flash",
			Temperature:     0,
			MaxOutputTokens: 250,
		},
		Guard: core.RoleConfig{
			Name:            "guard",
			Model:           "gemini-2.5-flash",
			Temperature:     0,
			MaxOutputTokens: 5,
		},
	}
}
