package models

import (
	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
)

// Registry holds a filtered list of free models.
type Registry struct {
	free []openrouter.Model
}

// NewRegistry creates a registry, keeping only free models (Prompt == "0" and Completion == "0").
// Models with nil Pricing are excluded.
func NewRegistry(models []openrouter.Model) *Registry {
	var free []openrouter.Model
	for _, m := range models {
		if m.Pricing == nil {
			continue
		}
		if m.Pricing.Prompt == "0" && m.Pricing.Completion == "0" {
			free = append(free, m)
		}
	}
	return &Registry{free: free}
}

// FreeModels returns all free models in the registry.
func (r *Registry) FreeModels() []openrouter.Model {
	return r.free
}

// SelectModels returns n models from the free list, cycling if n > available.
func (r *Registry) SelectModels(n int) []openrouter.Model {
	if len(r.free) == 0 {
		return nil
	}
	selected := make([]openrouter.Model, n)
	for i := range n {
		selected[i] = r.free[i%len(r.free)]
	}
	return selected
}

// Roster assigns a model to every speaking role in a debate.
type Roster struct {
	Pro       string `json:"pro"`
	Con       string `json:"con"`
	Moderator string `json:"moderator"`
	Judge     string `json:"judge"`
}

// Fill returns r with empty roles taken from defaults.
func (r Roster) Fill(defaults Roster) Roster {
	if r.Pro == "" {
		r.Pro = defaults.Pro
	}
	if r.Con == "" {
		r.Con = defaults.Con
	}
	if r.Moderator == "" {
		r.Moderator = defaults.Moderator
	}
	if r.Judge == "" {
		r.Judge = defaults.Judge
	}
	return r
}

// Complete reports whether every role has a model.
func (r Roster) Complete() bool {
	return r.Pro != "" && r.Con != "" && r.Moderator != "" && r.Judge != ""
}

// Roster picks distinct free models for pro, con, moderator and judge,
// cycling when fewer than four are available. Explicit entries in
// overrides win.
func (r *Registry) Roster(overrides Roster) Roster {
	picked := r.SelectModels(4)
	if len(picked) == 0 {
		return overrides
	}
	return overrides.Fill(Roster{
		Pro:       picked[0].ID,
		Con:       picked[1].ID,
		Moderator: picked[2].ID,
		Judge:     picked[3].ID,
	})
}

// DefaultFreeModels returns a hardcoded fallback list of known free models.
func DefaultFreeModels() []openrouter.Model {
	return []openrouter.Model{
		{ID: "qwen/qwen3-235b-a22b:free", Name: "Qwen3 235B A22B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "google/gemma-3n-e2b-it:free", Name: "Gemma 3n 2B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "nvidia/nemotron-nano-9b-v2:free", Name: "Nemotron Nano 9B V2", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "qwen/qwen3-coder:free", Name: "Qwen3 Coder 480B A35B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "openai/gpt-oss-120b:free", Name: "GPT OSS 120B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
	}
}
