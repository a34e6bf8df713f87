package model

import "strings"

// Role is the rhetorical function of a section in the paper's argument.
// The set is closed: anything a model emits outside it is normalized to
// RoleBody, the mandatory fallback.
type Role string

const (
	RoleBackground  Role = "background"
	RoleMethod      Role = "method"
	RoleResults     Role = "results"
	RoleDiscussion  Role = "discussion"
	RoleLimitations Role = "limitations"
	RoleBody        Role = "body"
)

// Valid reports whether r is one of the six canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBackground, RoleMethod, RoleResults, RoleDiscussion, RoleLimitations, RoleBody:
		return true
	}
	return false
}

// roleSynonyms remaps the labels models commonly substitute for the
// canonical set.
var roleSynonyms = map[string]Role{
	"introduction":     RoleBackground,
	"related work":     RoleBackground,
	"prior work":       RoleBackground,
	"methodology":      RoleMethod,
	"methods":          RoleMethod,
	"approach":         RoleMethod,
	"experiments":      RoleResults,
	"evaluation":       RoleResults,
	"findings":         RoleResults,
	"conclusion":       RoleDiscussion,
	"conclusions":      RoleDiscussion,
	"summary":          RoleDiscussion,
	"limitation":       RoleLimitations,
	"references":       RoleBody,
	"appendix":         RoleBody,
	"acknowledgments":  RoleBody,
	"acknowledgements": RoleBody,
}

// NormalizeRole maps a raw role string onto the closed role set. Canonical
// values pass through, known synonyms are remapped, everything else
// collapses to RoleBody.
func NormalizeRole(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if r.Valid() {
		return r
	}
	if mapped, ok := roleSynonyms[string(r)]; ok {
		return mapped
	}
	return RoleBody
}

// SectionRole is one classification produced by the segmenter.
type SectionRole struct {
	SectionID  string  `json:"section_id"`
	Role       Role    `json:"role"`
	Confidence float64 `json:"confidence"`
}

// RhetoricalMap holds the rhetorical classification of every non-empty
// section. Order is irrelevant; duplicate entries resolve last-write-wins.
type RhetoricalMap struct {
	Roles []SectionRole `json:"roles"`
}

// RoleOf returns the resolved role for a section. Unclassified sections
// default to RoleBody.
func (m *RhetoricalMap) RoleOf(sectionID string) Role {
	role := RoleBody
	for _, r := range m.Roles {
		if r.SectionID == sectionID {
			role = r.Role
		}
	}
	return role
}

// ClampConfidence bounds a confidence score to [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FallbackConfidence is the score stamped on classifications that came from
// a failure path rather than the model, so consumers can discount them.
const FallbackConfidence = 0.2
