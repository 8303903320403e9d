// Package registry is the single source of truth mapping capability and
// legacy rune identifiers to operator bindings. A registry snapshot is
// immutable once loaded and safe to share across goroutines; reloading means
// loading a fresh snapshot and swapping the reference.
package registry

import (
	"sort"
	"strings"
)

// EvidenceMode describes which evidence lane a capability's results feed.
type EvidenceMode string

const (
	EvidencePredictionLane EvidenceMode = "prediction_lane"
	EvidenceShadowLane     EvidenceMode = "shadow_lane"
	EvidenceDetectorOnly   EvidenceMode = "detector_only"
)

// valid reports whether the mode is one of the declared lanes.
func (m EvidenceMode) valid() bool {
	switch m {
	case EvidencePredictionLane, EvidenceShadowLane, EvidenceDetectorOnly:
		return true
	}
	return false
}

// Binding is the unified in-memory form of one capability binding,
// normalized from either an inline contract or a legacy rune definition.
type Binding struct {
	CapabilityID       string
	RuneID             string
	ShortName          string
	Name               string
	Inputs             []string
	Outputs            []string
	OperatorReference  string
	Version            string
	InputSchema        string
	OutputSchema       string
	ProvenanceRequired bool
	Deterministic      bool
	EvidenceMode       EvidenceMode

	// Legacy marks bindings sourced from an external rune definition file.
	Legacy         bool
	DefinitionPath string
	SigilPath      string
}

// Report is the result of a sanity check. Pure inspection; never mutates
// the registry.
type Report struct {
	DuplicateRuneIDs    []string
	MissingCapabilities []string
}

// Clean reports whether the check found nothing wrong.
func (r Report) Clean() bool {
	return len(r.DuplicateRuneIDs) == 0 && len(r.MissingCapabilities) == 0
}

// Registry holds a loaded snapshot of bindings.
type Registry struct {
	Version  string
	bindings []*Binding

	byCapability map[string][]*Binding
	byRune       map[string][]*Binding
}

func newRegistry(version string, bindings []*Binding) *Registry {
	r := &Registry{
		Version:      version,
		bindings:     bindings,
		byCapability: make(map[string][]*Binding),
		byRune:       make(map[string][]*Binding),
	}
	for _, b := range bindings {
		if b.CapabilityID != "" {
			r.byCapability[b.CapabilityID] = append(r.byCapability[b.CapabilityID], b)
		}
		if b.RuneID != "" {
			r.byRune[b.RuneID] = append(r.byRune[b.RuneID], b)
		}
	}
	return r
}

// All returns every binding in document order.
func (r *Registry) All() []*Binding {
	out := make([]*Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// FindByCapability returns the first binding answering the capability id,
// or nil. Callers that must detect ambiguity use MatchesByCapability.
func (r *Registry) FindByCapability(id string) *Binding {
	if bs := r.byCapability[id]; len(bs) > 0 {
		return bs[0]
	}
	return nil
}

// FindByRune returns the first binding answering the legacy rune id, or nil.
func (r *Registry) FindByRune(id string) *Binding {
	if bs := r.byRune[id]; len(bs) > 0 {
		return bs[0]
	}
	return nil
}

// MatchesByCapability returns every binding answering the capability id.
func (r *Registry) MatchesByCapability(id string) []*Binding {
	return r.byCapability[id]
}

// MatchesByRune returns every binding answering the legacy rune id.
func (r *Registry) MatchesByRune(id string) []*Binding {
	return r.byRune[id]
}

// ListByPrefix returns bindings whose capability id starts with prefix,
// sorted by capability id.
func (r *Registry) ListByPrefix(prefix string) []*Binding {
	var out []*Binding
	for _, b := range r.bindings {
		if strings.HasPrefix(b.CapabilityID, prefix) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CapabilityID < out[j].CapabilityID
	})
	return out
}

// SanityCheck reports duplicate rune ids and required capabilities with no
// binding. Duplicates do not fail loading; invocation refuses ambiguous ids
// at call time.
func (r *Registry) SanityCheck(requiredCapabilities []string) Report {
	var report Report
	for runeID, bs := range r.byRune {
		if len(bs) > 1 {
			report.DuplicateRuneIDs = append(report.DuplicateRuneIDs, runeID)
		}
	}
	for _, id := range requiredCapabilities {
		if len(r.byCapability[id]) == 0 {
			report.MissingCapabilities = append(report.MissingCapabilities, id)
		}
	}
	sort.Strings(report.DuplicateRuneIDs)
	sort.Strings(report.MissingCapabilities)
	return report
}
