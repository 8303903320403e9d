package registry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/evolvekit/evolve/errors"
)

// document is the wire form of a registry file: two sibling arrays, legacy
// runes referencing external definition files and self-contained contracts.
type document struct {
	Version      string      `json:"version"`
	Runes        []runeEntry `json:"runes"`
	Capabilities []contract  `json:"capabilities"`
}

type runeEntry struct {
	RuneID         string `json:"rune_id"`
	DefinitionPath string `json:"definition_path"`
	SigilPath      string `json:"sigil_path"`
}

// contract mirrors the CapabilityContract wire form. ProvenanceRequired and
// Deterministic default to true when absent, hence the pointers.
type contract struct {
	CapabilityID       string `json:"capability_id"`
	RuneID             string `json:"rune_id"`
	OperatorReference  string `json:"operator_reference"`
	Version            string `json:"version"`
	InputSchema        string `json:"input_schema"`
	OutputSchema       string `json:"output_schema"`
	ProvenanceRequired *bool  `json:"provenance_required"`
	Deterministic      *bool  `json:"deterministic"`
	EvidenceMode       string `json:"evidence_mode"`
}

// runeDefinition is the external per-rune definition file referenced by a
// legacy rune entry.
type runeDefinition struct {
	ShortName         string   `json:"short_name"`
	Name              string   `json:"name"`
	Inputs            []string `json:"inputs"`
	Outputs           []string `json:"outputs"`
	OperatorReference string   `json:"operator_reference"`
	Version           string   `json:"version"`
	Capability        string   `json:"capability"`
	InputSchema       string   `json:"input_schema"`
	OutputSchema      string   `json:"output_schema"`
}

// Load reads a registry document and normalizes both the legacy runes and
// inline contracts into one binding table. A malformed document, a missing
// rune definition file, or an unparseable version fails here, never at
// invocation time.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read registry document %s", path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse registry document %s", path)
	}

	baseDir := filepath.Dir(path)
	bindings := make([]*Binding, 0, len(doc.Runes)+len(doc.Capabilities))

	for _, entry := range doc.Runes {
		b, err := loadRune(baseDir, entry)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	for _, c := range doc.Capabilities {
		b, err := normalizeContract(c)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	return newRegistry(doc.Version, bindings), nil
}

func loadRune(baseDir string, entry runeEntry) (*Binding, error) {
	if entry.RuneID == "" {
		return nil, errors.New("rune entry missing rune_id")
	}
	if entry.DefinitionPath == "" {
		return nil, errors.Newf("rune %s missing definition_path", entry.RuneID)
	}

	defPath := entry.DefinitionPath
	if !filepath.IsAbs(defPath) {
		defPath = filepath.Join(baseDir, defPath)
	}

	data, err := os.ReadFile(defPath)
	if err != nil {
		return nil, errors.Wrapf(err, "rune %s: read definition %s", entry.RuneID, defPath)
	}

	var def runeDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(err, "rune %s: parse definition %s", entry.RuneID, defPath)
	}

	if err := checkVersion(def.Version, entry.RuneID); err != nil {
		return nil, err
	}
	if def.OperatorReference == "" {
		return nil, errors.Newf("rune %s: definition has no operator_reference", entry.RuneID)
	}

	return &Binding{
		CapabilityID:       def.Capability,
		RuneID:             entry.RuneID,
		ShortName:          def.ShortName,
		Name:               def.Name,
		Inputs:             def.Inputs,
		Outputs:            def.Outputs,
		OperatorReference:  def.OperatorReference,
		Version:            def.Version,
		InputSchema:        def.InputSchema,
		OutputSchema:       def.OutputSchema,
		ProvenanceRequired: true,
		Deterministic:      true,
		EvidenceMode:       EvidenceDetectorOnly,
		Legacy:             true,
		DefinitionPath:     entry.DefinitionPath,
		SigilPath:          entry.SigilPath,
	}, nil
}

func normalizeContract(c contract) (*Binding, error) {
	if c.CapabilityID == "" {
		return nil, errors.New("capability contract missing capability_id")
	}
	if c.OperatorReference == "" {
		return nil, errors.Newf("capability %s missing operator_reference", c.CapabilityID)
	}
	if err := checkVersion(c.Version, c.CapabilityID); err != nil {
		return nil, err
	}

	mode := EvidenceMode(c.EvidenceMode)
	if c.EvidenceMode == "" {
		mode = EvidenceDetectorOnly
	} else if !mode.valid() {
		return nil, errors.Newf("capability %s: unknown evidence_mode %q", c.CapabilityID, c.EvidenceMode)
	}

	return &Binding{
		CapabilityID:       c.CapabilityID,
		RuneID:             c.RuneID,
		OperatorReference:  c.OperatorReference,
		Version:            c.Version,
		InputSchema:        c.InputSchema,
		OutputSchema:       c.OutputSchema,
		ProvenanceRequired: boolOr(c.ProvenanceRequired, true),
		Deterministic:      boolOr(c.Deterministic, true),
		EvidenceMode:       mode,
	}, nil
}

func checkVersion(version, owner string) error {
	if version == "" {
		return errors.Newf("%s: missing version", owner)
	}
	if _, err := semver.NewVersion(version); err != nil {
		return errors.Wrapf(err, "%s: invalid version %q", owner, version)
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
