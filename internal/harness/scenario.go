package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/query"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Seed starts the scenario from the example airdrops instead of an
	// empty database.
	Seed bool `yaml:"seed,omitempty"`

	// Steps run in order. Each step is either an import or a list.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one import batch or one listing query.
type Step struct {
	Import []model.ImportItem `yaml:"import,omitempty"`
	List   *ListStep          `yaml:"list,omitempty"`
	Expect *Expect            `yaml:"expect,omitempty"`
}

// Kind returns "import" or "list".
func (s Step) Kind() string {
	if s.List != nil {
		return StepList
	}
	return StepImport
}

// ListStep is the YAML form of a listing filter.
type ListStep struct {
	Chain   string `yaml:"chain,omitempty"`
	Status  string `yaml:"status,omitempty"`
	Q       string `yaml:"q,omitempty"`
	RiskMin *int   `yaml:"risk_min,omitempty"`
	RiskMax *int   `yaml:"risk_max,omitempty"`
	Sort    string `yaml:"sort,omitempty"`
}

// Filter converts the step to a query filter.
func (l ListStep) Filter() query.Filter {
	return query.Filter{
		Chain:   l.Chain,
		Status:  model.Status(l.Status),
		Q:       l.Q,
		RiskMin: l.RiskMin,
		RiskMax: l.RiskMax,
		Sort:    query.Sort(l.Sort),
	}
}

// Expect is the expected outcome of a step. Unset fields are not checked.
type Expect struct {
	// Outcome is "ok" or an error code ("VALIDATION", "CONSTRAINT").
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the applied item count of an import or the row count of a list.
	Count *int `yaml:"count,omitempty"`

	// IDs is the exact airdrop id order of a list.
	IDs []string `yaml:"ids,omitempty"`
}

// Step kinds.
const (
	StepImport = "import"
	StepList   = "list"
)

// Assertion validates the final state.
type Assertion struct {
	// Type is one of AssertRow, AssertCounts, AssertAbsent.
	Type string `yaml:"type"`

	// Airdrop is the airdrop id (row, absent).
	Airdrop string `yaml:"airdrop,omitempty"`

	// Expect holds expected field values, keyed by JSON field name.
	// Subset match for row, exact for counts.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRow    = "row"
	AssertCounts = "counts"
	AssertAbsent = "absent"
)

// Outcome values that are not error codes.
const OutcomeOK = "ok"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.List != nil && step.Import != nil {
			return fmt.Errorf("steps[%d]: import and list are mutually exclusive", i)
		}
		if step.List == nil && step.Import == nil {
			return fmt.Errorf("steps[%d]: one of import or list is required", i)
		}
		if step.Expect != nil && step.Expect.IDs != nil && step.Kind() != StepList {
			return fmt.Errorf("steps[%d].expect: ids only applies to list steps", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRow:
		if a.Airdrop == "" {
			return fmt.Errorf("assertions[%d]: airdrop is required for row", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for row", index)
		}
	case AssertCounts:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for counts", index)
		}
	case AssertAbsent:
		if a.Airdrop == "" {
			return fmt.Errorf("assertions[%d]: airdrop is required for absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
