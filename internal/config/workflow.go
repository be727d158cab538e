package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/proposal-desk/internal/checklist"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/model"
	"gopkg.in/yaml.v3"
)

// Workflow holds the per-type overrides read from the definitions file.
// Types absent from the file keep their built-in checklist and number shapes.
//
//	checklists:
//	  refin:
//	    - key: tarefa_1
//	      label: Conferir margem
//	number_patterns:
//	  solicitacao_interna:
//	    - expr: '^\d{2}-\d{10}$'
//	      example: 50-1234567890
type Workflow struct {
	Checklists     checklist.Definitions `yaml:"checklists"`
	NumberPatterns contract.Patterns     `yaml:"number_patterns"`
}

// ParseWorkflow decodes a definitions document. Unknown fields and unknown
// proposal types are rejected.
func ParseWorkflow(r io.Reader) (*Workflow, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var wf Workflow
	if err := dec.Decode(&wf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: workflow definitions: %w", common.ErrInvalidConfig, err)
	}

	for t := range wf.Checklists {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown proposal type %q in checklists", common.ErrInvalidConfig, t)
		}
	}
	for t := range wf.NumberPatterns {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown proposal type %q in number_patterns", common.ErrInvalidConfig, t)
		}
	}

	if err := checklist.DefaultDefinitions().Merge(wf.Checklists).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	return &wf, nil
}

// LoadWorkflow reads the definitions file at path. An empty path yields an
// empty Workflow.
func LoadWorkflow(path string) (*Workflow, error) {
	if path == "" {
		return &Workflow{}, nil
	}

	data, err := os.ReadFile(ExpandPath(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow definitions: %w", err)
	}
	return ParseWorkflow(bytes.NewReader(data))
}

// Matcher compiles the built-in number shapes merged with the overrides.
func (w *Workflow) Matcher() (*contract.Matcher, error) {
	m, err := contract.NewMatcher(contract.DefaultPatterns().Merge(w.NumberPatterns))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return m, nil
}

// ChecklistFor returns the effective checklist of type t.
func (w *Workflow) ChecklistFor(t model.ProposalType) []checklist.Item {
	return checklist.DefaultDefinitions().Merge(w.Checklists)[t]
}
