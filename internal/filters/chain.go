// Package filters implements the cascading Region → Agreement → Product → Status selection.
//
// The chain is a value type driven by pure transitions: Apply(chain, event) returns the
// next chain without touching the catalog. Callers fetch the downstream options from the
// catalog (see Loader) and hand them over inside the event.
package filters

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// Errors returned by Apply.
var (
	ErrStageDisabled = errors.New("filter stage is disabled")
	ErrUnknownOption = errors.New("option not offered by the catalog")
	ErrUnknownEvent  = errors.New("unknown filter event")
)

// StatusNotInformed is shown when the catalog has no status for the selected product.
const StatusNotInformed = "Status não informado"

// Stage identifies one step of the cascade.
type Stage int

// Cascade stages in order.
const (
	StageRegion Stage = iota
	StageAgreement
	StageProduct
	StageStatus
)

func (s Stage) String() string {
	switch s {
	case StageRegion:
		return "Região"
	case StageAgreement:
		return "Convênio"
	case StageProduct:
		return "Produto"
	case StageStatus:
		return "Status"
	}
	return "?"
}

// Select is one selectable stage.
type Select struct {
	Selected string
	Options  []string
	Enabled  bool
}

// Chain is the full state of the cascade for one tab.
type Chain struct {
	Status     string
	Region     Select
	Agreement  Select
	Product    Select
	StatusTone Tone
}

// New returns the initial chain: everything empty, Region disabled until the number is complete.
func New() Chain {
	return Chain{}
}

// Selection returns the chosen values as the model's filter set.
func (c Chain) Selection() model.FilterSelection {
	return model.FilterSelection{
		Region:        c.Region.Selected,
		Agreement:     c.Agreement.Selected,
		Product:       c.Product.Selected,
		ProductStatus: c.Status,
	}
}

// Complete reports whether all four stages are filled.
func (c Chain) Complete() bool {
	return c.Selection().Complete()
}

// Event is an input to the chain.
type Event interface {
	isEvent()
}

// NumberCompleted enables Region with the catalog's regions.
type NumberCompleted struct {
	Regions []string
}

// NumberInvalidated disables and clears every stage.
type NumberInvalidated struct{}

// RegionSelected picks a region; Agreements are the options for the next stage.
type RegionSelected struct {
	Region     string
	Agreements []string
}

// AgreementSelected picks an agreement; Products are the options for the next stage.
type AgreementSelected struct {
	Agreement string
	Products  []string
}

// ProductSelected picks a product; Status is the resolved catalog status.
type ProductSelected struct {
	Product string
	Status  string
}

// Reset returns the chain to its initial state.
type Reset struct{}

func (NumberCompleted) isEvent()   {}
func (NumberInvalidated) isEvent() {}
func (RegionSelected) isEvent()    {}
func (AgreementSelected) isEvent() {}
func (ProductSelected) isEvent()   {}
func (Reset) isEvent()             {}

// Apply returns the chain after ev. On error the original chain is returned unchanged.
func Apply(c Chain, ev Event) (Chain, error) {
	switch e := ev.(type) {
	case NumberCompleted:
		next := New()
		next.Region = Select{Enabled: true, Options: clone(e.Regions)}
		return next, nil

	case NumberInvalidated, Reset:
		return New(), nil

	case RegionSelected:
		if !c.Region.Enabled {
			return c, fmt.Errorf("%w: %s", ErrStageDisabled, StageRegion)
		}
		if err := checkOption(c.Region, e.Region, StageRegion); err != nil {
			return c, err
		}
		next := c
		next.Region.Selected = e.Region
		next.clearFrom(StageAgreement)
		if e.Region != "" {
			next.Agreement = Select{Enabled: true, Options: clone(e.Agreements)}
		}
		return next, nil

	case AgreementSelected:
		if !c.Agreement.Enabled {
			return c, fmt.Errorf("%w: %s", ErrStageDisabled, StageAgreement)
		}
		if err := checkOption(c.Agreement, e.Agreement, StageAgreement); err != nil {
			return c, err
		}
		next := c
		next.Agreement.Selected = e.Agreement
		next.clearFrom(StageProduct)
		if e.Agreement != "" {
			next.Product = Select{Enabled: true, Options: clone(e.Products)}
		}
		return next, nil

	case ProductSelected:
		if !c.Product.Enabled {
			return c, fmt.Errorf("%w: %s", ErrStageDisabled, StageProduct)
		}
		if err := checkOption(c.Product, e.Product, StageProduct); err != nil {
			return c, err
		}
		next := c
		next.Product.Selected = e.Product
		next.clearFrom(StageStatus)
		if e.Product != "" {
			next.Status = e.Status
			if next.Status == "" {
				next.Status = StatusNotInformed
			}
			next.StatusTone = ClassifyStatus(next.Status)
		}
		return next, nil
	}

	return c, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
}

// clearFrom empties and disables stage s and everything below it.
func (c *Chain) clearFrom(s Stage) {
	if s <= StageAgreement {
		c.Agreement = Select{}
	}
	if s <= StageProduct {
		c.Product = Select{}
	}
	c.Status = ""
	c.StatusTone = ToneNeutral
}

func checkOption(sel Select, value string, stage Stage) error {
	if value == "" || len(sel.Options) == 0 {
		return nil
	}
	if !slices.Contains(sel.Options, value) {
		return fmt.Errorf("%w: %s %q", ErrUnknownOption, stage, value)
	}
	return nil
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
