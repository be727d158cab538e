package filters

import (
	"context"
	"fmt"

	"github.com/Veraticus/proposal-desk/internal/service"
)

// Loader turns catalog lookups into chain events.
type Loader struct {
	catalog service.Catalog
}

// NewLoader creates a loader over the given catalog.
func NewLoader(catalog service.Catalog) *Loader {
	return &Loader{catalog: catalog}
}

// NumberCompleted fetches the regions that populate the first stage.
func (l *Loader) NumberCompleted(ctx context.Context) (Event, error) {
	regions, err := l.catalog.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}
	return NumberCompleted{Regions: regions}, nil
}

// RegionSelected fetches the agreements offered in region.
func (l *Loader) RegionSelected(ctx context.Context, region string) (Event, error) {
	if region == "" {
		return RegionSelected{}, nil
	}
	agreements, err := l.catalog.Agreements(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load agreements for %q: %w", region, err)
	}
	return RegionSelected{Region: region, Agreements: agreements}, nil
}

// AgreementSelected fetches the products offered under agreement.
func (l *Loader) AgreementSelected(ctx context.Context, agreement string) (Event, error) {
	if agreement == "" {
		return AgreementSelected{}, nil
	}
	products, err := l.catalog.Products(ctx, agreement)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for %q: %w", agreement, err)
	}
	return AgreementSelected{Agreement: agreement, Products: products}, nil
}

// ProductSelected resolves the status of product within agreement.
func (l *Loader) ProductSelected(ctx context.Context, agreement, product string) (Event, error) {
	if product == "" {
		return ProductSelected{}, nil
	}
	status, err := l.catalog.Status(ctx, agreement, product)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve status for %q: %w", product, err)
	}
	return ProductSelected{Product: product, Status: status}, nil
}
