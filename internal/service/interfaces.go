// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// RecordFilter defines filtering options for record queries.
type RecordFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Analyst   string
	Type      model.ProposalType
	Status    model.Status
	Limit     int
}

// ProposalStore is the persistence adapter consumed by the workflow.
// Records are kept in one logical store per proposal type.
type ProposalStore interface {
	// CreateAndFinalize writes a concluded proposal and returns the stored record.
	CreateAndFinalize(ctx context.Context, sub model.Submission) (*model.Record, error)
	// FindByNumber searches every store taking part in duplicate checks. It returns
	// (nil, nil) when absent.
	FindByNumber(ctx context.Context, number string) (*model.Record, error)
	ListByAnalyst(ctx context.Context, analyst string) ([]model.Record, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Record, error)
	ListWithFilters(ctx context.Context, filter RecordFilter) ([]model.Record, error)
	Close() error
}

// Catalog supplies the Region × Agreement × Product × Status side table.
type Catalog interface {
	Regions(ctx context.Context) ([]string, error)
	Agreements(ctx context.Context, region string) ([]string, error)
	Products(ctx context.Context, agreement string) ([]string, error)
	// Status resolves the status of a product within an agreement.
	Status(ctx context.Context, agreement, product string) (string, error)
}

// UserDirectory supplies analyst accounts.
type UserDirectory interface {
	GetUser(ctx context.Context, login string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

// CatalogRow is one line of the eligibility side table.
type CatalogRow struct {
	Region    string
	Agreement string
	Product   string
	Status    string
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}
