package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/service"
)

// Column positions in the eligibility sheet, zero based.
const (
	ColumnAgreement = 2
	ColumnProduct   = 5
	ColumnRegion    = 6
	ColumnStatus    = 7
)

// notAvailable marks a blank cell in exported sheets.
const notAvailable = "N/A"

// ParseRows converts raw sheet values into catalog rows. Rows missing a region,
// agreement or product are skipped. A missing status becomes "N/A".
func ParseRows(values [][]any, headerRows int) []service.CatalogRow {
	if headerRows > len(values) {
		return nil
	}

	rows := make([]service.CatalogRow, 0, len(values)-headerRows)
	for _, raw := range values[headerRows:] {
		region := cell(raw, ColumnRegion)
		agreement := cell(raw, ColumnAgreement)
		product := cell(raw, ColumnProduct)
		if region == "" || agreement == "" || product == "" {
			continue
		}

		status := cell(raw, ColumnStatus)
		if status == "" {
			status = notAvailable
		}

		rows = append(rows, service.CatalogRow{
			Region:    region,
			Agreement: agreement,
			Product:   product,
			Status:    status,
		})
	}
	return rows
}

func cell(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

// Index is an in-memory Catalog built from a set of rows.
type Index struct {
	rows []service.CatalogRow
}

var _ service.Catalog = (*Index)(nil)

// NewIndex creates an index over rows. The slice is copied.
func NewIndex(rows []service.CatalogRow) *Index {
	return &Index{rows: append([]service.CatalogRow(nil), rows...)}
}

// Rows returns a copy of the indexed rows.
func (x *Index) Rows() []service.CatalogRow {
	return append([]service.CatalogRow(nil), x.rows...)
}

// Len returns the number of rows.
func (x *Index) Len() int {
	return len(x.rows)
}

// Regions lists the distinct regions, sorted.
func (x *Index) Regions(_ context.Context) ([]string, error) {
	return x.collect(func(r service.CatalogRow) (string, bool) {
		return r.Region, true
	}), nil
}

// Agreements lists the agreements offered in region, sorted.
func (x *Index) Agreements(_ context.Context, region string) ([]string, error) {
	return x.collect(func(r service.CatalogRow) (string, bool) {
		return r.Agreement, r.Region == region
	}), nil
}

// Products lists the products offered under agreement, sorted.
func (x *Index) Products(_ context.Context, agreement string) ([]string, error) {
	return x.collect(func(r service.CatalogRow) (string, bool) {
		return r.Product, r.Agreement == agreement
	}), nil
}

// Status returns the first informed status for the (agreement, product) pair,
// or "" when none is known.
func (x *Index) Status(_ context.Context, agreement, product string) (string, error) {
	for _, r := range x.rows {
		if r.Agreement != agreement || r.Product != product {
			continue
		}
		if r.Status == "" || r.Status == notAvailable {
			continue
		}
		return r.Status, nil
	}
	return "", nil
}

func (x *Index) collect(pick func(service.CatalogRow) (string, bool)) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range x.rows {
		v, ok := pick(r)
		if !ok || v == "" || v == notAvailable {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
