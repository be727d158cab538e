package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func sheetRow(agreement, product, region, status string) []any {
	row := []any{"id", "uf", agreement, "orgao", "tipo", product, region}
	if status != "" {
		row = append(row, status)
	}
	return row
}

func TestParseRows(t *testing.T) {
	values := [][]any{
		{"ID", "UF", "Convênio", "Órgão", "Tipo", "Produto", "Região", "Status"},
		sheetRow("GOV-AM", "Consignado", "Norte", "Ativo"),
		sheetRow(" GOV-PA ", "Cartão", "Norte", ""),
		sheetRow("", "Consignado", "Norte", "Ativo"),
		{"id", "uf", "GOV-RS"},
		sheetRow("GOV-RS", "Consignado", "Sul", "Suspenso"),
	}

	rows := ParseRows(values, 1)
	require.Len(t, rows, 3)

	assert.Equal(t, service.CatalogRow{Region: "Norte", Agreement: "GOV-AM", Product: "Consignado", Status: "Ativo"}, rows[0])
	assert.Equal(t, "GOV-PA", rows[1].Agreement, "cells are trimmed")
	assert.Equal(t, "N/A", rows[1].Status)
	assert.Equal(t, "Sul", rows[2].Region)
}

func TestParseRowsHeaderLargerThanValues(t *testing.T) {
	assert.Empty(t, ParseRows([][]any{{"a"}}, 3))
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex([]service.CatalogRow{
		{Region: "Sul", Agreement: "GOV-RS", Product: "Consignado", Status: "Ativo"},
		{Region: "Norte", Agreement: "GOV-PA", Product: "Cartão", Status: "N/A"},
		{Region: "Norte", Agreement: "GOV-AM", Product: "Consignado", Status: "Ativo"},
		{Region: "Norte", Agreement: "GOV-AM", Product: "Cartão", Status: "Inativo"},
		{Region: "Norte", Agreement: "GOV-AM", Product: "Consignado", Status: "Suspenso"},
	})

	regions, err := idx.Regions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Norte", "Sul"}, regions)

	agreements, err := idx.Agreements(ctx, "Norte")
	require.NoError(t, err)
	assert.Equal(t, []string{"GOV-AM", "GOV-PA"}, agreements)

	products, err := idx.Products(ctx, "GOV-AM")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cartão", "Consignado"}, products)

	tests := []struct {
		name      string
		agreement string
		product   string
		want      string
	}{
		{"first informed status wins", "GOV-AM", "Consignado", "Ativo"},
		{"status per product", "GOV-AM", "Cartão", "Inativo"},
		{"not available is unknown", "GOV-PA", "Cartão", ""},
		{"unknown pair", "GOV-XX", "Consignado", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Status(ctx, tt.agreement, tt.product)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	none, err := idx.Agreements(ctx, "Leste")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIndexCopiesRows(t *testing.T) {
	rows := []service.CatalogRow{{Region: "Norte", Agreement: "GOV-AM", Product: "Consignado", Status: "Ativo"}}
	idx := NewIndex(rows)
	rows[0].Region = "changed"

	assert.Equal(t, "Norte", idx.Rows()[0].Region)
	assert.Equal(t, 1, idx.Len())
}

type fakeSource struct {
	err    error
	values [][]any
	calls  []string
	fails  int
	mu     sync.Mutex
}

func (f *fakeSource) Values(_ context.Context, spreadsheetID, readRange string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, spreadsheetID+"!"+readRange)
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("transient")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

func testReaderConfig() Config {
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-1"
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestReaderFetch(t *testing.T) {
	src := &fakeSource{
		fails: 1,
		values: [][]any{
			{"header"},
			sheetRow("GOV-AM", "Consignado", "Norte", "Ativo"),
		},
	}
	r := NewReaderWithSource(src, testReaderConfig(), nil)

	idx, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, []string{"sheet-1!A:H", "sheet-1!A:H"}, src.calls, "retried once after a transient failure")
}

func TestReaderFetchErrors(t *testing.T) {
	t.Run("source keeps failing", func(t *testing.T) {
		src := &fakeSource{err: errors.New("forbidden")}
		_, err := NewReaderWithSource(src, testReaderConfig(), nil).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrCatalogUnavailable))
		assert.Len(t, src.calls, 2)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		src := &fakeSource{err: &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}}
		_, err := NewReaderWithSource(src, testReaderConfig(), nil).Fetch(context.Background())
		require.ErrorIs(t, err, common.ErrCatalogUnavailable)
		assert.Len(t, src.calls, 1)
	})

	t.Run("no usable rows", func(t *testing.T) {
		src := &fakeSource{values: [][]any{{"header"}, {"only", "two"}}}
		_, err := NewReaderWithSource(src, testReaderConfig(), nil).Fetch(context.Background())
		assert.ErrorIs(t, err, common.ErrCatalogEmpty)
	})
}

func TestReaderFetchThrottled(t *testing.T) {
	src := &quotaSource{
		values: [][]any{{"header"}, sheetRow("GOV-AM", "Consignado", "Norte", "Ativo")},
	}
	rows, err := NewReaderWithSource(src, testReaderConfig(), nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 2, src.calls)
}

// quotaSource answers the first call with a quota error.
type quotaSource struct {
	values [][]any
	calls  int
}

func (q *quotaSource) Values(context.Context, string, string) ([][]any, error) {
	q.calls++
	if q.calls == 1 {
		return nil, &googleapi.Error{Code: http.StatusTooManyRequests, Message: "Quota exceeded"}
	}
	return q.values, nil
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		permanent bool
		throttled bool
	}{
		{name: "not found", err: &googleapi.Error{Code: http.StatusNotFound}, permanent: true},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden}, permanent: true},
		{name: "quota", err: &googleapi.Error{Code: http.StatusTooManyRequests}, throttled: true},
		{name: "server error", err: &googleapi.Error{Code: http.StatusServiceUnavailable}},
		{name: "network", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.permanent, permanentAPIError(tt.err))
			assert.Equal(t, tt.throttled, errors.Is(markThrottled(tt.err), common.ErrThrottled))
		})
	}
	assert.NoError(t, markThrottled(nil))
}

func TestReadCSV(t *testing.T) {
	data := strings.Join([]string{
		"ID,UF,Convênio,Órgão,Tipo,Produto,Região,Status",
		"1,AM,GOV-AM,SEFAZ,Estadual,Consignado,Norte,Ativo",
		"2,PA,GOV-PA,SEFAZ,Estadual,Cartão,Norte",
		"3,RS,,SEFAZ,Estadual,Consignado,Sul,Ativo",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(data), 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "GOV-AM", rows[0].Agreement)
	assert.Equal(t, "N/A", rows[1].Status)

	_, err = ReadCSV(strings.NewReader("ID,UF\n"), 1)
	assert.ErrorIs(t, err, common.ErrCatalogEmpty)
}

func TestLoadCSVFile(t *testing.T) {
	_, err := LoadCSVFile(t.TempDir()+"/missing.csv", 1)
	assert.Error(t, err)
}
