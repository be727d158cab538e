package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValueSource fetches the raw cell values of a spreadsheet range.
type ValueSource interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

// apiSource adapts the Sheets API to ValueSource.
type apiSource struct {
	service *sheets.Service
}

func (s apiSource) Values(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Reader loads catalog rows from a spreadsheet.
type Reader struct {
	source ValueSource
	logger *slog.Logger
	config Config
}

// NewReader creates a reader backed by the Google Sheets API.
func NewReader(ctx context.Context, config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewReaderWithSource(apiSource{service: srv}, config, logger), nil
}

// NewReaderWithSource creates a reader over an arbitrary value source.
func NewReaderWithSource(source ValueSource, config Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{source: source, config: config, logger: logger}
}

// Fetch downloads the configured range and parses it into catalog rows.
func (r *Reader) Fetch(ctx context.Context) ([]service.CatalogRow, error) {
	r.logger.Info("loading catalog from spreadsheet",
		"spreadsheet_id", r.config.SpreadsheetID,
		"range", r.config.Range)

	policy := common.CatalogReadPolicy(r.config.RetryAttempts, r.config.RetryDelay)
	policy.Permanent = permanentAPIError

	var values [][]any
	err := common.WithRetry(ctx, policy, func(ctx context.Context) error {
		var getErr error
		values, getErr = r.source.Values(ctx, r.config.SpreadsheetID, r.config.Range)
		return markThrottled(getErr)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCatalogUnavailable, err)
	}

	rows := ParseRows(values, r.config.HeaderRows)
	if len(rows) == 0 {
		return nil, common.ErrCatalogEmpty
	}

	r.logger.Info("catalog loaded",
		"raw_rows", len(values),
		"usable_rows", len(rows))

	return rows, nil
}

// permanentAPIError reports client errors from the Sheets API other than quota
// exhaustion. A wrong spreadsheet id or missing permission will not heal on retry.
func permanentAPIError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
}

// markThrottled tags quota errors so the retry waits the full backoff.
func markThrottled(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", common.ErrThrottled, err)
	}
	return err
}

// Load fetches the catalog and wraps it in an Index.
func (r *Reader) Load(ctx context.Context) (*Index, error) {
	rows, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(rows), nil
}

// createSheetsService creates a read-only Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
