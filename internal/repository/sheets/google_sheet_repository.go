package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/mandi/internal/config"
	"github.com/mamadbah2/mandi/internal/domain/models"
)

const (
	snapshotRange = "Snapshots!A:F"
	dateLayout    = "2006-01-02"
)

// RowWriter appends rows to a sheet range.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository implements RowWriter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// SnapshotWriter stores daily snapshots as one sheet row per market.
type SnapshotWriter struct {
	rows RowWriter
}

// NewSnapshotWriter adapts a RowWriter into a snapshot sink.
func NewSnapshotWriter(rows RowWriter) *SnapshotWriter {
	return &SnapshotWriter{rows: rows}
}

// SaveDailySnapshot writes Date, Crop, Market, Price, Change and Trend columns.
func (w *SnapshotWriter) SaveDailySnapshot(ctx context.Context, snapshot models.DailySnapshot) error {
	for _, row := range SnapshotRows(snapshot) {
		if err := w.rows.WriteRow(ctx, snapshotRange, row); err != nil {
			return fmt.Errorf("write snapshot row: %w", err)
		}
	}
	return nil
}

// SnapshotRows flattens a snapshot into sheet rows. Missing prices become empty cells.
func SnapshotRows(snapshot models.DailySnapshot) [][]interface{} {
	date := snapshot.Date.Format(dateLayout)
	rows := make([][]interface{}, 0, len(snapshot.Markets))
	for _, m := range snapshot.Markets {
		var price interface{} = ""
		if m.Price != nil {
			price = *m.Price
		}
		rows = append(rows, []interface{}{date, snapshot.CropName, m.MarketName, price, m.ChangePercent, string(m.Trend)})
	}
	return rows
}
