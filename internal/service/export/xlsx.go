// Package export renders price data as spreadsheet downloads.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

var historyHeader = []interface{}{"Date", "Market", "Price"}

// WritePriceHistory writes a workbook with one sheet named after the crop and
// one row per history point. marketName resolves market ids; unknown ids are
// written as-is.
func WritePriceHistory(w io.Writer, crop models.Crop, history []models.PriceHistory, marketName func(id string) (string, bool)) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(crop.Name)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &historyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, h := range history {
		market := h.MarketID
		if name, ok := marketName(h.MarketID); ok {
			market = name
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{h.Date.Format(dateLayout), market, h.Price}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 18); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SheetName returns a valid sheet name for a crop.
func SheetName(cropName string) string {
	if cropName == "" {
		return "Prices"
	}
	runes := []rune(cropName)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
