package export

import (
	"fmt"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"leadharvest/pkg/models"
	"path/filepath"
)

const sheetName = "Businesses"

// maxColWidth caps auto-sized columns so one long address cannot stretch
// the sheet unreadably.
const maxColWidth = 50

// XLSX writes one workbook per region into its directory.
type XLSX struct {
	dir string
	log *zap.Logger
}

func NewXLSX(dir string, log *zap.Logger) *XLSX {
	if log == nil {
		log = zap.NewNop()
	}
	return &XLSX{dir: dir, log: log}
}

// Filename returns the workbook path for a region.
func (x *XLSX) Filename(regionKey string) string {
	return filepath.Join(x.dir, regionKey+"_businesses.xlsx")
}

// Export writes the fixed header and the rows to the region's workbook: a
// bold header on a sheet named "Businesses", each column sized to its
// longest cell plus a little air.
func (x *XLSX) Export(regionKey string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := models.ExportHeader()
	widths := make([]int, len(header))

	if err := writeRow(f, 1, header, widths); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range rows {
		if err := writeRow(f, i+2, row, widths); err != nil {
			return err
		}
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w := float64(width + 2)
		if w > maxColWidth {
			w = maxColWidth
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return fmt.Errorf("size column %s: %w", col, err)
		}
	}

	path := x.Filename(regionKey)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	x.log.Info("workbook written",
		zap.String("file", path),
		zap.Int("rows", len(rows)))
	return nil
}

// writeRow puts one row of cells on the sheet and folds their lengths into
// the running column widths.
func writeRow(f *excelize.File, rowNum int, cells []string, widths []int) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return fmt.Errorf("cell %d,%d: %w", i+1, rowNum, err)
		}
		if err := f.SetCellStr(sheetName, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
		if i < len(widths) && len(v) > widths[i] {
			widths[i] = len(v)
		}
	}
	return nil
}
