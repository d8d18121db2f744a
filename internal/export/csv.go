package export

import (
	"encoding/csv"
	"fmt"
	"go.uber.org/zap"
	"leadharvest/pkg/models"
	"os"
	"path/filepath"
)

// CSV writes one plain-text file per region, same columns as the workbook,
// for pipelines that would rather not parse xlsx.
type CSV struct {
	dir string
	log *zap.Logger
}

func NewCSV(dir string, log *zap.Logger) *CSV {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSV{dir: dir, log: log}
}

// Filename returns the file path for a region.
func (c *CSV) Filename(regionKey string) string {
	return filepath.Join(c.dir, regionKey+"_businesses.csv")
}

func (c *CSV) Export(regionKey string, rows [][]string) error {
	path := c.Filename(regionKey)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.ExportHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	c.log.Info("csv written",
		zap.String("file", path),
		zap.Int("rows", len(rows)))
	return nil
}
