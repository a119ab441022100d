// Package ingest parses bulk point uploads.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"points-service/internal/domain"
)

// xlsx layout: header row, then one row per home with columns
// home_num, volts, ampers, power, resistance.
const expectedColumns = 5

var ErrNoData = errors.New("workbook contains no data rows")

// PointsFromXLSX reads the first sheet of an xlsx workbook into point inputs.
func PointsFromXLSX(r io.Reader) ([]domain.PointInput, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, ErrNoData
	}

	inputs := make([]domain.PointInput, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		if len(row) < expectedColumns {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", rowNum, expectedColumns, len(row))
		}

		homeNum, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: home_num: %w", rowNum, err)
		}

		values := make([]float64, 4)
		for j, name := range []string{"volts", "ampers", "power", "resistance"} {
			value, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", rowNum, name, err)
			}
			values[j] = value
		}

		inputs = append(inputs, domain.PointInput{
			HomeNum:    homeNum,
			Volts:      values[0],
			Ampers:     values[1],
			Power:      values[2],
			Resistance: values[3],
		})
	}

	return inputs, nil
}
