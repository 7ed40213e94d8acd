package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"

	"cropdash/internal/models"
	"cropdash/internal/navigation"
	"cropdash/internal/repository"

	"github.com/xuri/excelize/v2"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const exportSheet = "readings"

// ExportFile is a download ready to be written out.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Export downloads the raw readings of a complete selection, one row per
// sensor and timestamp, sensors in id order.
func (s *DashboardService) Export(ctx context.Context, state navigation.PageState, format string) (ExportFile, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return ExportFile{}, models.NewValidationError(navigation.ParamFormat, fmt.Sprintf("Unsupported download format %q.", format))
	}
	if err := state.Validate(); err != nil {
		return ExportFile{}, err
	}
	st, err := s.sensorType(state.SensorType)
	if err != nil {
		return ExportFile{}, err
	}
	fields := fieldNames(st.Fields)

	groups, err := s.repo.QueryReadings(ctx, repository.ReadingsQuery{
		SensorIDs: state.SensorIDs,
		Fields:    fields,
		Start:     state.Start,
		Stop:      state.Stop(),
	})
	if err != nil {
		return ExportFile{}, fmt.Errorf("query readings: %w", err)
	}
	rows := exportRows(groups, fields)
	name := fmt.Sprintf("readings_%s_%s.%s",
		state.Start.Format(navigation.DateLayout), state.End.Format(navigation.DateLayout), format)

	if format == FormatXLSX {
		body, err := writeXLSX(rows)
		if err != nil {
			return ExportFile{}, err
		}
		return ExportFile{
			Name:        name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	}
	body, err := writeCSV(rows)
	if err != nil {
		return ExportFile{}, err
	}
	return ExportFile{Name: name, ContentType: "text/csv", Body: body}, nil
}

// exportRows flattens groups into a header row plus one row per sample.
// Missing values are nil.
func exportRows(groups models.GroupedSeries, fields []string) [][]any {
	header := append([]any{"sensor_id", "timestamp"}, anySlice(fields)...)
	rows := [][]any{header}
	for _, key := range groups.SortedKeys() {
		series := slices.Clone(groups[key])
		slices.SortStableFunc(series, func(a, b models.Sample) int {
			return a.Timestamp.Compare(b.Timestamp.Time)
		})
		for _, sample := range series {
			row := []any{key, sample.Timestamp.UTC().Format(models.BackendTimeLayout)}
			for _, f := range fields {
				if v, ok := sample.Field(f); ok {
					row = append(row, v)
				} else {
					row = append(row, nil)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func writeCSV(rows [][]any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			switch v := cell.(type) {
			case nil:
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX(rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("write xlsx: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write xlsx: %w", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
