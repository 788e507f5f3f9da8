package sweep

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// csvColumns is the report header, one row per summary.
var csvColumns = []string{
	"scenario", "parameter", "value",
	"reliability", "downtime_stddev", "mttf", "mtbf",
	"avg_repair_cost", "avg_maintenance_cost", "breakeven_profit",
}

// WriteCSV writes one header row and one row per summary.
// Variants are appended to the scenario column as "scenario/variant".
func WriteCSV(w io.Writer, summaries []Summary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, s := range summaries {
		scenario := s.Scenario
		if s.Variant != "" {
			scenario += "/" + s.Variant
		}
		row := []string{
			scenario,
			s.Parameter,
			s.Value,
			formatFloat(s.Reliability),
			formatFloat(s.DowntimeStdDev),
			formatFloat(s.MTTF),
			formatFloat(s.MTBF),
			formatFloat(s.AvgRepairCost),
			formatFloat(s.AvgMaintenanceCost),
			formatFloat(s.BreakevenProfit),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the whole report as indented JSON.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// SaveReport writes the report to path, as JSON when asJSON is set and CSV otherwise.
func SaveReport(path string, report *Report, asJSON bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if asJSON {
		err = WriteJSON(file, report)
	} else {
		err = WriteCSV(file, report.Summaries)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
