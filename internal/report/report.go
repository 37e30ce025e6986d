// Package report writes internal/surface.Result sets to JSON and CSV,
// following the teacher's flat os.WriteFile/encoding-csv pattern.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/optionkit/impliedvol/internal/surface"
)

// WriteJSON writes results as an indented JSON array to <outdir>/surface.json.
func WriteJSON(results []surface.Result, outdir string) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "surface.json"), b, 0644)
}

// WriteCSV writes results as a flat CSV to <outdir>/surface.csv, one row
// per contract.
func WriteCSV(results []surface.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "surface.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"underlying", "strike", "forward", "expiry", "t", "is_call", "price", "iv", "accuracy", "error"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Underlying,
			fmt.Sprintf("%.4f", r.Strike),
			fmt.Sprintf("%.4f", r.Forward),
			r.Expiry.Format("2006-01-02"),
			fmt.Sprintf("%.8f", r.T),
			fmt.Sprintf("%t", r.IsCall),
			fmt.Sprintf("%.6f", r.Price),
			fmt.Sprintf("%.10f", r.IV),
			fmt.Sprintf("%.3e", r.Accuracy),
			r.Err,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
