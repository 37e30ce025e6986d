package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tests "github.com/optionkit/impliedvol/internal/testutil"
	"github.com/optionkit/impliedvol/internal/surface"
)

func sampleResults() []surface.Result {
	return []surface.Result{
		{
			Underlying: "SPY",
			Strike:     100,
			Forward:    105,
			Expiry:     time.Date(2026, time.January, 16, 0, 0, 0, 0, time.UTC),
			T:          0.5,
			IsCall:     true,
			Price:      8.5,
			IV:         0.2,
			Accuracy:   0.0001,
		},
	}
}

func TestResultJSONMatchesGolden(t *testing.T) {
	tests.CompareWithGolden(t, "surfaceresult", sampleResults())
}

func TestWriteCSVHasMatchingColumnsAndRowCount(t *testing.T) {
	results := sampleResults()
	outdir := t.TempDir()
	if err := WriteCSV(results, outdir); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(outdir, "surface.csv"))
	if err != nil {
		t.Fatalf("reading surface.csv: %v", err)
	}
	content := string(b)

	wantHeader := "underlying,strike,forward,expiry,t,is_call,price,iv,accuracy,error\n"
	if content[:len(wantHeader)] != wantHeader {
		t.Errorf("header = %q, want %q", content[:len(wantHeader)], wantHeader)
	}

	lines := 0
	for _, c := range content {
		if c == '\n' {
			lines++
		}
	}
	if lines != len(results)+1 {
		t.Errorf("wrote %d lines, want %d (header + %d rows)", lines, len(results)+1, len(results))
	}
}

func TestWriteJSONProducesValidFile(t *testing.T) {
	outdir := t.TempDir()
	if err := WriteJSON(sampleResults(), outdir); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outdir, "surface.json")); err != nil {
		t.Errorf("surface.json not written: %v", err)
	}
}
