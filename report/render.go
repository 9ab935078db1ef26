package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

const rule = "================================================================================"

func mb(b int64) float64 { return float64(b) / 1024 / 1024 }

// WriteText renders r as a human readable report.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "MOVIE RECOMMENDATION DATASET REPORT")
	fmt.Fprintln(&b, rule)

	if len(r.Files) > 0 {
		fmt.Fprintln(&b, "\nFILES:")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "   %s: %.2f MB\n", f.Path, mb(f.Bytes))
		}
	}

	fmt.Fprintln(&b, "\nMOVIES:")
	fmt.Fprintf(&b, "   Total movies: %d\n", r.Movies)
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	fmt.Fprintf(&b, "   Fields: %s\n", strings.Join(names, ", "))
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "   %s: %d items\n", f.Name, f.Items)
	}
	fmt.Fprintf(&b, "   Tags per movie: avg %.1f, min %d, max %d\n", r.Tags.Avg, r.Tags.Min, r.Tags.Max)

	fmt.Fprintln(&b, "\nSIMILARITY MATRIX:")
	fmt.Fprintf(&b, "   Shape: (%d, %d)\n", r.Rows, r.Cols)
	fmt.Fprintln(&b, "   Data type: float64")
	fmt.Fprintf(&b, "   Memory usage: %.2f MB\n", mb(r.Memory))
	fmt.Fprintf(&b, "   Symmetric: %t (max |A-At| %.3g, max row drift %.3g)\n", r.Symmetric, r.MaxAsymmetry, r.MaxRowDrift)
	fmt.Fprintf(&b, "   Unit diagonal: %t (min %.6f, max %.6f)\n", r.UnitDiagonal, r.DiagonalMin, r.DiagonalMax)

	s := r.Similarity
	fmt.Fprintln(&b, "\nSIMILARITY STATISTICS (diagonal as 0):")
	fmt.Fprintf(&b, "   Min: %.6f\n", s.Min)
	fmt.Fprintf(&b, "   Max: %.6f\n", s.Max)
	fmt.Fprintf(&b, "   Mean: %.6f\n", s.Mean)
	fmt.Fprintf(&b, "   Median: %.6f\n", s.Median)
	fmt.Fprintf(&b, "   Std deviation: %.6f\n", s.Std)

	fmt.Fprintf(&b, "\nTOP %d MOST SIMILAR PAIRS:\n", len(r.TopPairs))
	for i, p := range r.TopPairs {
		fmt.Fprintf(&b, "   %d. %s [%d]\n", i+1, p.RowTitle, p.Row)
		fmt.Fprintf(&b, "      %s [%d]\n", p.ColTitle, p.Col)
		fmt.Fprintf(&b, "      Similarity: %.4f\n", p.Score)
	}

	if len(r.Samples) > 0 {
		fmt.Fprintln(&b, "\nSAMPLE MOVIES:")
		for _, m := range r.Samples {
			fmt.Fprintf(&b, "   Index %d: %s (ID: %d, %d tags)\n", m.Index, m.Title, m.MovieID, m.Tags)
		}
	}
	fmt.Fprintln(&b, "\n"+rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
