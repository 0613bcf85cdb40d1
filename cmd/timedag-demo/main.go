// Command timedag-demo builds a small graph and evaluates it over a
// fixed window, printing the result as a table.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/snakch/timedag/pkg/align"
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/engine"
	"github.com/snakch/timedag/pkg/interchange"
	"github.com/snakch/timedag/pkg/ops"
	"github.com/snakch/timedag/pkg/source"
)

func main() {
	pipeline := flag.String("pipeline", "meanvar", "which demo graph to build: sum, meanvar, ema")
	window := flag.Int("window", 3, "window size for the fixed-window pipelines")
	flag.Parse()

	root, err := buildPipeline(*pipeline, *window)
	if err != nil {
		slog.Error("failed to build pipeline", "pipeline", *pipeline, "error", err)
		os.Exit(1)
	}

	tStart, tEnd := block.Timestamp(0), block.Timestamp(20*86400000)
	out, err := engine.Evaluate(root, tStart, tEnd)
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	rec := interchange.ToArrow(memory.DefaultAllocator, out)
	defer rec.Release()
	printTable(rec, os.Stdout)
}

func day(n int64) block.Timestamp { return block.Timestamp(n) * 86400000 }

func demoBlock(vals []float64, key string) ops.Node[float64] {
	knots := make([]block.Knot[float64], len(vals))
	for i, v := range vals {
		knots[i] = block.Knot[float64]{Time: day(int64(i + 1)), Value: v}
	}
	return ops.FromSourceOp[float64](source.NewBlockOp(knots, key))
}

func buildPipeline(name string, window int) (ops.Node[float64], error) {
	switch name {
	case "sum":
		x := demoBlock([]float64{1, 2, 3, 4, 5, 6}, "demo.sum.x")
		y := demoBlock([]float64{10, 20, 30, 40, 50, 60}, "demo.sum.y")
		return ops.Add(x, y, align.UNION), nil
	case "meanvar":
		x := demoBlock([]float64{2, 4, 4, 4, 5, 5, 7, 9}, "demo.meanvar.x")
		return ops.SumWindow(x, window)
	case "ema":
		x := demoBlock([]float64{10, 12, 11, 15, 9, 20, 18, 17}, "demo.ema.x")
		return ops.EMA(x, 0.4)
	default:
		return ops.Node[float64]{}, fmt.Errorf("unknown pipeline %q (want sum, meanvar or ema)", name)
	}
}

// printTable renders rec as a column-width-aligned table, mirroring the
// row-by-row formatting the runtime uses for console output.
func printTable(rec arrow.Record, w *os.File) {
	schema := rec.Schema()
	numCols := int(rec.NumCols())
	numRows := int(rec.NumRows())

	widths := make([]int, numCols)
	for i := 0; i < numCols; i++ {
		widths[i] = len(schema.Field(i).Name)
	}
	rows := make([][]string, numRows)
	for r := 0; r < numRows; r++ {
		row := make([]string, numCols)
		for c := 0; c < numCols; c++ {
			row[c] = formatValue(rec.Column(c), r)
			if len(row[c]) > widths[c] {
				widths[c] = len(row[c])
			}
		}
		rows[r] = row
	}

	printRow(w, headerRow(schema), widths)
	printSeparator(w, widths)
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func headerRow(schema *arrow.Schema) []string {
	names := make([]string, schema.NumFields())
	for i := range names {
		names[i] = schema.Field(i).Name
	}
	return names
}

func printRow(w *os.File, cells []string, widths []int) {
	var sb strings.Builder
	sb.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(padRight(c, widths[i]))
	}
	sb.WriteString(" |")
	fmt.Fprintln(w, sb.String())
}

func printSeparator(w *os.File, widths []int) {
	var sb strings.Builder
	sb.WriteString("|-")
	for i, width := range widths {
		if i > 0 {
			sb.WriteString("-|-")
		}
		sb.WriteString(strings.Repeat("-", width))
	}
	sb.WriteString("-|")
	fmt.Fprintln(w, sb.String())
}

func formatValue(arr arrow.Array, row int) string {
	if arr.IsNull(row) {
		return "NULL"
	}
	switch a := arr.(type) {
	case *array.Int64:
		return fmt.Sprintf("%d", a.Value(row))
	case *array.Float64:
		return fmt.Sprintf("%.4f", a.Value(row))
	default:
		return "?"
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
