// Package interchange is the sole boundary between this engine's Block
// type and Apache Arrow: it converts a scalar Block to and from a
// two-column Arrow record ("time" int64 ms, "value" float64), for
// handing results to or ingesting them from Arrow-speaking neighbours.
// Arrow's manual retain/release ownership model does not compose with
// Block's generic, GC-managed immutability, so no other package under
// pkg/ uses Arrow types; the demo command in cmd/timedag-demo prints the
// records that ToArrow returns.
package interchange

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/tderrors"
)

// Schema is the fixed two-column layout every conversion in this package
// reads and writes.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "time", Type: arrow.PrimitiveTypes.Int64},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ToArrow converts b into a two-column Arrow record allocated from
// alloc. The caller owns the returned record and must call Release on it.
func ToArrow(alloc memory.Allocator, b block.Block[float64]) arrow.Record {
	timeBldr := array.NewInt64Builder(alloc)
	defer timeBldr.Release()
	valueBldr := array.NewFloat64Builder(alloc)
	defer valueBldr.Release()

	for _, t := range b.Times() {
		timeBldr.Append(int64(t))
	}
	for _, v := range b.Values() {
		valueBldr.Append(v)
	}

	timeArr := timeBldr.NewArray()
	defer timeArr.Release()
	valueArr := valueBldr.NewArray()
	defer valueArr.Release()

	return array.NewRecord(Schema, []arrow.Array{timeArr, valueArr}, int64(b.Len()))
}

// FromArrow converts an Arrow record with this package's Schema back
// into a Block[float64], validating strict knot-time monotonicity.
func FromArrow(rec arrow.Record) (block.Block[float64], error) {
	if rec.NumCols() != 2 {
		return block.Empty[float64](), tderrors.New(tderrors.TypeMismatch, "interchange.FromArrow",
			"expected 2 columns, got %d", rec.NumCols())
	}
	timeCol, ok := rec.Column(0).(*array.Int64)
	if !ok {
		return block.Empty[float64](), tderrors.New(tderrors.TypeMismatch, "interchange.FromArrow",
			"column 0 (time) must be int64, got %s", rec.Column(0).DataType())
	}
	valueCol, ok := rec.Column(1).(*array.Float64)
	if !ok {
		return block.Empty[float64](), tderrors.New(tderrors.TypeMismatch, "interchange.FromArrow",
			"column 1 (value) must be float64, got %s", rec.Column(1).DataType())
	}

	n := int(rec.NumRows())
	times := make([]block.Timestamp, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		if timeCol.IsNull(i) || valueCol.IsNull(i) {
			return block.Empty[float64](), tderrors.New(tderrors.EvaluationFailure, "interchange.FromArrow",
				"null value at row %d", i)
		}
		times[i] = block.Timestamp(timeCol.Value(i))
		values[i] = valueCol.Value(i)
	}

	b, err := block.New(times, values)
	if err != nil {
		return block.Empty[float64](), fmt.Errorf("interchange.FromArrow: %w", err)
	}
	return b, nil
}
