// Package report persists conformance results as an Arrow IPC file so
// runs can be compared and aggregated with standard columnar tooling.
package report

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/bayo-ibm/fms-model-optimizer/internal/conformance"
	"github.com/bayo-ibm/fms-model-optimizer/internal/dtype"
)

// Schema is the column layout of a results file. Matmul rows leave the
// feature columns zero; linear rows leave dim and dtype empty.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "kernel", Type: arrow.BinaryTypes.String},
		{Name: "dtype", Type: arrow.BinaryTypes.String},
		{Name: "dim", Type: arrow.PrimitiveTypes.Int32},
		{Name: "feat_in", Type: arrow.PrimitiveTypes.Int32},
		{Name: "feat_out", Type: arrow.PrimitiveTypes.Int32},
		{Name: "trunc_bits", Type: arrow.PrimitiveTypes.Int32},
		{Name: "rel_error", Type: arrow.PrimitiveTypes.Float64},
		{Name: "tolerance", Type: arrow.PrimitiveTypes.Float64},
		{Name: "outcome", Type: arrow.BinaryTypes.String},
		{Name: "error", Type: arrow.BinaryTypes.String},
	}, nil)
}

// BuildRecord converts results into a single Arrow record. The caller
// must Release the returned record.
func BuildRecord(results []conformance.Result) arrow.Record {
	schema := Schema()
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	kernel := builder.Field(0).(*array.StringBuilder)
	dtypeCol := builder.Field(1).(*array.StringBuilder)
	dim := builder.Field(2).(*array.Int32Builder)
	featIn := builder.Field(3).(*array.Int32Builder)
	featOut := builder.Field(4).(*array.Int32Builder)
	truncBits := builder.Field(5).(*array.Int32Builder)
	relErr := builder.Field(6).(*array.Float64Builder)
	tolerance := builder.Field(7).(*array.Float64Builder)
	outcome := builder.Field(8).(*array.StringBuilder)
	errCol := builder.Field(9).(*array.StringBuilder)

	for _, r := range results {
		kernel.Append(r.Kernel)
		dtypeCol.Append(r.DType.String())
		dim.Append(int32(r.Dim))
		featIn.Append(int32(r.FeatIn))
		featOut.Append(int32(r.FeatOut))
		truncBits.Append(int32(r.TruncBits))
		relErr.Append(r.RelErr)
		tolerance.Append(r.Tolerance)
		outcome.Append(r.Outcome.String())
		if r.Err != nil {
			errCol.Append(r.Err.Error())
		} else {
			errCol.Append("")
		}
	}
	return builder.NewRecord()
}

// Write serializes results to path in the Arrow IPC file format.
func Write(path string, results []conformance.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	record := BuildRecord(results)
	defer record.Release()

	writer, err := ipc.NewFileWriter(f, ipc.WithSchema(record.Schema()))
	if err != nil {
		return fmt.Errorf("failed to create IPC writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close IPC writer: %w", err)
	}
	return nil
}

// Read loads a results file back into memory. Used by tests and by
// tooling that diffs two runs.
func Read(path string) ([]conformance.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer f.Close()

	reader, err := ipc.NewFileReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC reader: %w", err)
	}
	defer reader.Close()

	var results []conformance.Result
	for i := 0; i < reader.NumRecords(); i++ {
		record, err := reader.Record(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		results = append(results, rowsOf(record)...)
	}
	return results, nil
}

func rowsOf(record arrow.Record) []conformance.Result {
	kernel := record.Column(0).(*array.String)
	dtypeCol := record.Column(1).(*array.String)
	dim := record.Column(2).(*array.Int32)
	featIn := record.Column(3).(*array.Int32)
	featOut := record.Column(4).(*array.Int32)
	truncBits := record.Column(5).(*array.Int32)
	relErr := record.Column(6).(*array.Float64)
	tolerance := record.Column(7).(*array.Float64)
	outcome := record.Column(8).(*array.String)
	errCol := record.Column(9).(*array.String)

	results := make([]conformance.Result, record.NumRows())
	for i := range results {
		r := conformance.Result{
			Kernel:    kernel.Value(i),
			Dim:       int(dim.Value(i)),
			FeatIn:    int(featIn.Value(i)),
			FeatOut:   int(featOut.Value(i)),
			TruncBits: int(truncBits.Value(i)),
			RelErr:    relErr.Value(i),
			Tolerance: tolerance.Value(i),
		}
		r.DType = parseDType(dtypeCol.Value(i))
		r.Outcome = parseOutcome(outcome.Value(i))
		if msg := errCol.Value(i); msg != "" {
			r.Err = fmt.Errorf("%s", msg)
		}
		results[i] = r
	}
	return results
}

func parseDType(s string) dtype.DataType {
	for _, d := range []dtype.DataType{dtype.F32, dtype.F16, dtype.BF16, dtype.FP8E4M3, dtype.FP8E5M2, dtype.I8} {
		if d.String() == s {
			return d
		}
	}
	return dtype.F32
}

func parseOutcome(s string) conformance.Outcome {
	switch s {
	case "fail":
		return conformance.OutcomeFail
	case "skip":
		return conformance.OutcomeSkip
	default:
		return conformance.OutcomePass
	}
}
