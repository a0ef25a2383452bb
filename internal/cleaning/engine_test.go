package cleaning

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacleanr/internal/table"
)

func newTestEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func load(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Load("input.csv", []byte(csv))
	require.NoError(t, err)
	return tbl
}

func column(t *testing.T, tbl *table.Table, name string) *table.Column {
	t.Helper()
	c, ok := tbl.Column(name)
	require.True(t, ok, "column %q not found in %v", name, tbl.Names())
	return c
}

func TestClean_RemoveDuplicates(t *testing.T) {
	in := load(t, "id,name\n1,a\n2,b\n3,c\n1,a\n4,d\n")

	out, report := newTestEngine().Clean(context.Background(), in, Options{RemoveDuplicates: true})

	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, 5, in.NumRows(), "input must not be modified")
	require.Len(t, report, 1)
	assert.Equal(t, StepResult{
		Step:       StepRemoveDuplicates,
		Status:     StatusSuccess,
		Message:    "removed 1 duplicate rows",
		RowsBefore: 5,
		RowsAfter:  4,
	}, report[0])
}

func TestClean_FillZero(t *testing.T) {
	in := load(t, "a,b,c\n1,,x\n,2.5,\n3,4.5,y\n")

	out, report := newTestEngine().Clean(context.Background(), in, Options{HandleMissing: MissingFillZero})

	for j, c := range out.Columns {
		orig := in.Columns[j]
		for i, v := range c.Values {
			require.NotNil(t, v)
			if orig.Values[i] == nil {
				f, ok := table.ToFloat(v)
				require.True(t, ok)
				assert.Zero(t, f)
			} else {
				assert.Equal(t, orig.Values[i], v)
			}
		}
	}
	step, ok := report.Step(StepHandleMissing)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, step.Status)
	assert.Equal(t, []string{"a", "b", "c"}, step.Columns)
}

func TestClean_MissingStrategies(t *testing.T) {
	in := load(t, "n,label\n1,x\n,y\n3,\n")
	e := newTestEngine()

	out, _ := e.Clean(context.Background(), in, Options{HandleMissing: MissingDrop})
	assert.Equal(t, 1, out.NumRows())

	out, _ = e.Clean(context.Background(), in, Options{HandleMissing: MissingFillMean})
	n := column(t, out, "n")
	assert.Equal(t, table.KindFloat, n.Kind)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, n.Values)
	assert.Nil(t, column(t, out, "label").Values[2], "text columns are not mean filled")

	out, report := e.Clean(context.Background(), in, Options{HandleMissing: MissingNone})
	assert.Empty(t, report)
	assert.Equal(t, in.Columns[0].Values, out.Columns[0].Values)
}

func TestClean_GenericPipeline(t *testing.T) {
	in := load(t, "Order Date,Customer Name!,Zeta\n2024/01/05,  ann ,1\nnot a date,bob,2\n")

	out, report := newTestEngine().Clean(context.Background(), in, Options{
		HarmonizeColumns: true,
		TrimWhitespace:   true,
		StandardizeDates: true,
		ReorderColumns:   true,
	})

	assert.Equal(t, []string{"customer_name", "order_date", "zeta"}, out.Names())
	assert.Equal(t, []any{"ann", "bob"}, column(t, out, "customer_name").Values)
	assert.Equal(t, []any{"2024-01-05", nil}, column(t, out, "order_date").Values)

	steps := make([]string, len(report))
	for i, s := range report {
		steps[i] = s.Step
		assert.Equal(t, StatusSuccess, s.Status, s.Step)
	}
	assert.Equal(t, []string{StepHarmonizeColumns, StepTrimWhitespace, StepStandardizeDates, StepReorderColumns}, steps)
}

func TestClean_ReportsSkippedSteps(t *testing.T) {
	in := load(t, "id,amount\n1,10\n")

	_, report := newTestEngine().Clean(context.Background(), in, Options{
		StandardizeDates:     true,
		StandardizeAddresses: true,
		DetectFraudPatterns:  true,
		AdjustSeasonality:    true,
		NormalizePromotions:  true,
	})

	require.Len(t, report, 5)
	assert.Equal(t, 5, report.Count(StatusSkipped))
	for _, s := range report {
		assert.NotEmpty(t, s.Message, s.Step)
		assert.Equal(t, s.RowsBefore, s.RowsAfter)
	}
}

func TestClean_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, report := newTestEngine().Clean(ctx, load(t, "a\n1\n1\n"), Options{RemoveDuplicates: true})
	assert.Equal(t, 2, out.NumRows())
	require.Len(t, report, 1)
	assert.Equal(t, StatusFailed, report[0].Status)
}

func TestRunStep_RecoversPanics(t *testing.T) {
	in := load(t, "a\n1\n")
	boom := step{name: "boom", run: func(t *table.Table, _ Options) (*table.Table, outcome, error) {
		t.Columns[0].Values[0] = "partial"
		panic("index out of range")
	}}

	next, _, err := newTestEngine().runStep(boom, in, Options{})
	require.Error(t, err)
	assert.Nil(t, next)
	assert.Contains(t, err.Error(), "index out of range")
	assert.Equal(t, int64(1), in.Columns[0].Values[0], "failed steps leave no partial changes")
}

func TestFromTags(t *testing.T) {
	o := FromTags([]string{"remove_duplicates", "handle_missing", "anonymize_data", "unknown"})
	assert.True(t, o.RemoveDuplicates)
	assert.True(t, o.AnonymizeData)
	assert.Equal(t, MissingFillMean, o.HandleMissing)
	assert.False(t, o.TrimWhitespace)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{HandleMissing: MissingDrop}.Validate())
	assert.Error(t, Options{HandleMissing: "interpolate"}.Validate())
}

func TestSteps_Order(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, 21)
	assert.Equal(t, StepRemoveDuplicates, steps[0])
	assert.Equal(t, StepReorderColumns, steps[5])
	assert.Equal(t, StepNormalizePromotions, steps[20])
}

func TestFillTimeGaps_SortsNullsLast(t *testing.T) {
	in := load(t, "sale_date,qty\n2024-03-02,2\nbad,9\n2024-03-01,1\n")

	out, report := newTestEngine().Clean(context.Background(), in, Options{FillTimeGaps: true})

	assert.Equal(t, StatusSuccess, report[0].Status)
	d := column(t, out, "sale_date")
	assert.Equal(t, table.KindTimestamp, d.Kind)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d.Values[0])
	assert.Nil(t, d.Values[2])
	assert.Equal(t, []any{int64(1), int64(2), int64(9)}, column(t, out, "qty").Values)
}
