package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

func sampleVerdicts() []entity.Verdict {
	return []entity.Verdict{
		{Invoice: "a", Status: constants.StatusPass},
		{Invoice: "b", Status: constants.StatusMismatch, Mismatches: []entity.MismatchEntry{
			{Field: "total", Expected: "$100.00", Actual: "100.00"},
			{Field: "tax", Expected: "5", Actual: "N/A"},
			{Field: "seller_name", Expected: "Acme", Actual: "Acme Co"},
		}},
		{Invoice: "c", Kind: constants.KindMissingOutput},
		{Invoice: "d", Status: constants.StatusMismatch, Kind: constants.KindDegradedMismatch},
		{Invoice: "e", Kind: constants.KindJSONSyntax, Detail: "{oops"},
		{Invoice: "f", Kind: constants.KindInvalidStatus, Detail: "Maybe"},
		{Invoice: "g", Kind: constants.KindTransport, Detail: "transport: non-2xx status: 503"},
		{Invoice: "h", Kind: constants.KindInvalidOutput, Detail: "decode record: bad"},
	}
}

func TestAggregator_Rows(t *testing.T) {
	// Given one verdict of every shape
	a := NewAggregator(nil)
	for _, v := range sampleVerdicts() {
		a.Add(v)
	}

	// Then rows follow insertion order with one row per mismatch
	want := [][]string{
		Header,
		{"a", "Pass", "-", "-", "-"},
		{"b", "Mismatch", "total", "$100.00", "100.00"},
		{"b", "Mismatch", "tax", "5", "N/A"},
		{"b", "Mismatch", "seller_name", "Acme", "Acme Co"},
		{"c", "Missing Output", "-", "-", "-"},
		{"d", "Mismatch", "Unknown", "model reported a mismatch but did not provide details", "-"},
		{"e", "Error", "Invalid JSON Verdict", "{oops", "-"},
		{"f", "Error", "Invalid Status", "model returned status: Maybe", "-"},
		{"g", "Error", "API or other Error", "transport: non-2xx status: 503", "-"},
		{"h", "Error", "Invalid Output", "decode record: bad", "-"},
	}
	assert.Equal(t, want, a.Table())
	assert.Len(t, a.Rows(), 10)
	assert.Equal(t, Counts{Pass: 1, Mismatch: 2, Missing: 1, Error: 4}, a.Counts())
	assert.Equal(t, 8, a.Counts().Total())
}

func TestRowsFor(t *testing.T) {
	t.Run("pass contributes one placeholder row", func(t *testing.T) {
		rows := RowsFor(entity.Verdict{Invoice: "x", Status: constants.StatusPass})
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"x", "Pass", "-", "-", "-"}, rows[0].Cells())
	})

	t.Run("n mismatches give n rows", func(t *testing.T) {
		v := entity.Verdict{Invoice: "x", Status: constants.StatusMismatch}
		for _, f := range []string{"a", "b", "c", "d"} {
			v.Mismatches = append(v.Mismatches, entity.MismatchEntry{Field: f, Expected: "1", Actual: "2"})
		}
		rows := RowsFor(v)
		require.Len(t, rows, 4)
		for _, r := range rows {
			assert.Equal(t, "x", r.Invoice)
		}
	})
}

func TestWrite_XLSXRoundTrip(t *testing.T) {
	// Given aggregated rows
	a := NewAggregator(nil)
	for _, v := range sampleVerdicts() {
		a.Add(v)
	}
	path := filepath.Join(t.TempDir(), "reports", "evaluation_report.xlsx")

	// When writing the workbook
	require.NoError(t, Write(path, a.Rows(), nil))

	// Then reading it back gives the same table
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, a.Table(), got)
}

func TestWrite_CSV(t *testing.T) {
	a := NewAggregator(nil)
	a.Add(entity.Verdict{Invoice: "b", Status: constants.StatusMismatch, Mismatches: []entity.MismatchEntry{
		{Field: "total", Expected: "1,000.00", Actual: "1000.00"},
	}})
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, Write(path, a.Rows(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, a.Table(), got)
}

func TestWrite_EmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, Write(path, nil, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, got)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		prefix string
		ok     bool
	}{
		{"s3://reports/invoices/2024", "reports", "invoices/2024", true},
		{"s3://reports", "reports", "", true},
		{"s3://reports/", "reports", "", true},
		{"https://reports/x", "", "", false},
		{"s3:///x", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, prefix, err := ParseS3URI(tt.uri)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

func TestPublisher_Publish(t *testing.T) {
	// Given a written report and a fake S3 client
	path := filepath.Join(t.TempDir(), "evaluation_report.csv")
	require.NoError(t, os.WriteFile(path, []byte("Invoice\n"), 0o644))
	putter := &fakePutter{}
	p, err := NewPublisher(putter, "s3://audit-bucket/runs/42", nil)
	require.NoError(t, err)

	// When publishing
	loc, err := p.Publish(context.Background(), path)

	// Then the object lands under the prefix
	require.NoError(t, err)
	assert.Equal(t, "s3://audit-bucket/runs/42/evaluation_report.csv", loc)
	assert.Equal(t, "audit-bucket", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "runs/42/evaluation_report.csv", aws.ToString(putter.input.Key))
	assert.Equal(t, "text/csv", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("Invoice\n"), putter.body)

	t.Run("upload failure", func(t *testing.T) {
		putter.err = errors.New("access denied")
		_, err := p.Publish(context.Background(), path)
		require.ErrorContains(t, err, "access denied")
	})
}
