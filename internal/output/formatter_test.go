package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/vrcdecode/pkg/vrc"
)

func decodedSample(t *testing.T) vrc.Decoded {
	t.Helper()

	fields := make(vrc.FieldList, 70)
	fields[7] = "WBA0835"
	fields[12] = "530d"
	payload, err := vrc.EncodePayload(fields)
	require.NoError(t, err)

	d, err := vrc.Decode(payload)
	require.NoError(t, err)
	return d
}

func TestNewFormatter(t *testing.T) {
	t.Run("returns TableFormatter for table format", func(t *testing.T) {
		_, ok := NewFormatter(FormatTable).(*TableFormatter)
		assert.True(t, ok)
	})

	t.Run("returns JSONFormatter for json format", func(t *testing.T) {
		_, ok := NewFormatter(FormatJSON).(*JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("returns TableFormatter for unknown format", func(t *testing.T) {
		_, ok := NewFormatter("unknown").(*TableFormatter)
		assert.True(t, ok)
	})
}

func TestNewReport_Success(t *testing.T) {
	r := NewReport(decodedSample(t), nil, 3*time.Millisecond)

	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, vrc.ProvenanceDecompressed, r.Provenance)
	assert.Equal(t, 70, r.FieldCount)
	assert.Equal(t, "3ms", r.Duration)
	require.NotNil(t, r.Data)
	assert.Equal(t, "WBA0835", r.Data.Get("registrationNumber"))
	assert.Empty(t, r.ErrorKind)
}

func TestNewReport_Failure(t *testing.T) {
	_, err := vrc.Decode("A1 dGVzdA==")
	require.Error(t, err)

	r := NewReport(vrc.Decoded{}, err, time.Microsecond)
	assert.False(t, r.Success)
	assert.Nil(t, r.Data)
	assert.Equal(t, vrc.KindTruncatedPayload, r.ErrorKind)
	assert.Equal(t, err.Error(), r.Message)
}

func TestFromOutcomes(t *testing.T) {
	outcomes := []vrc.Outcome{
		{Index: 0, Decoded: decodedSample(t)},
		{Index: 1, Err: errors.New("boom")},
	}

	reports := FromOutcomes(outcomes)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Success)
	assert.Equal(t, vrc.KindUnknown, reports[1].ErrorKind)
	assert.Equal(t, 1, Failed(reports))
	assert.NotEqual(t, reports[0].ID, reports[1].ID)
}

func TestJSONFormatter_WriteReports(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}

	r := NewReport(decodedSample(t), nil, time.Millisecond)
	require.NoError(t, f.WriteReports(&buf, []Report{r}))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "decompressed", result["provenance"])
	data := result["data"].(map[string]any)
	assert.Equal(t, "530d", data["model"])
	assert.Len(t, data, vrc.SchemaSize)

	// attributes keep schema order
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"registrationNumber"`)), bytes.Index(buf.Bytes(), []byte(`"vehicleCardNumber"`)))

	buf.Reset()
	require.NoError(t, f.WriteReports(&buf, []Report{r, r}))
	var list []Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "WBA0835", list[1].Data.Get("registrationNumber"))
}

func TestTableFormatter_WriteReports(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}

	_, err := vrc.Decode("%%")
	require.Error(t, err)

	reports := []Report{
		NewReport(decodedSample(t), nil, time.Millisecond),
		NewReport(vrc.Decoded{}, err, time.Millisecond),
	}
	require.NoError(t, f.WriteReports(&buf, reports))

	out := buf.String()
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "ATTRIBUTE")
	assert.Contains(t, out, "registrationNumber")
	assert.Contains(t, out, "WBA0835")
	// 69 delimiters plus "WBA0835" and "530d"
	assert.Contains(t, out, "(80 characters)")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "InvalidEncoding")
	assert.Contains(t, out, "1 decoded, 1 failed")
}

func TestFormatters_WriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).WriteSchema(&buf, vrc.Schema()))
	assert.Contains(t, buf.String(), "POSITION")
	assert.Contains(t, buf.String(), "vehicleCardNumber")
	assert.Contains(t, buf.String(), "53 attributes, at least 66 fields required")

	buf.Reset()
	require.NoError(t, (&JSONFormatter{}).WriteSchema(&buf, vrc.Schema()))
	var entries []vrc.SchemaEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	assert.Equal(t, vrc.Schema(), entries)
}
