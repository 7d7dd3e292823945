package vrc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ib-77/vrcdecode/pkg/ucl"
)

func sampleFields() FieldList {
	return fieldsWith(70, map[int]string{
		0:  "AUA",
		7:  "WBA0835",
		8:  "BMW",
		12: "530d",
		13: "WBAFW51090C123456",
		41: "1755",
		49: "160",
		50: "ON",
		56: "2008",
		59: "AAA0000000",
	})
}

func TestMapRecord_Scenario(t *testing.T) {
	t.Parallel()

	text := JoinFields(fieldsWith(70, map[int]string{7: "WBA0835", 12: "530d"}))
	rec := MapRecord(SplitFields(text))

	assert.Equal(t, SchemaSize, rec.Len())
	assert.Equal(t, "WBA0835", rec.Get("registrationNumber"))
	assert.Equal(t, "530d", rec.Get("model"))

	empty := 0
	for name, v := range rec.All() {
		if name != "registrationNumber" && name != "model" {
			assert.Empty(t, v, name)
			empty++
		}
	}
	assert.Equal(t, 51, empty)
}

func TestMapRecord_ShortListIsLenient(t *testing.T) {
	t.Parallel()

	fields := fieldsWith(60, map[int]string{7: "WBA0835", 59: "last"})
	rec := MapRecord(fields)
	assert.Equal(t, "WBA0835", rec.Get("registrationNumber"))
	assert.Equal(t, "last", rec.Get("vehicleCardNumber"))

	rec = MapRecord(FieldList{"only"})
	assert.Len(t, rec.Map(), SchemaSize)
	for _, v := range rec.Map() {
		assert.Empty(t, v)
	}
}

func TestSchema(t *testing.T) {
	t.Parallel()

	s := Schema()
	require.Len(t, s, SchemaSize)
	assert.Equal(t, SchemaEntry{Position: 7, Name: "registrationNumber"}, s[0])
	assert.Equal(t, SchemaEntry{Position: 59, Name: "vehicleCardNumber"}, s[len(s)-1])

	seen := map[string]bool{}
	for i, e := range s {
		assert.False(t, seen[e.Name], "duplicate %s", e.Name)
		seen[e.Name] = true
		assert.Equal(t, 7+i, e.Position)
	}

	pos, ok := PositionOf("fuelType")
	assert.True(t, ok)
	assert.Equal(t, 50, pos)
	_, ok = PositionOf("colour")
	assert.False(t, ok)

	// callers cannot alter the table
	s[0].Name = "changed"
	assert.Equal(t, "registrationNumber", Schema()[0].Name)
}

func TestVehicleRecord_JSON(t *testing.T) {
	t.Parallel()

	rec := MapRecord(sampleFields())
	data, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"registrationNumber":"WBA0835","brand":"BMW",`)

	var back VehicleRecord
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, rec, back)
}

func TestDecode_Decompressed(t *testing.T) {
	t.Parallel()

	payload, err := EncodePayload(sampleFields())
	require.NoError(t, err)

	d, err := Decode("Aztec " + payload)
	require.NoError(t, err)

	assert.Equal(t, ProvenanceDecompressed, d.Provenance)
	assert.False(t, d.InvalidText)
	assert.Empty(t, d.Warnings)
	assert.Equal(t, 70, d.FieldCount)
	assert.Equal(t, JoinFields(sampleFields()), d.Text)
	assert.Equal(t, "WBA0835", d.Record.Get("registrationNumber"))
	assert.Equal(t, "530d", d.Record.Get("model"))
	assert.Equal(t, "WBAFW51090C123456", d.Record.Get("vin"))
	assert.Equal(t, "1755", d.Record.Get("vehicleWeight"))
	assert.Equal(t, "160", d.Record.Get("enginePower"))
	assert.Equal(t, "ON", d.Record.Get("fuelType"))
	assert.Equal(t, "2008", d.Record.Get("productionYear"))
}

func TestDecode_FallbackRaw(t *testing.T) {
	t.Parallel()

	text := JoinFields(fieldsWith(70, map[int]string{7: "WBA0835", 12: "530d"}))
	d, err := Decode(rawPayload(t, text))
	require.NoError(t, err)

	assert.Equal(t, ProvenanceFallbackRaw, d.Provenance)
	assert.Equal(t, "WBA0835", d.Record.Get("registrationNumber"))
	assert.Equal(t, "530d", d.Record.Get("model"))
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, KindDecompressionFailed, KindOf(d.Warnings[0]))
	assert.True(t, errors.Is(d.Warnings[0], ucl.ErrLookbehindOverrun))
}

func TestDecode_InvalidTextIsAnnotation(t *testing.T) {
	t.Parallel()

	text := JoinFields(fieldsWith(66, map[int]string{7: "WBA0835"}))
	d, err := Decode(rawPayload(t, text, 0x41))
	require.NoError(t, err)

	assert.True(t, d.InvalidText)
	assert.Equal(t, ProvenanceFallbackRaw, d.Provenance)
	assert.Equal(t, "WBA0835", d.Record.Get("registrationNumber"))
	assert.Equal(t, "�", SplitFields(d.Text)[65])

	kinds := []Kind{}
	for _, w := range d.Warnings {
		kinds = append(kinds, KindOf(w))
	}
	assert.Equal(t, []Kind{KindDecompressionFailed, KindInvalidText}, kinds)
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		kind  Kind
		stage Stage
		count int
	}{
		{name: "scenario truncated", in: "A1 dGVzdA==", kind: KindTruncatedPayload, stage: StageFrameStripping, count: 4},
		{name: "empty", in: "", kind: KindTruncatedPayload, stage: StageFrameStripping, count: 0},
		{name: "not base64", in: "QR %%%%", kind: KindInvalidEncoding, stage: StageDecoding},
		{name: "fallback unusable", in: "AAAAAEE=", kind: KindDecompressionFailed, stage: StageDecompressing},
		{name: "too few fields", in: rawPayload(t, "|a|b|c"), kind: KindInsufficientFields, stage: StageValidating, count: 4},
		{name: "65 fields", in: rawPayload(t, JoinFields(make(FieldList, 65))), kind: KindInsufficientFields, stage: StageValidating, count: 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de), "got %T", err)
			assert.Equal(t, tt.kind, de.Kind)
			assert.Equal(t, tt.stage, de.Stage)
			assert.Equal(t, tt.count, de.Count)
		})
	}
}

func TestDecode_ExactlyMinFields(t *testing.T) {
	t.Parallel()

	payload, err := EncodePayload(make(FieldList, MinFields))
	require.NoError(t, err)

	d, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, MinFields, d.FieldCount)
}

func TestDecode_Idempotent(t *testing.T) {
	t.Parallel()

	payload, err := EncodePayload(sampleFields())
	require.NoError(t, err)

	for _, in := range []string{payload, rawPayload(t, JoinFields(sampleFields())), "A1 dGVzdA==", "%%"} {
		d1, err1 := Decode(in)
		d2, err2 := Decode(in)
		assert.Equal(t, d1, d2)
		assert.Equal(t, err1, err2)
	}
}

func TestDecode_NoDecompression(t *testing.T) {
	t.Parallel()

	// a stored NRV2E stream is not text, so the forced fallback cannot find
	// 66 fields in it
	payload, err := EncodePayload(sampleFields())
	require.NoError(t, err)

	dec := NewDecoder(WithDecompressor(NoDecompression()))
	_, err = dec.Decode(context.Background(), payload)
	assert.True(t, errors.Is(err, ErrInsufficientFields), "got %v", err)

	d, err := dec.Decode(context.Background(), rawPayload(t, JoinFields(sampleFields())))
	require.NoError(t, err)
	assert.Equal(t, ProvenanceFallbackRaw, d.Provenance)
	assert.True(t, errors.Is(d.Warnings[0], ErrDecompressionDisabled))
}

func TestDecode_OutputLimitFallsBack(t *testing.T) {
	t.Parallel()

	payload, err := EncodePayload(sampleFields())
	require.NoError(t, err)

	dec := NewDecoder(WithDecompressor(ucl.NRV2E{MaxOutput: 16}))
	_, err = dec.Decode(context.Background(), payload)
	require.Error(t, err)
	assert.Equal(t, KindInsufficientFields, KindOf(err))
}

type recordingObserver struct {
	mu    sync.Mutex
	kinds []Kind
}

func (o *recordingObserver) ObserveDecode(_ Decoded, err error, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, KindOf(err))
}

func TestDecoder_ObserverAndLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	obs := &recordingObserver{}
	dec := NewDecoder(WithLogger(zap.New(core)), WithObserver(obs))

	ctx := context.Background()
	_, err := dec.DecodeCapture(ctx, RawCapture{
		Text:        rawPayload(t, JoinFields(sampleFields())),
		FormatLabel: "Aztec",
		Confidence:  97,
	})
	require.NoError(t, err)
	_, err = dec.Decode(ctx, "A1 dGVzdA==")
	require.Error(t, err)

	assert.Equal(t, []Kind{KindNone, KindTruncatedPayload}, obs.kinds)

	assert.Equal(t, 1, logs.FilterMessage("decoding capture").Len())
	warn := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warn, 1)
	assert.Equal(t, "decompression failed, using raw payload text", warn[0].Message)

	failed := logs.FilterMessage("decode failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "frame-stripping", failed[0].ContextMap()["stage"])
	assert.Equal(t, "TruncatedPayload", failed[0].ContextMap()["kind"])
}

func TestDecodeResult_Railway(t *testing.T) {
	t.Parallel()

	dec := NewDecoder()
	res := dec.DecodeResult(context.Background(), "%%")
	assert.True(t, res.IsFailure())
	assert.True(t, errors.Is(res.Err(), ErrInvalidEncoding))

	payload, err := EncodePayload(sampleFields())
	require.NoError(t, err)
	res = dec.DecodeResult(context.Background(), payload)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "BMW", res.Result().Record.Get("brand"))
}
