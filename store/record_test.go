package store

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	tests := []struct {
		name string
		id   any
		want string
		ok   bool
	}{
		{"int", 1, "1", true},
		{"int64", int64(42), "42", true},
		{"float", float64(3), "3", true},
		{"fraction", 1.5, "1.5", true},
		{"number", json.Number("7"), "7", true},
		{"number with decimals", json.Number("7.0"), "7", true},
		{"string", "abc", "abc", true},
		{"numeric string", "007", "007", true},
		{"bool", true, "true", true},
		{"null", nil, "", false},
		{"object", map[string]any{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Record{IDKey: tt.id}.ID()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Record{"name": "no id"}.ID()
	assert.False(t, ok)
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    any
	}{
		{"empty", nil, int64(1)},
		{"sequential", []Record{{"id": 1}, {"id": 2}}, int64(3)},
		{"gap", []Record{{"id": 10}, {"id": 2}}, int64(11)},
		{"numeric string", []Record{{"id": "5"}}, int64(6)},
		{"json number", []Record{{"id": json.Number("9")}}, int64(10)},
		{"non numeric ignored", []Record{{"id": "abc"}, {"id": 3}}, int64(4)},
		{"missing ids", []Record{{"name": "x"}}, int64(1)},
		{"negative", []Record{{"id": -4}}, int64(1)},
		{"fraction truncated", []Record{{"id": 2.5}}, int64(3)},
		{"max int64 string", []Record{{"id": "9223372036854775807"}}, float64(9223372036854775807) + 1},
		{"beyond int64", []Record{{"id": 1e19}}, float64(1e19) + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.records))
		})
	}
}

func TestNextIDNeverWraps(t *testing.T) {
	for _, id := range []any{"9223372036854775807", 1e19, json.Number("1e300")} {
		next := NextID([]Record{{"id": id}})
		f, ok := numericID(next)
		require.True(t, ok, "%v", next)
		assert.Positive(t, f, "next id after %v", id)
	}
}

func TestEncodeRecordsKeepsHTML(t *testing.T) {
	b, err := EncodeRecords([]Record{{"name": "<b>&"}})
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"name\": \"<b>&\"\n  }\n]", string(b))
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord(strings.NewReader(`{"id": 3, "name": "Ann"}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("3"), rec["id"])
	assert.Equal(t, "Ann", rec["name"])

	for _, body := range []string{`[1, 2]`, `"text"`, `null`, `{"a": 1`, `{"a": 1} {"b": 2}`} {
		_, err := DecodeRecord(strings.NewReader(body))
		assert.Error(t, err, body)
	}
}

func TestDecodeRecords(t *testing.T) {
	records, err := DecodeRecords([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = DecodeRecords([]byte(`null`))
	assert.Error(t, err)
	_, err = DecodeRecords([]byte(`{"id": 1}`))
	assert.Error(t, err)
}
