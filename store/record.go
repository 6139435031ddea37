package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// IDKey is the reserved record field holding the record id.
const IDKey = "id"

// Record is one JSON object of a resource collection.
type Record map[string]any

// ID returns the record id in string form. Numbers are formatted the way
// they read in JSON, so 1, 1.0 and "1" all yield "1". ok is false when the
// record has no usable id.
func (r Record) ID() (string, bool) {
	v, present := r[IDKey]
	if !present {
		return "", false
	}
	return idString(v)
}

// MatchesID reports whether the record id, in string form, equals id.
func (r Record) MatchesID(id string) bool {
	got, ok := r.ID()
	return ok && got == id
}

func idString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return formatFloat(f), true
		}
		return t.String(), true
	case float64:
		return formatFloat(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numericID returns the id as a number. Numeric strings count; anything else
// does not.
func numericID(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NextID returns max(numeric ids of records, 0) + 1. Fractional maxima are
// truncated before the increment. The result is an int64 unless the maximum
// does not fit one, in which case it is the float64 sum.
func NextID(records []Record) any {
	var highest float64
	for _, r := range records {
		if f, ok := numericID(r[IDKey]); ok && f > highest {
			highest = f
		}
	}
	if highest >= float64(math.MaxInt64) {
		return highest + 1
	}
	return int64(highest) + 1
}

// DecodeRecord parses a single JSON object. Numbers are kept as json.Number
// so they round-trip to disk unchanged.
func DecodeRecord(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", jsonKind(v))
	}
	return Record(obj), nil
}

// DecodeRecords parses a JSON array of objects.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, fmt.Errorf("expected a JSON array, got null")
	}
	return records, nil
}

// EncodeRecords renders records as a two-space indented JSON array.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
