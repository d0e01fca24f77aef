package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// FieldValue is a float64 that encodes NaN as JSON null, since JSON has no
// representation for missing numbers.
type FieldValue float64

// Missing reports whether the value is NaN.
func (v FieldValue) Missing() bool { return math.IsNaN(float64(v)) }

func (v FieldValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = FieldValue(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = FieldValue(f)
	return nil
}

func toFieldValues(src []float64) []FieldValue {
	out := make([]FieldValue, len(src))
	for i, f := range src {
		out[i] = FieldValue(f)
	}
	return out
}
