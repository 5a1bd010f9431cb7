package anna

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects float values given either as repeated flags or
// as a comma separated list. The first call to Set drops the defaults.
// It satisfies both flag.Value and pflag.Value.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

func (f *FloatArrayFlags) Set(valueStr string) error {
	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	for _, field := range strings.Split(valueStr, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", field, err)
		}
		f.Array = append(f.Array, value)
	}
	return nil
}

func (f *FloatArrayFlags) String() string {
	strs := make([]string, len(f.Array))
	for i, v := range f.Array {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(strs, ",")
}

func (f *FloatArrayFlags) Type() string { return "floats" }

// Increasing reports whether the values are strictly increasing, as bin
// edges must be.
func (f *FloatArrayFlags) Increasing() bool {
	for i := 1; i < len(f.Array); i++ {
		if f.Array[i] <= f.Array[i-1] {
			return false
		}
	}
	return true
}
