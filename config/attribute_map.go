package config

import "fmt"

// An AttributeMap is a convenience wrapper for pulling typed values out of a
// backend's free form attributes.
type AttributeMap map[string]interface{}

// Has returns whether or not the given name is in the map.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Bool attempts to return a boolean present in the map with
// the given name; returns the given default otherwise.
func (am AttributeMap) Bool(name string, def bool) bool {
	if am == nil {
		return def
	}
	x, has := am[name]
	if !has {
		return def
	}
	if v, ok := x.(bool); ok {
		return v
	}
	panic(fmt.Sprintf("wanted a bool for (%s) but got (%v) %T", name, x, x))
}

// Int attempts to return an integer present in the map with
// the given name; returns the given default otherwise. JSON decodes numbers as
// float64, so whole floats count.
func (am AttributeMap) Int(name string, def int) int {
	if am == nil {
		return def
	}
	x, has := am[name]
	if !has {
		return def
	}
	if v, ok := x.(int); ok {
		return v
	}
	if v, ok := x.(float64); ok && v == float64(int64(v)) {
		return int(v)
	}
	panic(fmt.Sprintf("wanted an int for (%s) but got (%v) %T", name, x, x))
}

// Float64 attempts to return a float64 present in the map with
// the given name; returns the given default otherwise.
func (am AttributeMap) Float64(name string, def float64) float64 {
	if am == nil {
		return def
	}
	x, has := am[name]
	if !has {
		return def
	}
	if v, ok := x.(float64); ok {
		return v
	}
	if v, ok := x.(int); ok {
		return float64(v)
	}
	panic(fmt.Sprintf("wanted a float64 for (%s) but got (%v) %T", name, x, x))
}

// String attempts to return a string present in the map with
// the given name; returns an empty string otherwise.
func (am AttributeMap) String(name string) string {
	if am == nil {
		return ""
	}
	x := am[name]
	if x == nil {
		return ""
	}
	if s, ok := x.(string); ok {
		return s
	}
	panic(fmt.Sprintf("wanted a string for (%s) but got (%v) %T", name, x, x))
}

// IntSlice attempts to return a slice of ints present in the map with
// the given name; returns an empty slice otherwise.
func (am AttributeMap) IntSlice(name string) []int {
	if am == nil {
		return []int{}
	}
	x := am[name]
	if x == nil {
		return []int{}
	}
	if slice, ok := x.([]interface{}); ok {
		ints := make([]int, 0, len(slice))
		for _, v := range slice {
			switch vv := v.(type) {
			case int:
				ints = append(ints, vv)
			case float64:
				if vv != float64(int64(vv)) {
					panic(fmt.Sprintf("values in (%s) need to be ints but got (%v) %T", name, v, v))
				}
				ints = append(ints, int(vv))
			default:
				panic(fmt.Sprintf("values in (%s) need to be ints but got (%v) %T", name, v, v))
			}
		}
		return ints
	}
	panic(fmt.Sprintf("wanted a slice of ints for (%s) but got (%v) %T", name, x, x))
}

// Float64Slice attempts to return a slice of float64s present in the map with
// the given name; returns an empty slice otherwise.
func (am AttributeMap) Float64Slice(name string) []float64 {
	if am == nil {
		return []float64{}
	}
	x := am[name]
	if x == nil {
		return []float64{}
	}
	if slice, ok := x.([]interface{}); ok {
		floats := make([]float64, 0, len(slice))
		for _, v := range slice {
			switch vv := v.(type) {
			case float64:
				floats = append(floats, vv)
			case int:
				floats = append(floats, float64(vv))
			default:
				panic(fmt.Sprintf("values in (%s) need to be float64s but got (%v) %T", name, v, v))
			}
		}
		return floats
	}
	panic(fmt.Sprintf("wanted a slice of float64s for (%s) but got (%v) %T", name, x, x))
}

// StringSlice attempts to return a slice of strings present in the map with
// the given name; returns an empty slice otherwise.
func (am AttributeMap) StringSlice(name string) []string {
	if am == nil {
		return []string{}
	}
	x := am[name]
	if x == nil {
		return []string{}
	}
	if slice, ok := x.([]string); ok {
		return slice
	}
	if slice, ok := x.([]interface{}); ok {
		strs := make([]string, 0, len(slice))
		for _, v := range slice {
			s, ok := v.(string)
			if !ok {
				panic(fmt.Sprintf("values in (%s) need to be strings but got (%v) %T", name, v, v))
			}
			strs = append(strs, s)
		}
		return strs
	}
	panic(fmt.Sprintf("wanted a slice of strings for (%s) but got (%v) %T", name, x, x))
}
