package netcdf

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

// array is a decoded variable: row-major float64 values plus their shape.
type array struct {
	Shape []int
	Data  []float64
}

// flatten converts the nested typed slices returned by the reader into a
// flat float64 slice. Scalars decode to a zero-rank array.
func flatten(values any) (array, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return array{}, fmt.Errorf("%w: nil values", domain.ErrUnsupportedType)
	}
	if rv.Kind() != reflect.Slice {
		f, ok := toFloat(rv)
		if !ok {
			return array{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, rv.Type())
		}
		return array{Data: []float64{f}}, nil
	}

	shape := shapeOf(rv)
	n := 1
	for _, d := range shape {
		n *= d
	}
	out := make([]float64, 0, n)
	if err := appendValues(&out, rv, shape, 0); err != nil {
		return array{}, err
	}
	return array{Shape: shape, Data: out}, nil
}

func shapeOf(rv reflect.Value) []int {
	var shape []int
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
		if rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
	}
	return shape
}

func appendValues(out *[]float64, rv reflect.Value, shape []int, depth int) error {
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice || rv.Len() != shape[depth] {
		return fmt.Errorf("%w: ragged array at dimension %d", domain.ErrShapeMismatch, depth)
	}
	if depth == len(shape)-1 {
		for i := range rv.Len() {
			f, ok := toFloat(rv.Index(i))
			if !ok {
				return fmt.Errorf("%w: element type %s", domain.ErrUnsupportedType, rv.Type().Elem())
			}
			*out = append(*out, f)
		}
		return nil
	}
	for i := range rv.Len() {
		if err := appendValues(out, rv.Index(i), shape, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Interface:
		return toFloat(v.Elem())
	default:
		return 0, false
	}
}

// packing holds the CF attributes that affect stored values.
type packing struct {
	fill   []float64
	scale  float64
	offset float64
}

func readPacking(attrs api.AttributeMap) packing {
	p := packing{scale: 1}
	p.fill = append(p.fill, attrFloats(attrs, "_FillValue")...)
	p.fill = append(p.fill, attrFloats(attrs, "missing_value")...)
	if v := attrFloats(attrs, "scale_factor"); len(v) > 0 {
		p.scale = v[0]
	}
	if v := attrFloats(attrs, "add_offset"); len(v) > 0 {
		p.offset = v[0]
	}
	return p
}

// unpack masks fill values and applies scale_factor and add_offset in place.
func (p packing) unpack(data []float64) {
	for k, v := range data {
		if p.isFill(v) {
			data[k] = domain.Missing
			continue
		}
		data[k] = v*p.scale + p.offset
	}
}

func (p packing) isFill(v float64) bool {
	for _, f := range p.fill {
		if v == f {
			return true
		}
	}
	return false
}

func attrFloats(attrs api.AttributeMap, key string) []float64 {
	if attrs == nil {
		return nil
	}
	v, ok := attrs.Get(key)
	if !ok {
		return nil
	}
	arr, err := flatten(v)
	if err != nil {
		return nil
	}
	return arr.Data
}

func attrString(attrs api.AttributeMap, key string) string {
	if attrs == nil {
		return ""
	}
	v, ok := attrs.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
