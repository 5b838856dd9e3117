package domain

// Mask returns a copy of f in which every value outside rng is replaced by
// Missing. Applying Mask to its own output returns an equal field.
func Mask(f Field, rng ValidRange) Field {
	out := Field{Rows: f.Rows, Cols: f.Cols, Data: make([]float64, len(f.Data))}
	for k, v := range f.Data {
		if rng.Contains(v) {
			out.Data[k] = v
		} else {
			out.Data[k] = Missing
		}
	}
	return out
}

// CountValid returns the number of values within rng.
func CountValid(f Field, rng ValidRange) int {
	n := 0
	for _, v := range f.Data {
		if rng.Contains(v) {
			n++
		}
	}
	return n
}
