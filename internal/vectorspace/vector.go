package vectorspace

import "math"

// Entry is one non-zero component of a sparse vector.
type Entry struct {
	Index  int
	Weight float64
}

// Vector is a sparse vector over a Space's vocabulary.
// Entries are sorted by Index ascending with no duplicates; every operation
// below relies on that to merge two vectors in a single pass.
type Vector []Entry

// Dot returns the inner product of a and b.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			sum += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean length of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector.
func Cosine(a, b Vector) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// Mean returns the component-wise average of vs. The result is empty when vs is.
func Mean(vs []Vector) Vector {
	if len(vs) == 0 {
		return Vector{}
	}

	var sum Vector
	for _, v := range vs {
		sum = add(sum, v)
	}

	n := float64(len(vs))
	out := make(Vector, 0, len(sum))
	for _, e := range sum {
		if e.Weight == 0 {
			continue
		}
		out = append(out, Entry{Index: e.Index, Weight: e.Weight / n})
	}
	return out
}

// add merges two sorted vectors into a new one holding their sum.
func add(a, b Vector) Vector {
	out := make(Vector, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Index < b[j].Index):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j].Index < a[i].Index:
			out = append(out, b[j])
			j++
		default:
			out = append(out, Entry{Index: a[i].Index, Weight: a[i].Weight + b[j].Weight})
			i++
			j++
		}
	}
	return out
}

// Dense expands v into a slice of length dim. Handy for debugging and tests.
func (v Vector) Dense(dim int) []float64 {
	out := make([]float64, dim)
	for _, e := range v {
		if e.Index < dim {
			out[e.Index] = e.Weight
		}
	}
	return out
}
