package features

import "sort"

// LabelEncoder maps categorical strings to stable integer codes in
// first-seen order. Code 0 is reserved for categories never seen during
// fitting, so an unknown category at predict time degrades instead of
// failing.
type LabelEncoder struct {
	Codes map[string]int `json:"codes"`
}

// NewLabelEncoder returns an empty encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{Codes: make(map[string]int)}
}

// Fit assigns codes to every distinct value in first-seen order, starting
// at 1. Refitting resets the mapping.
func (e *LabelEncoder) Fit(values []string) {
	e.Codes = make(map[string]int, len(values))
	next := 1
	for _, v := range values {
		if _, ok := e.Codes[v]; !ok {
			e.Codes[v] = next
			next++
		}
	}
}

// Encode returns the code for v, or 0 when v was not seen during fitting.
func (e *LabelEncoder) Encode(v string) int {
	return e.Codes[v]
}

// Known reports whether v was seen during fitting.
func (e *LabelEncoder) Known(v string) bool {
	_, ok := e.Codes[v]
	return ok
}

// Classes returns the fitted categories sorted by code.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, 0, len(e.Codes))
	for v := range e.Codes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return e.Codes[out[i]] < e.Codes[out[j]]
	})
	return out
}
