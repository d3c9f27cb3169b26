package features

// Encoder assigns a stable integer code per distinct observed value in
// first-seen order. Codes are memoized for the whole run, so the same value
// always encodes the same way within a run regardless of hashing or
// iteration order.
type Encoder struct {
	codes map[string]int
	order []string
}

func NewEncoder() *Encoder {
	return &Encoder{codes: make(map[string]int)}
}

// Code returns the code for v, assigning the next one on first sight.
func (e *Encoder) Code(v string) int {
	if c, ok := e.codes[v]; ok {
		return c
	}
	c := len(e.order)
	e.codes[v] = c
	e.order = append(e.order, v)
	return c
}

// Values returns the observed values in code order.
func (e *Encoder) Values() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Encoder) Len() int { return len(e.order) }
