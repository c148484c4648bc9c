package mocks

import (
	"github.com/tunequiz/tunequiz/internal/dependencies/random"
)

// MockRandom is a deterministic implementation of Random for testing
type MockRandom struct {
	// IntnResults are returned in order by Intn; when exhausted, Intn returns 0
	IntnResults []int
	intnIndex   int

	// StringResults are returned in order by String; when exhausted, a
	// fixed-alphabet string is generated
	StringResults []string
	stringIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 when exhausted
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex < len(r.IntnResults) {
		result := r.IntnResults[r.intnIndex]
		r.intnIndex++
		if result < n {
			return result
		}
		return n - 1
	}
	return 0
}

// String returns the next queued result, or a deterministic filler string
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = alphabet[i%len(alphabet)]
	}
	return string(result)
}

// Shuffle leaves the order unchanged so tests see library order
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {}
