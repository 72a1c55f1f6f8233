package aitime

// MockStrategy is a Strategy returning fixed values, for testing.
type MockStrategy struct {
	Entity NormalizedEntity
	Err    error
	// Panic makes Resolve panic with this value when non-nil.
	Panic any

	// Calls counts Resolve invocations. Not safe for concurrent use.
	Calls int
	Last  Request
}

// Name implements Strategy.
func (m *MockStrategy) Name() string {
	return "mock"
}

// Resolve implements Strategy.
func (m *MockStrategy) Resolve(req Request) (NormalizedEntity, error) {
	m.Calls++
	m.Last = req
	if m.Panic != nil {
		panic(m.Panic)
	}
	return m.Entity, m.Err
}

// Ensure implementations satisfy Strategy.
var (
	_ Strategy = (*MockStrategy)(nil)
	_ Strategy = (*NaturalStrategy)(nil)
	_ Strategy = (*HeuristicStrategy)(nil)
)
