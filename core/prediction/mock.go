package prediction

// MockEngine returns configured answers and records the queries it saw.
type MockEngine struct {
	Value      float64
	SimilarRes Similar
	Err        error
	Queries    []Query
}

// Predict validates q like the real engine and returns Value.
func (m *MockEngine) Predict(q Query) (float64, error) {
	m.Queries = append(m.Queries, q)
	if _, err := q.Validate(); err != nil {
		return 0, err
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Value, nil
}

// Similar returns SimilarRes.
func (m *MockEngine) Similar(q Query) (Similar, error) {
	if _, err := q.Validate(); err != nil {
		return Similar{}, err
	}
	return m.SimilarRes, nil
}
