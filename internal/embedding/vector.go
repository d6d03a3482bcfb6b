package embedding

import (
	"strconv"
	"strings"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// EncodeVector serializes a vector to the bracketed textual form used when a
// vector crosses the SQL boundary in a native query: "[v0,v1,...]" with no
// spaces.
func EncodeVector(vector []float32) string {
	var b strings.Builder
	b.Grow(len(vector)*10 + 2)
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// DecodeVector parses the bracketed textual vector form. Whitespace around
// brackets and commas is tolerated. An empty or blank input decodes to an
// empty vector, not an error.
func DecodeVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float32{}, nil
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		return []float32{}, nil
	}

	parts := strings.Split(s, ",")
	vector := make([]float32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeMalformedVector,
				"vector element is not a number", err)
		}
		vector = append(vector, float32(v))
	}
	return vector, nil
}
