package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{"empty slice", []string{}, []string{}},
		{"trims whitespace", []string{" kafka-1:9092 ", "kafka-2:9092"}, []string{"kafka-1:9092", "kafka-2:9092"}},
		{"drops empties", []string{"kafka-1:9092", "", "   "}, []string{"kafka-1:9092"}},
		{"dedupes preserving order", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
		{"is case sensitive", []string{"Broker", "broker"}, []string{"Broker", "broker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
