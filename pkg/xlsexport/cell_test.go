package xlsexport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

type status int

func (s status) String() string { return [...]string{"draft", "published"}[s] }

func TestFlatten(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	title := "Hot Dawg"
	var nilPtr *string
	var nilTime *time.Time
	var nilStatus *status
	published := status(1)

	tests := []struct {
		name     string
		input    interface{}
		expected []interface{}
	}{
		{"nil", nil, []interface{}{nil}},
		{"string", "x", []interface{}{"x"}},
		{"int", 1, []interface{}{1}},
		{"time", now, []interface{}{now}},
		{"pointer", &title, []interface{}{"Hot Dawg"}},
		{"nil pointer", nilPtr, []interface{}{nil}},
		{"stringer", status(1), []interface{}{"published"}},
		{"nil time pointer", nilTime, []interface{}{nil}},
		{"time pointer", &now, []interface{}{now}},
		{"nil stringer pointer", nilStatus, []interface{}{nil}},
		{"stringer pointer", &published, []interface{}{"published"}},
		{"int keys in numeric order", map[int]string{10: "ten", 2: "two", 1: "one"}, []interface{}{"one", "two", "ten"}},
		{"negative keys", map[int64]int{-5: 1, 3: 2}, []interface{}{1, 2}},
		{"slice", []int{1, 2, 3}, []interface{}{1, 2, 3}},
		{"interface slice", []interface{}{"a", 2}, []interface{}{"a", 2}},
		{"nested", []interface{}{"a", []interface{}{"b", []string{"c"}}}, []interface{}{"a", "b", "c"}},
		{"map in key order", map[string]int{"b": 2, "a": 1}, []interface{}{1, 2}},
		{"mapping keeps order", Mapping{{"z", 1}, {"a", "x"}}, []interface{}{1, "x"}},
		{"mapping of sequences", Mapping{{"k", []interface{}{1, 2}}}, []interface{}{1, 2}},
		{"bytes stay whole", []byte("raw"), []interface{}{[]byte("raw")}},
		{"struct stringified", point{1, 2}, []interface{}{"{1 2}"}},
		{"empty slice", []string{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Flatten(tt.input))
		})
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"id", "Id"},
		{"title", "Title"},
		{"published_on", "Published On"},
		{"author_id", "Author"},
		{"Number of Posts", "Number Of Posts"},
		{"hTML_body", "HTML Body"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Humanize(tt.input))
		})
	}
}
