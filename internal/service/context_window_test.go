package service

import (
	"fmt"
	"reflect"
	"testing"
)

func TestWindowConversations(t *testing.T) {
	entries := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("entry-%d", i)
		}
		return out
	}

	tests := []struct {
		name  string
		input []string
		limit int
		want  []string
	}{
		{name: "fewer than limit returns all", input: entries(3), limit: 10, want: entries(3)},
		{name: "exactly limit returns all", input: entries(10), limit: 10, want: entries(10)},
		{name: "more than limit keeps tail in order", input: entries(25), limit: 10, want: entries(25)[15:]},
		{name: "empty input", input: []string{}, limit: 10, want: []string{}},
		{name: "nil input", input: nil, limit: 10, want: nil},
		{name: "zero limit", input: entries(5), limit: 0, want: []string{}},
		{name: "negative limit", input: entries(5), limit: -1, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowConversations(tt.input, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WindowConversations() = %v, want %v", got, tt.want)
			}
		})
	}
}
