package database

import (
	"reflect"
	"sort"
	"testing"
)

func TestAllowedOriginsSlice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single origin", raw: "https://a.example.com", want: []string{"https://a.example.com"}},
		{name: "comma separated", raw: "https://a.com, https://b.com", want: []string{"https://a.com", "https://b.com"}},
		{name: "duplicates collapse", raw: "x, x, y", want: []string{"x", "y"}},
		{name: "whitespace trimmed", raw: "  a  ,  b  ", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AllowedOriginsSlice(tt.raw)
			sort.Strings(got)
			want := append([]string(nil), tt.want...)
			sort.Strings(want)
			if len(got) == 0 && len(want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("AllowedOriginsSlice(%q) = %v, want %v", tt.raw, got, want)
			}
		})
	}
}
