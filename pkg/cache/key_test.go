package cache

import "testing"

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "page only",
			key:  CacheKey{Resource: "artworks", Page: 1},
			want: "artsel:artworks:page=1",
		},
		{
			name: "with limit",
			key:  CacheKey{Resource: "artworks", Page: 3, Limit: 12},
			want: "artsel:artworks:page=3:limit=12",
		},
		{
			name: "fields sorted",
			key:  CacheKey{Resource: "artworks", Page: 2, Limit: 12, Fields: []string{"title", "id"}},
			want: "artsel:artworks:page=2:limit=12:fields=id,title",
		},
		{
			name: "resource slashes trimmed",
			key:  CacheKey{Resource: "/artworks/", Page: 1},
			want: "artsel:artworks:page=1",
		},
		{
			name: "no resource",
			key:  CacheKey{Page: 4},
			want: "artsel:page=4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Determinism(t *testing.T) {
	fields := []string{"date_end", "id", "title"}
	a := CacheKey{Resource: "artworks", Page: 2, Limit: 12, Fields: fields}
	b := CacheKey{Resource: "artworks", Page: 2, Limit: 12, Fields: []string{"title", "date_end", "id"}}

	if a.String() != b.String() {
		t.Errorf("keys differ: %q vs %q", a.String(), b.String())
	}

	// String must not reorder the caller's slice
	if fields[0] != "date_end" || fields[2] != "title" {
		t.Errorf("Fields slice was mutated: %v", fields)
	}
}
