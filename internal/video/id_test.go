package video

import "testing"

func TestExtractID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"not a url", "", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"shortid", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractID(%q) = (%q,%v), want (%q,%v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
