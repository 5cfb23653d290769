package server

import "testing"

func TestObjectKeyFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{path: "/i/a.txt", want: "a.txt", wantOK: true},
		{path: "/i/a/b", want: "a", wantOK: true},
		{path: "/i/my%20file.txt", want: "my file.txt", wantOK: true},
		{path: "/i/dir%2Fname", want: "dir/name", wantOK: true},
		{path: "/i/", wantOK: false},
		{path: "/i", wantOK: false},
		{path: "/i//a", wantOK: false},
		{path: "/i/%zz", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := objectKeyFromPath(tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("objectKeyFromPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
