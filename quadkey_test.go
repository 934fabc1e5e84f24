package meshcache

import "testing"

func TestQuadKeyString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  QuadKey
		want string
	}{
		{QuadKey{X: 0, Y: 0, LevelOfDetail: 1}, "0"},
		{QuadKey{X: 1, Y: 0, LevelOfDetail: 1}, "1"},
		{QuadKey{X: 0, Y: 1, LevelOfDetail: 1}, "2"},
		{QuadKey{X: 1, Y: 1, LevelOfDetail: 1}, "3"},
		{QuadKey{X: 3, Y: 5, LevelOfDetail: 3}, "213"},
		{QuadKey{X: 0, Y: 0, LevelOfDetail: 4}, "0000"},
		{QuadKey{X: 35210, Y: 21493, LevelOfDetail: 16}, "1202102332221212"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParseQuadKeyRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"0", "3", "213", "0000", "1202102332221212"} {
		key, err := ParseQuadKey(s)
		if err != nil {
			t.Fatalf("ParseQuadKey(%q) error = %v", s, err)
		}
		if got := key.String(); got != s {
			t.Errorf("ParseQuadKey(%q).String() = %q", s, got)
		}
		if !key.Valid() {
			t.Errorf("ParseQuadKey(%q) = %+v, not valid", s, key)
		}
	}
}

func TestParseQuadKeyInvalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "4", "01a", "012340"} {
		if _, err := ParseQuadKey(s); err == nil {
			t.Errorf("ParseQuadKey(%q) expected error", s)
		}
	}
}

func TestQuadKeyValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  QuadKey
		want bool
	}{
		{QuadKey{X: 0, Y: 0, LevelOfDetail: 1}, true},
		{QuadKey{X: 15, Y: 15, LevelOfDetail: 4}, true},
		{QuadKey{X: 16, Y: 0, LevelOfDetail: 4}, false},
		{QuadKey{X: 0, Y: 0, LevelOfDetail: 0}, false},
		{QuadKey{X: 0, Y: 0, LevelOfDetail: 40}, false},
	}
	for _, tt := range tests {
		if got := tt.key.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.key, got, tt.want)
		}
	}
}
