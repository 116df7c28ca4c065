package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpolate(t *testing.T) {
	fields := Fields{"color": "Red", "points": "2"}
	cases := []struct {
		in, want string
	}{
		{"Nobility${color}.jpg", "NobilityRed.jpg"},
		{"${ points } pts", "2 pts"},
		{"${COLOR}", "Red"},
		{"${missing}.jpg", "${missing}.jpg"},
		{"plain.jpg", "plain.jpg"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, fields); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := Interpolate("${color}", nil); got != "${color}" {
		t.Fatalf("nil fields must keep placeholder, got %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("${a}-${b}-${a}-${}")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("placeholders mismatch (-want +got):\n%s", diff)
	}
}
