package gradio

import (
	"errors"
	"testing"
)

func TestResolveAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example-endpoint.test/", "https://example-endpoint.test"},
		{" http://127.0.0.1:7860 ", "http://127.0.0.1:7860"},
		{"https://host.test/app/?x=1", "https://host.test/app"},
		{"jasonhan888/my-url-scanner1", "https://jasonhan888-my-url-scanner1.hf.space"},
		{"Some_Owner/My.Space", "https://some-owner-my-space.hf.space"},
	}
	for _, tc := range cases {
		got, err := ResolveAddress(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestResolveAddressRejects(t *testing.T) {
	if _, err := ResolveAddress("  "); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
	for _, in := range []string{"ftp://host", "https://", "no-slash", "a/b/c", "/name", "owner/"} {
		if _, err := ResolveAddress(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}
