package version

import "testing"

func TestString(t *testing.T) {
	if got := String(); got != "dev (unknown, unknown)" {
		t.Errorf("unexpected build string %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent("gateway"); got != "stylegenie-gateway/dev" {
		t.Errorf("unexpected user agent %q", got)
	}
}
