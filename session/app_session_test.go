package session

import "testing"

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewToken()
	if len(a) != 64 || a == b {
		t.Fatalf("tokens %q %q", a, b)
	}
}

func TestKeys(t *testing.T) {
	if got := key("abc"); got != "invensys:sess:abc" {
		t.Errorf("key = %q", got)
	}
	if got := userSetKey("u1"); got != "invensys:user_sessions:u1" {
		t.Errorf("userSetKey = %q", got)
	}
}
