package authcore

import "testing"

func TestAnonymousSessionStableForSameHeaders(t *testing.T) {
	headers := RequestHeaders{ForwardedFor: "203.0.113.5", UserAgent: "test-agent/1.0"}

	first := AnonymousSession(10, headers)
	second := AnonymousSession(10, headers)

	if first.ID != second.ID {
		t.Fatalf("ID = %q, %q, want identical derivation for identical headers", first.ID, second.ID)
	}
	if first.Type != SessionAnonymous || first.Status != StatusUnconfirmed {
		t.Fatalf("session = %+v, want anonymous/unconfirmed", first)
	}
}

func TestAnonymousSessionDiffersByIP(t *testing.T) {
	a := AnonymousSession(10, RequestHeaders{ForwardedFor: "203.0.113.5", UserAgent: "ua"})
	b := AnonymousSession(10, RequestHeaders{ForwardedFor: "198.51.100.9", UserAgent: "ua"})

	if a.ID == b.ID {
		t.Fatal("expected different IPs to derive different anonymous IDs")
	}
}

func TestResolveIPRejectsNonIPv4(t *testing.T) {
	ip := resolveIP(RequestHeaders{ForwardedFor: "not-an-ip"})
	if ip != "invalid-ip" {
		t.Fatalf("ip = %q, want invalid-ip", ip)
	}
}

func TestResolveIPFallsBackWhenAbsent(t *testing.T) {
	ip := resolveIP(RequestHeaders{})
	if ip != "unknown-ip" {
		t.Fatalf("ip = %q, want unknown-ip", ip)
	}
}
