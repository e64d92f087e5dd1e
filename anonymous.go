package authcore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

const maxUserAgentLength = 256

// RequestHeaders carries the subset of an inbound request the guard reads
// client identity from.
type RequestHeaders struct {
	ForwardedFor   string // x-forwarded-for
	CFConnectingIP string // cf-connecting-ip
	RealIP         string // x-real-ip
	UserAgent      string // user-agent
}

// AnonymousSession derives a stable, privacy-preserving session for a
// request with no valid bearer token.
//
//	Docs: spec §4.8.
func AnonymousSession(rateLimit int64, headers RequestHeaders) Session {
	id := anonymousID(headers)
	return Session{
		ID:        id,
		Type:      SessionAnonymous,
		Subject:   id,
		RateLimit: rateLimit,
		Status:    StatusUnconfirmed,
	}
}

func anonymousID(headers RequestHeaders) string {
	ip := resolveIP(headers)
	ua := headers.UserAgent
	if ua == "" {
		ua = "unknown-agent"
	}
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}

	sum := xxhash.Sum64String(ip + "-" + ua)
	return fmt.Sprintf("anonymous-%x", sum)
}

func resolveIP(headers RequestHeaders) string {
	var ip string
	switch {
	case headers.ForwardedFor != "":
		ip = strings.TrimSpace(strings.SplitN(headers.ForwardedFor, ",", 2)[0])
	case headers.CFConnectingIP != "":
		ip = headers.CFConnectingIP
	case headers.RealIP != "":
		ip = headers.RealIP
	default:
		return "unknown-ip"
	}

	if !ipv4Pattern.MatchString(ip) {
		return "invalid-ip"
	}
	return ip
}
