package jwtcodec

import "encoding/json"

// Payload is the tagged record backing JWT claims: known reserved fields
// (spec §3) plus an open extension map for arbitrary additional fields.
// MarshalJSON/UnmarshalJSON flatten Extra into the same JSON object as the
// reserved fields so the wire format is an ordinary flat claims object,
// not a nested one.
type Payload struct {
	JTI        string         `json:"-"`
	Iss        string         `json:"-"`
	Sub        string         `json:"-"`
	Aud        []string       `json:"-"`
	Exp        int64          `json:"-"` // unix seconds; 0 means unset
	RateLimit  int            `json:"-"`
	SecureData string         `json:"-"`
	Extra      map[string]any `json:"-"`
}

const (
	fieldJTI        = "jti"
	fieldIss        = "iss"
	fieldSub        = "sub"
	fieldAud        = "aud"
	fieldExp        = "exp"
	fieldRateLimit  = "rateLimit"
	fieldSecureData = "secureData"
)

// MarshalJSON flattens the reserved fields and Extra into one JSON object.
func (p Payload) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		m[k] = v
	}

	if p.JTI != "" {
		m[fieldJTI] = p.JTI
	}
	if p.Iss != "" {
		m[fieldIss] = p.Iss
	}
	if p.Sub != "" {
		m[fieldSub] = p.Sub
	}
	if len(p.Aud) == 1 {
		m[fieldAud] = p.Aud[0]
	} else if len(p.Aud) > 1 {
		m[fieldAud] = p.Aud
	}
	if p.Exp != 0 {
		m[fieldExp] = p.Exp
	}
	m[fieldRateLimit] = p.RateLimit
	if p.SecureData != "" {
		m[fieldSecureData] = p.SecureData
	}

	return json.Marshal(m)
}

// UnmarshalJSON splits the flat claims object back into reserved fields
// and Extra.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return p.fromMap(m)
}

func (p *Payload) fromMap(m map[string]any) error {
	p.Extra = make(map[string]any, len(m))
	for k, v := range m {
		p.Extra[k] = v
	}

	if v, ok := m[fieldJTI].(string); ok {
		p.JTI = v
		delete(p.Extra, fieldJTI)
	}
	if v, ok := m[fieldIss].(string); ok {
		p.Iss = v
		delete(p.Extra, fieldIss)
	}
	if v, ok := m[fieldSub].(string); ok {
		p.Sub = v
		delete(p.Extra, fieldSub)
	}
	if v, ok := m[fieldAud]; ok {
		p.Aud = toStringSlice(v)
		delete(p.Extra, fieldAud)
	}
	if v, ok := m[fieldExp]; ok {
		p.Exp = toInt64(v)
		delete(p.Extra, fieldExp)
	}
	if v, ok := m[fieldRateLimit]; ok {
		p.RateLimit = int(toInt64(v))
		delete(p.Extra, fieldRateLimit)
	}
	if v, ok := m[fieldSecureData].(string); ok {
		p.SecureData = v
		delete(p.Extra, fieldSecureData)
	}

	return nil
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	default:
		return 0
	}
}

// Clone returns a deep-enough copy for callers that mutate Aud/Extra
// after reading (e.g. promoting payload.permissions into Aud).
func (p Payload) Clone() Payload {
	clone := p
	if p.Aud != nil {
		clone.Aud = append([]string(nil), p.Aud...)
	}
	if p.Extra != nil {
		clone.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			clone.Extra[k] = v
		}
	}
	return clone
}
