// Package scope implements the permission/scope set validator: a single
// any-overlap check reused by JWT audience validation and by route-level
// permission guards. It holds no state and performs no I/O.
package scope

const wildcard = "*"

// Result is the outcome of Validate.
type Result struct {
	OK     bool
	Reason string
}

// ok is the zero-value success Result.
var ok = Result{OK: true}

// Validate reports whether held satisfies required: empty required is
// always satisfied, a wildcard in held satisfies anything, and otherwise
// any overlap between the two sets — not a full subset — is sufficient.
// This "any-of" contract is deliberate (see spec §4.3/§9): a caller
// needing "holds ALL of required" must call Validate once per permission.
func Validate(required, held []string) Result {
	if len(required) == 0 {
		return ok
	}

	heldSet := make(map[string]struct{}, len(held))
	for _, h := range held {
		if h == wildcard {
			return ok
		}
		heldSet[h] = struct{}{}
	}

	if len(heldSet) == 0 {
		return Result{OK: false, Reason: insufficientReason(required)}
	}

	for _, req := range required {
		if _, found := heldSet[req]; found {
			return ok
		}
	}

	return Result{OK: false, Reason: insufficientReason(required)}
}

func insufficientReason(required []string) string {
	msg := "Insufficient permissions. Requires any of ["
	for i, r := range required {
		if i > 0 {
			msg += ", "
		}
		msg += r
	}
	return msg + "]."
}
