package identity

// Decision is the terminal state of one authorization check.
type Decision int

const (
	// DecisionUnauthenticated: no valid identity; the protected tree must
	// not render and the caller goes to sign-in.
	DecisionUnauthenticated Decision = iota
	// DecisionWrongRole: valid identity, role outside the allowed set; the
	// caller goes to their own landing page.
	DecisionWrongRole
	// DecisionAuthorized: render.
	DecisionAuthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionWrongRole:
		return "wrong-role"
	default:
		return "unauthenticated"
	}
}

// Authorize gates one protected render. The allowed-role set is declared
// explicitly per route, never inferred from the path. A nil identity is
// always unauthenticated regardless of the allowed set; a suspended
// identity is treated the same way.
func Authorize(id *Identity, allowed ...Role) Decision {
	if id == nil || id.ID == "" || id.Suspended {
		return DecisionUnauthenticated
	}
	for _, r := range allowed {
		if id.Role == r {
			return DecisionAuthorized
		}
	}
	return DecisionWrongRole
}
