package approval

// Evaluate is the pure policy function: (security, ask, allowlist_satisfied)
// -> outcome. First matching rule wins.
//
//	deny      any       any    -> denied
//	any       always    any    -> ask        (except security=deny, already matched above)
//	allowlist any       true   -> allow
//	allowlist on-miss   false  -> ask
//	allowlist off       false  -> denied
//	full      off       any    -> allow
//	full      on-miss   true   -> allow
//	full      on-miss   false  -> ask
func Evaluate(security SecurityLevel, ask AskMode, satisfied bool) ApprovalOutcome {
	if security == SecurityDeny {
		return OutcomeDenied
	}
	if ask == AskAlways {
		return OutcomeAsk
	}
	switch security {
	case SecurityAllowlist:
		if satisfied {
			return OutcomeAllow
		}
		if ask == AskOnMiss {
			return OutcomeAsk
		}
		return OutcomeDenied
	case SecurityFull:
		if ask == AskOff {
			return OutcomeAllow
		}
		if satisfied {
			return OutcomeAllow
		}
		return OutcomeAsk
	default:
		return OutcomeDenied
	}
}
