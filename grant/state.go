package grant

// State is a step of the authorization code grant.
//
//	AwaitingAuthentication -> AwaitingConsent -> CodeIssued -> TokenIssued
//
// Denied is terminal. A failed step reports an error instead of a state.
// The zero value is not a valid state.
type State int

const (
	StateAwaitingAuthentication State = iota + 1
	StateAwaitingConsent
	StateCodeIssued
	StateTokenIssued
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateAwaitingAuthentication:
		return "awaiting_authentication"
	case StateAwaitingConsent:
		return "awaiting_consent"
	case StateCodeIssued:
		return "code_issued"
	case StateTokenIssued:
		return "token_issued"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}
