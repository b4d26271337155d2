// Package session holds the client-side authenticated identity: a reducer
// over explicit state transitions, a pluggable persistent storage mirror,
// and an HTTP transport that reacts to authentication failures.
package session

// Identity is the sanitized user the server returns at login.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// State is the session state: the authenticated user, or nil.
type State struct {
	User *Identity
}

type ActionType string

const (
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
)

// Action is a state transition request.
type Action struct {
	Type    ActionType
	Payload *Identity
}

// Reduce is the pure transition function. LOGIN replaces the user, LOGOUT
// nulls it, anything else leaves the state unchanged.
func Reduce(state State, action Action) State {
	switch action.Type {
	case ActionLogin:
		return State{User: action.Payload}
	case ActionLogout:
		return State{User: nil}
	default:
		return state
	}
}
