package model

// Identity is an actor reference after resolution through the username map.
// A resolved identity carries the canonical login; an unresolved identity
// retains the original key from the backup and sets Unmapped so consumers
// can never mistake it for a canonical username. No placeholder value is
// ever substituted for a missing mapping.
type Identity struct {
	Login    string `json:"login"`
	Unmapped bool   `json:"unmapped,omitempty"`
}

// Resolved returns an identity for a login that mapped to a canonical username.
func Resolved(login string) Identity {
	return Identity{Login: login}
}

// Unresolved returns an identity for a key with no entry in the username map.
// The original key is retained verbatim.
func Unresolved(key string) Identity {
	return Identity{Login: key, Unmapped: true}
}
