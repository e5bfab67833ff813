package model

// AdmissionConfig is the snapshot of feature toggles evaluated during
// an admission decision. The orchestrator takes a fresh snapshot per
// call so toggles can change without restarting in-flight operations.
type AdmissionConfig struct {
	VouchersEnabled    bool `json:"vouchersEnabled"`
	MaxPlayersEnforced bool `json:"maxPlayersEnforced"`
	MaxPlayers         int  `json:"maxPlayers"`
}

// Capacity returns the roster bound implied by the snapshot.
// Zero means unbounded.
func (c AdmissionConfig) Capacity() int {
	if !c.MaxPlayersEnforced {
		return 0
	}
	if c.MaxPlayers <= 0 {
		return DefaultMaxPlayers
	}
	return c.MaxPlayers
}
