package components

// String returns the display name for a Phase.
func (p Phase) String() string {
	names := PhaseNames()
	if int(p) < len(names) {
		return names[p]
	}
	return "Unknown"
}

// PhaseNames returns the display names for all phases.
// The order matches the Phase constants.
func PhaseNames() []string {
	return []string{"Idle", "Opening", "Closing"}
}

// PhaseCount returns the number of phases.
func PhaseCount() int {
	return len(PhaseNames())
}
