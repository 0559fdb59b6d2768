package scheduler

// IsLeechLapse reports whether reaching `lapses` lapses marks the card as a
// leech. The threshold fires at leechFails and then every half-threshold
// after it. A zero threshold disables leech detection.
func IsLeechLapse(lapses, leechFails int) bool {
	if leechFails <= 0 || lapses < leechFails {
		return false
	}
	return (lapses-leechFails)%max(leechFails/2, 1) == 0
}
