package scheduler

// DelayForGrade returns the delay in seconds of the step the card is on,
// given its packed left value. Out-of-range positions fall back to the first
// step, and an empty step list to one minute.
func DelayForGrade(delays []float64, left int) int {
	left %= 1000
	idx := len(delays) - left
	var delay float64
	switch {
	case idx >= 0 && idx < len(delays):
		delay = delays[idx]
	case len(delays) > 0:
		delay = delays[0]
	default:
		delay = 1
	}
	return int(delay * 60)
}

// DelayForRepeatingGrade is the delay used for Hard in learning: the average
// of the current step and the next one, never shorter than the current.
func DelayForRepeatingGrade(delays []float64, left int) int {
	d1 := DelayForGrade(delays, left)
	var d2 int
	if len(delays) > 1 {
		d2 = DelayForGrade(delays, left-1)
	} else {
		d2 = d1 * 2
	}
	return (d1 + max(d1, d2)) / 2
}

// StepsFittingToday counts how many of the last `left` steps can be
// completed before dayCutoff when starting at now (epoch seconds). The
// current step is always counted. A left of 0 walks the whole list.
func StepsFittingToday(delays []float64, left int, now, dayCutoff int64) int {
	offset := min(left, len(delays))
	if left == 0 {
		offset = len(delays)
	}
	ok := 0
	for i := 0; i < offset; i++ {
		now += int64(delays[len(delays)-offset+i] * 60)
		if now > dayCutoff {
			break
		}
		ok = i
	}
	return ok + 1
}

// StartingLeft packs the left value for a card entering the given step
// list.
func StartingLeft(delays []float64, now, dayCutoff int64) int {
	tot := len(delays)
	return StepsFittingToday(delays, tot, now, dayCutoff)*1000 + tot
}
