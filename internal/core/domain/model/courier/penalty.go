package courier

// Penalty is the increment applied to a courier after a timed-out or rejected offer.
// Counters only grow here; resets belong to an external daily job.
type Penalty struct {
	Points     float64
	Rejections int
}

func (p Penalty) IsZero() bool {
	return p.Points == 0 && p.Rejections == 0
}
