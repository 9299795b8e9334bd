package tree

// splitSweep maintains running impurity aggregates on both sides of a moving
// cut point during the single-pass split search.
type splitSweep interface {
	// moveLeft moves the i-th row in sorted order from the right side to the left.
	moveLeft(i int)
	leftImpurity() float64
	rightImpurity() float64
}

// giniSweep tracks class counts on both sides of the cut.
type giniSweep struct {
	rows   []map[string]float64
	order  []int
	target string

	leftCounts  map[float64]int
	rightCounts map[float64]int
	leftN       int
	rightN      int
}

func newGiniSweep(rows []map[string]float64, order []int, target string) *giniSweep {
	s := &giniSweep{
		rows:        rows,
		order:       order,
		target:      target,
		leftCounts:  make(map[float64]int),
		rightCounts: make(map[float64]int),
		rightN:      len(rows),
	}
	for _, idx := range order {
		s.rightCounts[rows[idx][target]]++
	}
	return s
}

func (s *giniSweep) moveLeft(i int) {
	y := s.rows[s.order[i]][s.target]
	s.leftCounts[y]++
	s.leftN++
	s.rightCounts[y]--
	s.rightN--
}

func (s *giniSweep) leftImpurity() float64 {
	return giniFromCounts(s.leftCounts, s.leftN)
}

func (s *giniSweep) rightImpurity() float64 {
	return giniFromCounts(s.rightCounts, s.rightN)
}

func giniFromCounts(counts map[float64]int, n int) float64 {
	if n == 0 {
		return 0
	}
	gini := 1.0
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(n)
		gini -= p * p
	}
	return gini
}

// sseSweep tracks sum and sum-of-squares on both sides of the cut, giving
// O(1) impurity updates per candidate cut point.
type sseSweep struct {
	rows   []map[string]float64
	order  []int
	target string

	leftSum, leftSumSq   float64
	rightSum, rightSumSq float64
	leftN, rightN        int
}

func newSSESweep(rows []map[string]float64, order []int, target string) *sseSweep {
	s := &sseSweep{
		rows:   rows,
		order:  order,
		target: target,
		rightN: len(rows),
	}
	for _, idx := range order {
		y := rows[idx][target]
		s.rightSum += y
		s.rightSumSq += y * y
	}
	return s
}

func (s *sseSweep) moveLeft(i int) {
	y := s.rows[s.order[i]][s.target]
	s.leftSum += y
	s.leftSumSq += y * y
	s.leftN++
	s.rightSum -= y
	s.rightSumSq -= y * y
	s.rightN--
}

func (s *sseSweep) leftImpurity() float64 {
	return sseImpurity(s.leftSum, s.leftSumSq, s.leftN)
}

func (s *sseSweep) rightImpurity() float64 {
	return sseImpurity(s.rightSum, s.rightSumSq, s.rightN)
}

func sseImpurity(sum, sumSq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	sse := sumSq - sum*sum/float64(n)
	if sse < 0 {
		// Guard against tiny negative residue from floating point cancellation.
		sse = 0
	}
	return sse / float64(n)
}
