package tree

import (
	"math"
	"sort"
)

// minGain is the smallest impurity reduction accepted for a split.
const minGain = 1e-7

// Task selects the impurity criterion used while growing.
type Task int

const (
	// TaskRegression grows with sum-of-squared-errors impurity.
	TaskRegression Task = iota
	// TaskClassification grows with Gini impurity.
	TaskClassification
)

// Sampler yields indices for random feature subsampling. The ensemble package
// provides a seeded implementation; a nil sampler disables subsampling.
type Sampler interface {
	Intn(n int) int
}

// Params controls tree growth. Zero values for MaxDepth and MinSamplesSplit
// mean "derive from the training size" (see DeriveMaxDepth, DeriveMinSamplesSplit).
type Params struct {
	Task            Task
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int

	// MaxFeaturesPerSplit restricts each split to a random feature subset of
	// this size. 0 means all features are evaluated. Requires Sampler.
	MaxFeaturesPerSplit int
	Sampler             Sampler
}

// DeriveMaxDepth returns the default depth limit for n training rows.
func DeriveMaxDepth(n int) int {
	if n < 2 {
		return 4
	}
	d := int(math.Log2(float64(n)))
	if d < 4 {
		d = 4
	}
	if d > 12 {
		d = 12
	}
	return d
}

// DeriveMinSamplesSplit returns the default split threshold for n training rows.
func DeriveMinSamplesSplit(n int) int {
	s := int(math.Sqrt(float64(n)) / 2)
	if s < 8 {
		s = 8
	}
	return s
}

// Grow builds a tree over rows and returns its root together with the
// cumulative impurity reduction contributed by each splitting feature.
// Growth is fully deterministic for a given input and sampler state.
func Grow(rows []map[string]float64, features []string, target string, p Params) (*Node, map[string]float64) {
	if p.MaxDepth == 0 {
		p.MaxDepth = DeriveMaxDepth(len(rows))
	}
	if p.MinSamplesSplit == 0 {
		p.MinSamplesSplit = DeriveMinSamplesSplit(len(rows))
	}
	if p.MinSamplesLeaf == 0 {
		p.MinSamplesLeaf = 1
	}

	gains := make(map[string]float64)
	root := grow(rows, features, target, p, 0, gains)
	return root, gains
}

func grow(rows []map[string]float64, features []string, target string, p Params, depth int, gains map[string]float64) *Node {
	impurity := nodeImpurity(rows, target, p.Task)

	if depth >= p.MaxDepth || len(rows) < p.MinSamplesSplit || impurity < minGain {
		return makeLeaf(rows, target, p.Task, impurity)
	}

	candidates := features
	if p.MaxFeaturesPerSplit > 0 && p.MaxFeaturesPerSplit < len(features) && p.Sampler != nil {
		candidates = sampleFeatures(features, p.MaxFeaturesPerSplit, p.Sampler)
	}

	best := findBestSplit(rows, candidates, target, p)
	if best == nil {
		return makeLeaf(rows, target, p.Task, impurity)
	}

	var left, right []map[string]float64
	for _, row := range rows {
		if row[best.feature] <= best.threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	gains[best.feature] += best.gain

	return &Node{
		Feature:   best.feature,
		Threshold: best.threshold,
		Samples:   len(rows),
		Impurity:  impurity,
		Left:      grow(left, features, target, p, depth+1, gains),
		Right:     grow(right, features, target, p, depth+1, gains),
	}
}

type split struct {
	feature   string
	threshold float64
	gain      float64
}

// findBestSplit evaluates every candidate feature's best cut point and returns
// the split with the globally highest gain. Ties favor the first feature
// evaluated, keeping growth deterministic.
func findBestSplit(rows []map[string]float64, candidates []string, target string, p Params) *split {
	var best *split
	for _, feature := range candidates {
		s := bestSplitOnFeature(rows, feature, target, p)
		if s == nil {
			continue
		}
		if best == nil || s.gain > best.gain {
			best = s
		}
	}
	return best
}

// bestSplitOnFeature sorts rows by the feature's value and sweeps once over
// the sorted order, maintaining running aggregates on both sides of the cut.
func bestSplitOnFeature(rows []map[string]float64, feature, target string, p Params) *split {
	n := len(rows)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]][feature] < rows[order[b]][feature]
	})

	parentImpurity := nodeImpurity(rows, target, p.Task)

	var sweep splitSweep
	if p.Task == TaskClassification {
		sweep = newGiniSweep(rows, order, target)
	} else {
		sweep = newSSESweep(rows, order, target)
	}

	var best *split
	for i := 0; i < n-1; i++ {
		sweep.moveLeft(i)

		leftCount := i + 1
		rightCount := n - leftCount
		if leftCount < p.MinSamplesLeaf || rightCount < p.MinSamplesLeaf {
			continue
		}

		// Only cut between strictly different feature values.
		cur := rows[order[i]][feature]
		next := rows[order[i+1]][feature]
		if cur == next {
			continue
		}

		weighted := (float64(leftCount)*sweep.leftImpurity() + float64(rightCount)*sweep.rightImpurity()) / float64(n)
		gain := parentImpurity - weighted
		if gain <= minGain {
			continue
		}
		if best == nil || gain > best.gain {
			best = &split{
				feature:   feature,
				threshold: (cur + next) / 2,
				gain:      gain,
			}
		}
	}
	return best
}

// sampleFeatures draws k distinct features without replacement.
func sampleFeatures(features []string, k int, sampler Sampler) []string {
	pool := make([]string, len(features))
	copy(pool, features)
	out := make([]string, 0, k)
	for i := 0; i < k; i++ {
		j := i + sampler.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	// Preserve the original evaluation order so tie-breaking stays stable.
	sort.Slice(out, func(a, b int) bool {
		return indexOf(features, out[a]) < indexOf(features, out[b])
	})
	return out
}

func indexOf(features []string, f string) int {
	for i, v := range features {
		if v == f {
			return i
		}
	}
	return -1
}

func makeLeaf(rows []map[string]float64, target string, task Task, impurity float64) *Node {
	leaf := &Node{
		IsLeaf:   true,
		Samples:  len(rows),
		Impurity: impurity,
	}
	if task == TaskClassification {
		counts := make(map[float64]int)
		for _, row := range rows {
			counts[row[target]]++
		}
		leaf.ClassCounts = counts
		leaf.Prediction = majorityClass(counts)
	} else {
		var sum float64
		for _, row := range rows {
			sum += row[target]
		}
		if len(rows) > 0 {
			leaf.Prediction = sum / float64(len(rows))
		}
	}
	return leaf
}

// majorityClass returns the class with the highest count; ties favor the
// smallest encoded class so repeated runs agree.
func majorityClass(counts map[float64]int) float64 {
	best := math.Inf(1)
	bestCount := -1
	for class, count := range counts {
		if count > bestCount || (count == bestCount && class < best) {
			best = class
			bestCount = count
		}
	}
	if bestCount < 0 {
		return 0
	}
	return best
}

// nodeImpurity computes Gini for classification and SSE/n for regression.
func nodeImpurity(rows []map[string]float64, target string, task Task) float64 {
	n := len(rows)
	if n == 0 {
		return 0
	}
	if task == TaskClassification {
		counts := make(map[float64]int)
		for _, row := range rows {
			counts[row[target]]++
		}
		gini := 1.0
		for _, count := range counts {
			p := float64(count) / float64(n)
			gini -= p * p
		}
		return gini
	}

	var sum, sumSq float64
	for _, row := range rows {
		y := row[target]
		sum += y
		sumSq += y * y
	}
	return (sumSq - sum*sum/float64(n)) / float64(n)
}
