// Package tree implements CART-style binary decision trees for regression and
// classification. Trees are grown once by recursive best-split search and are
// immutable afterwards; traversal is root-to-leaf only.
package tree

// Node is a tagged variant: either a leaf carrying a prediction, or an internal
// node carrying a split and exclusive ownership of its two children. No
// back-references exist, so ownership forms a simple tree.
type Node struct {
	// Internal node fields. Rows with value <= Threshold go left.
	Feature   string
	Threshold float64
	Left      *Node
	Right     *Node

	// Leaf fields
	IsLeaf     bool
	Prediction float64
	Samples    int
	Impurity   float64

	// ClassCounts retains per-class sample counts on classification leaves
	// so that inference can derive a confidence from the winning share.
	ClassCounts map[float64]int
}

// Traverse walks from this node to the leaf selected by x and returns it.
func (n *Node) Traverse(x map[string]float64) *Node {
	node := n
	for !node.IsLeaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// TraversePath walks to the leaf selected by x, appending every internal node
// visited to path. Used by the prediction engine to attribute contributions.
func (n *Node) TraversePath(x map[string]float64) (leaf *Node, path []*Node) {
	node := n
	for !node.IsLeaf {
		path = append(path, node)
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node, path
}

// Depth returns the height of the subtree rooted at n.
func (n *Node) Depth() int {
	if n.IsLeaf {
		return 0
	}
	left := n.Left.Depth()
	right := n.Right.Depth()
	if left > right {
		return left + 1
	}
	return right + 1
}

// CountLeaves returns the number of leaves in the subtree rooted at n.
func (n *Node) CountLeaves() int {
	if n.IsLeaf {
		return 1
	}
	return n.Left.CountLeaves() + n.Right.CountLeaves()
}
