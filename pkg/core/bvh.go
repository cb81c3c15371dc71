package core

import (
	"math"
	"sort"
)

// SplitStrategy selects how an interior BVH node partitions its shapes
type SplitStrategy int

const (
	// SplitMedian splits sorted centroids at the middle index
	SplitMedian SplitStrategy = iota
	// SplitSAH picks the split index with the lowest surface area cost
	SplitSAH
)

// String returns the strategy name
func (s SplitStrategy) String() string {
	switch s {
	case SplitSAH:
		return "sah"
	default:
		return "median"
	}
}

// BVHNode represents a node in the Bounding Volume Hierarchy.
// A node with non-nil Shapes is a leaf; otherwise Left and Right are both set.
type BVHNode struct {
	BoundingBox AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Hittable // Shapes for leaf nodes (nil for internal nodes)
}

// IsLeaf reports whether the node stores shapes directly
func (n *BVHNode) IsLeaf() bool {
	return n.Shapes != nil
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection.
// A BVH is immutable after construction and safe for concurrent queries.
// A nil Root is an empty hierarchy that never reports a hit.
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 4

// NewBVH constructs a median-split BVH from a slice of shapes
func NewBVH(shapes []Hittable) *BVH {
	return NewBVHWithStrategy(shapes, SplitMedian)
}

// NewBVHWithStrategy constructs a BVH using the given split strategy
func NewBVHWithStrategy(shapes []Hittable, strategy SplitStrategy) *BVH {
	if len(shapes) == 0 {
		return &BVH{Root: nil}
	}

	// Sorting happens in place, so work on a private copy
	shapesCopy := make([]Hittable, len(shapes))
	copy(shapesCopy, shapes)

	builder := bvhBuilder{strategy: strategy}
	return &BVH{Root: builder.build(shapesCopy)}
}

type bvhBuilder struct {
	strategy SplitStrategy
}

func (b bvhBuilder) build(shapes []Hittable) *BVHNode {
	boundingBox := EmptyAABB
	for _, shape := range shapes {
		boundingBox = boundingBox.Union(shape.BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{
			BoundingBox: boundingBox,
			Shapes:      shapes,
		}
	}

	// The split axis comes from the spread of centroids, not of geometry extents
	centroidBounds := EmptyAABB
	for _, shape := range shapes {
		c := shape.BoundingBox().Center()
		centroidBounds = centroidBounds.Union(AABB{
			X: NewInterval(c.X, c.X),
			Y: NewInterval(c.Y, c.Y),
			Z: NewInterval(c.Z, c.Z),
		})
	}
	axis := centroidBounds.LongestAxis()
	sortShapesByAxis(shapes, axis)

	mid := len(shapes) / 2
	if b.strategy == SplitSAH {
		mid = sahSplitIndex(shapes, boundingBox)
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        b.build(shapes[:mid]),
		Right:       b.build(shapes[mid:]),
	}
}

// sortShapesByAxis sorts shapes by their bounding box center along the specified axis
func sortShapesByAxis(shapes []Hittable, axis int) {
	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].BoundingBox().Center().Axis(axis) < shapes[j].BoundingBox().Center().Axis(axis)
	})
}

// sahSplitIndex scores every split position of centroid-sorted shapes with
// leftCount*leftArea + rightCount*rightArea and returns the cheapest index.
// Falls back to the median when the parent bounds have no area.
func sahSplitIndex(shapes []Hittable, bounds AABB) int {
	n := len(shapes)
	if bounds.SurfaceArea() <= 0 {
		return n / 2
	}

	rightAreas := make([]float64, n)
	rightBox := EmptyAABB
	for i := n - 1; i > 0; i-- {
		rightBox = rightBox.Union(shapes[i].BoundingBox())
		rightAreas[i] = rightBox.SurfaceArea()
	}

	bestIndex := n / 2
	bestCost := math.Inf(1)
	leftBox := EmptyAABB
	for i := 1; i < n; i++ {
		leftBox = leftBox.Union(shapes[i-1].BoundingBox())
		cost := float64(i)*leftBox.SurfaceArea() + float64(n-i)*rightAreas[i]
		if cost < bestCost {
			bestCost = cost
			bestIndex = i
		}
	}
	return bestIndex
}

// Hit tests if a ray intersects any shape in the BVH
func (bvh *BVH) Hit(ray Ray, rayT Interval) (*HitRecord, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	return bvh.hitNode(bvh.Root, ray, rayT)
}

// BoundingBox returns the bounds of every shape in the hierarchy
func (bvh *BVH) BoundingBox() AABB {
	if bvh.Root == nil {
		return EmptyAABB
	}
	return bvh.Root.BoundingBox
}

// hitNode recursively tests ray intersection with BVH nodes
func (bvh *BVH) hitNode(node *BVHNode, ray Ray, rayT Interval) (*HitRecord, bool) {
	if !node.BoundingBox.Hit(ray, rayT) {
		return nil, false
	}

	if node.IsLeaf() {
		var closestHit *HitRecord
		closestSoFar := rayT.Max
		for _, shape := range node.Shapes {
			if hit, isHit := shape.Hit(ray, NewInterval(rayT.Min, closestSoFar)); isHit {
				closestSoFar = hit.T
				closestHit = hit
			}
		}
		return closestHit, closestHit != nil
	}

	// Test left first, then right against the tightened upper bound
	hitLeft, isHitLeft := bvh.hitNode(node.Left, ray, rayT)
	if isHitLeft {
		rayT.Max = hitLeft.T
	}
	if hitRight, isHitRight := bvh.hitNode(node.Right, ray, rayT); isHitRight {
		return hitRight, true
	}
	return hitLeft, isHitLeft
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes  int
	LeafNodes   int
	MaxDepth    int
	AvgDepth    float64
	TotalShapes int
}

// Stats walks the hierarchy and returns its shape statistics
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	collectStats(bvh.Root, 0, &stats)

	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}

	return stats
}

// collectStats recursively collects statistics about the BVH
func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++

	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		stats.LeafNodes++
		stats.TotalShapes += len(node.Shapes)
		stats.AvgDepth += float64(depth) // Accumulated here, averaged by the caller
		return
	}
	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
