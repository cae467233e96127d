package geometry

import (
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// Leaf threshold: nodes with this many or fewer shapes become leaves
const leafThreshold = 8

// BVHNode represents a node in the bounding volume hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Leaf payload, nil for internal nodes
}

// BVH represents a bounding volume hierarchy for fast ray-object
// intersection
type BVH struct {
	Root   *BVHNode
	Center core.Vec3 // Finite scene center
	Radius float64   // World radius around the center
}

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{Root: nil, Center: core.Vec3{}, Radius: 0}
	}

	// Copy so concurrent builders never partition a shared slice
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	root := buildBVH(shapesCopy)

	worldCenter := root.BoundingBox.Center()
	worldRadius := root.BoundingBox.Max.Subtract(worldCenter).Length()

	return &BVH{Root: root, Center: worldCenter, Radius: worldRadius}
}

// buildBVH recursively builds the hierarchy by splitting at the
// midpoint of the longest bounding box axis
func buildBVH(shapes []Shape) *BVHNode {
	boundingBox := shapes[0].BoundingBox()
	for i := 1; i < len(shapes); i++ {
		boundingBox = boundingBox.Union(shapes[i].BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	axis := boundingBox.LongestAxis()
	minVal := boundingBox.Min.Axis(axis)
	maxVal := boundingBox.Max.Axis(axis)
	if maxVal <= minVal {
		// Degenerate extent, splitting cannot help
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}
	splitPos := (minVal + maxVal) * 0.5

	var leftShapes, rightShapes []Shape
	for _, shape := range shapes {
		if shape.BoundingBox().Center().Axis(axis) < splitPos {
			leftShapes = append(leftShapes, shape)
		} else {
			rightShapes = append(rightShapes, shape)
		}
	}

	if len(leftShapes) == 0 || len(rightShapes) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(leftShapes),
		Right:       buildBVH(rightShapes),
	}
}

// Hit tests if a ray intersects any shape in the BVH and returns the
// closest hit
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	return hitNode(bvh.Root, ray, tMin, tMax)
}

func hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return nil, false
	}

	if node.Shapes != nil {
		var closest *material.HitRecord
		closestSoFar := tMax
		for _, shape := range node.Shapes {
			if hit, ok := shape.Hit(ray, tMin, closestSoFar); ok {
				closest = hit
				closestSoFar = hit.T
			}
		}
		return closest, closest != nil
	}

	var closest *material.HitRecord
	closestSoFar := tMax
	if hit, ok := hitNode(node.Left, ray, tMin, closestSoFar); ok {
		closest = hit
		closestSoFar = hit.T
	}
	if hit, ok := hitNode(node.Right, ray, tMin, closestSoFar); ok {
		closest = hit
	}
	return closest, closest != nil
}

// BoundingBox returns the overall bounding box of the hierarchy
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}
