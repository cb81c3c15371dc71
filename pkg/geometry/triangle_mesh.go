package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Normals       []core.Vec3     // Optional custom normals (one per triangle)
	Materials     []core.Material // Optional per-triangle materials
	SmoothNormals bool            // Shade each face with the mean of its vertex normals
}

// NewTriangleMesh creates the triangles of an indexed mesh without building
// an acceleration structure; callers that need one wrap the result in a BVH.
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// material: default material for all triangles
// options: optional parameters (can be nil for basic mesh)
func NewTriangleMesh(vertices []core.Vec3, faces []int, material core.Material, options *TriangleMeshOptions) ([]core.Hittable, error) {
	if len(faces)%3 != 0 {
		return nil, errors.Errorf("face index count %d is not a multiple of 3", len(faces))
	}
	numTriangles := len(faces) / 3

	if options == nil {
		options = &TriangleMeshOptions{}
	}
	if options.Normals != nil && len(options.Normals) != numTriangles {
		return nil, errors.Errorf("got %d normals for %d triangles", len(options.Normals), numTriangles)
	}
	if options.Materials != nil && len(options.Materials) != numTriangles {
		return nil, errors.Errorf("got %d materials for %d triangles", len(options.Materials), numTriangles)
	}
	for _, index := range faces {
		if index < 0 || index >= len(vertices) {
			return nil, errors.Errorf("face index %d out of range for %d vertices", index, len(vertices))
		}
	}

	var vertexNormals []core.Vec3
	if options.SmoothNormals && options.Normals == nil {
		vertexNormals = ComputeVertexNormals(vertices, faces)
	}

	triangles := make([]core.Hittable, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]

		triangleMaterial := material
		if options.Materials != nil {
			triangleMaterial = options.Materials[i]
		}

		switch {
		case options.Normals != nil:
			triangles[i] = NewTriangleWithNormal(vertices[i0], vertices[i1], vertices[i2], options.Normals[i], triangleMaterial)
		case vertexNormals != nil:
			normal := vertexNormals[i0].Add(vertexNormals[i1]).Add(vertexNormals[i2])
			triangles[i] = NewTriangleWithNormal(vertices[i0], vertices[i1], vertices[i2], normal, triangleMaterial)
		default:
			triangles[i] = NewTriangle(vertices[i0], vertices[i1], vertices[i2], triangleMaterial)
		}
	}
	return triangles, nil
}

// ComputeVertexNormals averages the area-weighted face normals around each vertex.
// Vertices whose accumulated normal vanishes (unreferenced or degenerate) get +Y.
func ComputeVertexNormals(vertices []core.Vec3, faces []int) []core.Vec3 {
	normals := make([]core.Vec3, len(vertices))
	for i := 0; i+2 < len(faces); i += 3 {
		i0, i1, i2 := faces[i], faces[i+1], faces[i+2]
		faceNormal := vertices[i1].Subtract(vertices[i0]).Cross(vertices[i2].Subtract(vertices[i0]))
		normals[i0] = normals[i0].Add(faceNormal)
		normals[i1] = normals[i1].Add(faceNormal)
		normals[i2] = normals[i2].Add(faceNormal)
	}

	up := core.NewVec3(0, 1, 0)
	for i, n := range normals {
		if n.LengthSquared() < 1e-20 {
			normals[i] = up
			continue
		}
		normals[i] = n.Normalize()
	}
	return normals
}
