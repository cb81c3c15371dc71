package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// PLY storage formats
const (
	FormatASCII              = "ascii"
	FormatBinaryLittleEndian = "binary_little_endian"
	FormatBinaryBigEndian    = "binary_big_endian"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element block declared in the header
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// Element returns the named element, if declared
func (h *PLYHeader) Element(name string) (PLYElement, bool) {
	for _, element := range h.Elements {
		if element.Name == name {
			return element, true
		}
	}
	return PLYElement{}, false
}

// Mesh is indexed triangle geometry ready to become a prototype
type Mesh struct {
	Positions []core.Vec3
	Indices   []int       // Three per triangle
	Normals   []core.Vec3 // Per-vertex normals, empty if the file has none
}

// TriangleCount returns the number of triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the box around every position
func (m *Mesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Positions...)
}

// LoadPLY loads a PLY file. Polygons are fan triangulated.
func LoadPLY(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return mesh, nil
}

// ReadPLY parses PLY data from r
func ReadPLY(r io.Reader) (*Mesh, error) {
	reader := bufio.NewReaderSize(r, 1<<20)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse PLY header")
	}

	var source valueSource
	switch header.Format {
	case FormatASCII:
		source = &asciiSource{reader: reader}
	case FormatBinaryLittleEndian:
		source = &binarySource{reader: reader, order: binary.LittleEndian}
	case FormatBinaryBigEndian:
		source = &binarySource{reader: reader, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("unsupported PLY format: %q", header.Format)
	}

	if _, ok := header.Element("vertex"); !ok {
		return nil, errors.New("PLY file has no vertex element")
	}

	mesh := &Mesh{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readVertices(source, element, mesh)
		case "face":
			err = readFaces(source, element, mesh)
		default:
			err = skipElement(source, element)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s element", element.Name)
		}
	}

	for i, index := range mesh.Indices {
		if index < 0 || index >= len(mesh.Positions) {
			return nil, errors.Errorf("face index %d (at %d) out of range for %d vertices", index, i, len(mesh.Positions))
		}
	}
	return mesh, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	first := true

	for {
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, errors.Wrap(err, "header ended before end_header")
		}
		line = strings.TrimSpace(line)

		if first {
			if line != "ply" {
				return nil, errors.Errorf("missing ply magic, got %q", line)
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid format line %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse property")
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Properties = append(current.Properties, prop)
		default:
			return nil, errors.Errorf("unexpected header line %q", line)
		}
	}

	if header.Format == "" {
		return nil, errors.New("header has no format line")
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	prop := PLYProperty{}
	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, errors.Errorf("unknown list types %s %s", prop.ListType, prop.DataType)
		}
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
		if getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, errors.Errorf("unknown property type %s", prop.Type)
		}
	}
	return prop, nil
}

// getTypeSize returns the size in bytes of a PLY scalar type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

func readVertices(source valueSource, element PLYElement, mesh *Mesh) error {
	position := [3]int{-1, -1, -1}
	normal := [3]int{-1, -1, -1}
	for i, prop := range element.Properties {
		switch prop.Name {
		case "x":
			position[0] = i
		case "y":
			position[1] = i
		case "z":
			position[2] = i
		case "nx":
			normal[0] = i
		case "ny":
			normal[1] = i
		case "nz":
			normal[2] = i
		}
	}
	for _, index := range position {
		if index < 0 {
			return errors.New("vertex element needs x, y and z properties")
		}
	}
	hasNormals := normal[0] >= 0 && normal[1] >= 0 && normal[2] >= 0

	mesh.Positions = make([]core.Vec3, 0, capacityFor(element.Count))
	if hasNormals {
		mesh.Normals = make([]core.Vec3, 0, capacityFor(element.Count))
	}

	values := make([]float64, len(element.Properties))
	for v := 0; v < element.Count; v++ {
		for i, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(source, prop); err != nil {
					return errors.Wrapf(err, "vertex %d", v)
				}
				continue
			}
			value, err := source.scalar(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "vertex %d property %s", v, prop.Name)
			}
			values[i] = value
		}
		mesh.Positions = append(mesh.Positions, core.NewVec3(values[position[0]], values[position[1]], values[position[2]]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(values[normal[0]], values[normal[1]], values[normal[2]]))
		}
	}
	return nil
}

// maxPrealloc caps slice preallocation from header counts; larger meshes grow by append
const maxPrealloc = 1 << 16

func capacityFor(count int) int {
	return min(count, maxPrealloc)
}

func readFaces(source valueSource, element PLYElement, mesh *Mesh) error {
	indicesProp := -1
	for i, prop := range element.Properties {
		if prop.IsList && (prop.Name == "vertex_indices" || prop.Name == "vertex_index") {
			indicesProp = i
		}
	}
	if indicesProp < 0 {
		return errors.New("face element has no vertex_indices list")
	}

	mesh.Indices = make([]int, 0, 3*capacityFor(element.Count))
	var polygon []int
	for f := 0; f < element.Count; f++ {
		for i, prop := range element.Properties {
			if i != indicesProp {
				var err error
				if prop.IsList {
					err = skipList(source, prop)
				} else {
					_, err = source.scalar(prop.Type)
				}
				if err != nil {
					return errors.Wrapf(err, "face %d property %s", f, prop.Name)
				}
				continue
			}

			count, err := source.scalar(prop.ListType)
			if err != nil {
				return errors.Wrapf(err, "face %d vertex count", f)
			}
			if count < 3 {
				return errors.Errorf("face %d has %v vertices", f, count)
			}
			polygon = polygon[:0]
			for k := 0; k < int(count); k++ {
				index, err := source.scalar(prop.DataType)
				if err != nil {
					return errors.Wrapf(err, "face %d index %d", f, k)
				}
				polygon = append(polygon, int(index))
			}
			// Fan around the first vertex
			for k := 1; k+1 < len(polygon); k++ {
				mesh.Indices = append(mesh.Indices, polygon[0], polygon[k], polygon[k+1])
			}
		}
	}
	return nil
}

func skipElement(source valueSource, element PLYElement) error {
	for e := 0; e < element.Count; e++ {
		for _, prop := range element.Properties {
			var err error
			if prop.IsList {
				err = skipList(source, prop)
			} else {
				_, err = source.scalar(prop.Type)
			}
			if err != nil {
				return errors.Wrapf(err, "%s %d property %s", element.Name, e, prop.Name)
			}
		}
	}
	return nil
}

func skipList(source valueSource, prop PLYProperty) error {
	count, err := source.scalar(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(count); k++ {
		if _, err := source.scalar(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// valueSource yields successive scalar values of the element data
type valueSource interface {
	scalar(dataType string) (float64, error)
}

type asciiSource struct {
	reader *bufio.Reader
}

// scalar reads the next whitespace-separated token
func (s *asciiSource) scalar(dataType string) (float64, error) {
	var token []byte
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			if err == io.EOF && len(token) > 0 {
				break
			}
			return 0, errors.Wrap(err, "unexpected end of ascii data")
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			if len(token) > 0 {
				break
			}
			continue
		}
		token = append(token, b)
	}

	value, err := strconv.ParseFloat(string(token), 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s value %q", dataType, token)
	}
	return value, nil
}

type binarySource struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

// scalar decodes one value of dataType in the source byte order
func (s *binarySource) scalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, errors.Errorf("unknown type %s", dataType)
	}
	data := s.buf[:size]
	if _, err := io.ReadFull(s.reader, data); err != nil {
		return 0, errors.Wrap(err, "unexpected end of binary data")
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(s.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(s.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(s.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(s.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(s.order.Uint32(data))), nil
	default: // double, float64
		return math.Float64frombits(s.order.Uint64(data)), nil
	}
}
