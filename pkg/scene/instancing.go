package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/logging"
)

// Prototype is shared local-space geometry that instance groups place in the world.
// Groups that point at the same Prototype share one bottom-level BVH.
type Prototype struct {
	Name       string
	Primitives []core.Hittable
}

// NewPrototype creates a named prototype from primitives
func NewPrototype(name string, primitives ...core.Hittable) *Prototype {
	return &Prototype{Name: name, Primitives: primitives}
}

// InstanceGroup places one prototype once per transform. A non-nil
// Material overrides the materials stored on the prototype's primitives.
type InstanceGroup struct {
	Prototype  *Prototype
	Transforms []mgl64.Mat4
	Material   core.Material
}

// InstancingMode selects how instance groups are combined into a world
type InstancingMode int

const (
	// InstancingLinear tests each group's instances with a linear scan
	InstancingLinear InstancingMode = iota
	// InstancingTwoLevel builds a top-level BVH over every instance
	InstancingTwoLevel
)

// String returns the mode name used on the command line
func (m InstancingMode) String() string {
	switch m {
	case InstancingLinear:
		return "linear"
	case InstancingTwoLevel:
		return "bvh"
	default:
		return "unknown"
	}
}

// ParseInstancingMode parses "linear" or "bvh"
func ParseInstancingMode(name string) (InstancingMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return InstancingLinear, nil
	case "bvh", "two-level":
		return InstancingTwoLevel, nil
	default:
		return 0, errors.Errorf("unknown instancing mode %q (want linear or bvh)", name)
	}
}

// SRT composes scale, then rotation, then translation into one matrix
func SRT(translation core.Vec3, rotation mgl64.Quat, scale core.Vec3) mgl64.Mat4 {
	return core.Compose(core.Translation(translation), rotation.Normalize().Mat4(), core.Scaling(scale))
}

// Assemble validates the groups and builds the world they describe. Each
// distinct prototype gets exactly one BVH, shared by every instance of it.
func Assemble(groups []InstanceGroup, mode InstancingMode, logger logging.Logger) (core.Hittable, error) {
	logger = logging.OrNop(logger)
	if len(groups) == 0 {
		return nil, errors.New("scene has no instance groups")
	}
	if mode != InstancingLinear && mode != InstancingTwoLevel {
		return nil, errors.Errorf("unknown instancing mode %d", mode)
	}

	var err error
	transforms := make([][]core.Transform, len(groups))
	for i, group := range groups {
		if groupErr := validateGroup(group); groupErr != nil {
			err = multierr.Append(err, errors.Wrapf(groupErr, "group %d", i))
			continue
		}
		transforms[i] = make([]core.Transform, len(group.Transforms))
		for j, m := range group.Transforms {
			transform, transformErr := core.NewTransform(m)
			if transformErr != nil {
				err = multierr.Append(err, errors.Wrapf(transformErr, "group %d (%s) instance %d", i, group.Prototype.Name, j))
				continue
			}
			transforms[i][j] = transform
		}
	}
	if err != nil {
		return nil, err
	}

	prototypes := make(map[*Prototype]*core.BVH)
	for _, group := range groups {
		if _, ok := prototypes[group.Prototype]; ok {
			continue
		}
		bvh := core.NewBVHWithStrategy(group.Prototype.Primitives, core.SplitSAH)
		prototypes[group.Prototype] = bvh
		stats := bvh.Stats()
		logger.Debugw("built prototype",
			"name", group.Prototype.Name,
			"primitives", len(group.Prototype.Primitives),
			"nodes", stats.TotalNodes,
			"depth", stats.MaxDepth)
	}

	var world core.Hittable
	instanceCount := 0
	switch mode {
	case InstancingLinear:
		list := core.NewHittableList()
		for i, group := range groups {
			instanced := geometry.NewInstancedGeometry(prototypes[group.Prototype], transforms[i], group.Material)
			instanceCount += instanced.InstanceCount()
			list.Add(instanced)
		}
		world = list
		if list.Len() == 1 {
			world = list.Objects[0]
		}
	case InstancingTwoLevel:
		var instances []*geometry.Instance
		for i, group := range groups {
			for _, transform := range transforms[i] {
				instances = append(instances, geometry.NewInstance(prototypes[group.Prototype], transform, group.Material))
			}
		}
		instanceCount = len(instances)
		top := geometry.NewInstancedBVH(instances, core.SplitSAH)
		stats := top.Stats()
		logger.Debugw("built top-level hierarchy",
			"nodes", stats.TotalNodes,
			"leaves", stats.LeafNodes,
			"depth", stats.MaxDepth)
		world = top
	}

	logger.Infow("assembled scene",
		"mode", mode.String(),
		"groups", len(groups),
		"prototypes", len(prototypes),
		"instances", instanceCount)
	return world, nil
}

func validateGroup(group InstanceGroup) error {
	switch {
	case group.Prototype == nil:
		return errors.New("missing prototype")
	case len(group.Prototype.Primitives) == 0:
		return errors.Errorf("prototype %q has no primitives", group.Prototype.Name)
	case len(group.Transforms) == 0:
		return errors.Errorf("prototype %q has no instance transforms", group.Prototype.Name)
	}
	for i, primitive := range group.Prototype.Primitives {
		if primitive == nil {
			return errors.Errorf("prototype %q primitive %d is nil", group.Prototype.Name, i)
		}
	}
	return nil
}
