package scene

import (
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-instanced-raytracer/pkg/logging"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestNames(t *testing.T) {
	test.That(t, Names(), test.ShouldResemble, []string{"cornell", "disney", "instanced", "spheres"})

	infos := ListAllScenes()
	test.That(t, infos, test.ShouldHaveLength, 4)
	test.That(t, infos[0].ID, test.ShouldEqual, "cornell")
	test.That(t, infos[0].DisplayName, test.ShouldEqual, "Cornell")
	for _, info := range infos {
		test.That(t, info.Description, test.ShouldNotBeEmpty)
	}
}

func TestLookup(t *testing.T) {
	info, err := Lookup("Disney")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.ID, test.ShouldEqual, "disney")

	_, err = Lookup("dragon")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "available: cornell, disney, instanced, spheres")

	_, err = Build("dragon")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBuiltinScenesAssemble(t *testing.T) {
	for _, name := range Names() {
		for _, mode := range []InstancingMode{InstancingLinear, InstancingTwoLevel} {
			t.Run(name+"/"+mode.String(), func(t *testing.T) {
				s, err := Build(name)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, s.Name, test.ShouldEqual, name)
				test.That(t, s.Camera.Validate(), test.ShouldBeNil)
				test.That(t, s.Render.Validate(), test.ShouldBeNil)
				test.That(t, s.InstanceCount(), test.ShouldBeGreaterThan, 0)
				test.That(t, s.GetPrimitiveCount(), test.ShouldBeGreaterThanOrEqualTo, s.InstanceCount())

				err = s.Preprocess(mode, logging.NewTestLogger(t))
				test.That(t, err, test.ShouldBeNil)
				test.That(t, s.World, test.ShouldNotBeNil)
				test.That(t, s.World.BoundingBox().IsEmpty(), test.ShouldBeFalse)
			})
		}
	}
}

func TestBuildReturnsFreshScene(t *testing.T) {
	first, err := Build("cornell")
	test.That(t, err, test.ShouldBeNil)
	second, err := Build("cornell")
	test.That(t, err, test.ShouldBeNil)

	first.Groups = nil
	test.That(t, second.Groups, test.ShouldNotBeEmpty)
}

func TestSharedPrototypes(t *testing.T) {
	tests := []struct {
		name       string
		prototypes int
		instances  int
	}{
		// walls, light, cube
		{"cornell", 3, 4},
		// ground, rows of unit spheres, backdrop
		{"disney", 3, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build(tt.name)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, s.PrototypeCount(), test.ShouldEqual, tt.prototypes)
			test.That(t, s.InstanceCount(), test.ShouldEqual, tt.instances)
		})
	}

	grid, err := Build("instanced")
	test.That(t, err, test.ShouldBeNil)
	// ground plus one box prototype shared by every grid cell
	test.That(t, grid.PrototypeCount(), test.ShouldEqual, 2)
	test.That(t, grid.InstanceCount(), test.ShouldEqual, gridSize*gridSize+1)
}
