package scene

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string // Unique identifier used on the command line
	DisplayName string // Human readable name
	Description string // One-line summary
}

type builtinScene struct {
	info  SceneInfo
	build func() *Scene
}

var builtinScenes = map[string]builtinScene{}

func register(id, description string, build func() *Scene) {
	builtinScenes[id] = builtinScene{
		info: SceneInfo{
			ID:          id,
			DisplayName: titleCase(id),
			Description: description,
		},
		build: build,
	}
}

func init() {
	register("spheres", "Ground sphere, three large spheres and a field of small instanced spheres", NewSpheresScene)
	register("instanced", "Grid of rotated and scaled box instances sharing one prototype", NewInstancedGridScene)
	register("disney", "Rows of Disney principled spheres sweeping roughness and metallic", NewDisneyScene)
	register("cornell", "Cornell box with instanced boxes and a ceiling light", NewCornellScene)
}

// Names returns the built-in scene identifiers in sorted order
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for id := range builtinScenes {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// ListAllScenes returns metadata for every built-in scene, sorted by ID
func ListAllScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtinScenes))
	for _, id := range Names() {
		infos = append(infos, builtinScenes[id].info)
	}
	return infos
}

// Lookup returns the metadata for a built-in scene
func Lookup(id string) (SceneInfo, error) {
	entry, ok := builtinScenes[strings.ToLower(id)]
	if !ok {
		return SceneInfo{}, errors.Errorf("unknown scene %q (available: %s)", id, strings.Join(Names(), ", "))
	}
	return entry.info, nil
}

// Build constructs a fresh copy of a built-in scene. The returned scene
// has not been preprocessed.
func Build(id string) (*Scene, error) {
	if _, err := Lookup(id); err != nil {
		return nil, err
	}
	return builtinScenes[strings.ToLower(id)].build(), nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
