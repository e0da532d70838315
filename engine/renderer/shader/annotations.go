// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @oxy: that drive struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the pipeline and scene to wire GPU resources to bind groups.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// at the annotation site. It produces no declaration.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and records the declaration so the scene can match the group to a provider by struct type.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a provider identity for a group and binding without
	// generating WGSL. The hand-written declaration (textures, samplers) follows the annotation.
	// An optional binding role names the purpose of the binding inside the provider.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example:
	//   //@oxy:provider 1 1 material env_map
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line, used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// annotationArgVertex identifies the VertexInput struct (position, normal, uv).
	// Source: engine/model/assets/vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgObject identifies the ObjectUniform struct holding a node's world matrix.
	// Source: engine/model/assets/object_uniform.wgsl
	AnnotationArgObject AnnotationArg = "object"

	// AnnotationArgInstance identifies the InstanceData struct written by the orbit animator.
	// Source: engine/renderer/animator/assets/instance_data.wgsl
	AnnotationArgInstance AnnotationArg = "instance"

	// AnnotationArgSpotLight identifies the SpotLight struct.
	// Source: engine/light/assets/spot_light.wgsl
	AnnotationArgSpotLight AnnotationArg = "spot_light"

	// AnnotationArgLightHeader identifies the LightHeader struct holding the light count.
	// Source: engine/light/assets/light_header.wgsl
	AnnotationArgLightHeader AnnotationArg = "light_header"

	// AnnotationArgPhysicalParams identifies the PhysicalParams material struct.
	// Source: engine/renderer/material/assets/physical_params.wgsl
	AnnotationArgPhysicalParams AnnotationArg = "physical_params"

	// AnnotationArgRefractionParams identifies the RefractionParams material struct.
	// Source: engine/renderer/material/assets/refraction_params.wgsl
	AnnotationArgRefractionParams AnnotationArg = "refraction_params"

	// AnnotationArgUnlitParams identifies the UnlitParams material struct used by text and background.
	// Source: engine/renderer/material/assets/unlit_params.wgsl
	AnnotationArgUnlitParams AnnotationArg = "unlit_params"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which scene-level BindGroupProvider owns a bind group.

const (
	// AnnotationArgMaterial identifies the material provider (uniforms, textures, samplers).
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgObjectProvider identifies the per-node provider (model matrix + instance matrices).
	AnnotationArgObjectProvider AnnotationArg = "object"

	// AnnotationArgLighting identifies the lighting provider (spot lights + environment map).
	AnnotationArgLighting AnnotationArg = "lighting"
)

// ── Binding role arguments ─────────────────────────────────────────────────────
// Optional fourth argument of a provider annotation.

const (
	// AnnotationArgEnvMap identifies an environment texture (IBL map or env capture target).
	AnnotationArgEnvMap AnnotationArg = "env_map"

	// AnnotationArgEnvSampler identifies the sampler paired with the environment texture.
	AnnotationArgEnvSampler AnnotationArg = "env_sampler"

	// AnnotationArgBackfaceMap identifies the backface-normal capture target.
	AnnotationArgBackfaceMap AnnotationArg = "backface_map"

	// AnnotationArgBaseTexture identifies a base colour texture (glyphs, background image).
	AnnotationArgBaseTexture AnnotationArg = "base_texture"

	// AnnotationArgBaseSampler identifies the sampler paired with the base colour texture.
	AnnotationArgBaseSampler AnnotationArg = "base_sampler"

	// AnnotationArgScreenSampler identifies the sampler used for screen-space target lookups.
	AnnotationArgScreenSampler AnnotationArg = "screen_sampler"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	annotationArgVertex,
	AnnotationArgObject,
	AnnotationArgInstance,
	AnnotationArgSpotLight,
	AnnotationArgLightHeader,
	AnnotationArgPhysicalParams,
	AnnotationArgRefractionParams,
	AnnotationArgUnlitParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgMaterial,
	AnnotationArgObjectProvider,
	AnnotationArgLighting,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgEnvMap,
	AnnotationArgEnvSampler,
	AnnotationArgBackfaceMap,
	AnnotationArgBaseTexture,
	AnnotationArgBaseSampler,
	AnnotationArgScreenSampler,
}

// structProviders maps a struct type used in a group annotation to the provider that owns it.
var structProviders = map[AnnotationArg]AnnotationArg{
	AnnotationArgCamera:           AnnotationArgCamera,
	AnnotationArgObject:           AnnotationArgObjectProvider,
	AnnotationArgInstance:         AnnotationArgObjectProvider,
	AnnotationArgSpotLight:        AnnotationArgLighting,
	AnnotationArgLightHeader:      AnnotationArgLighting,
	AnnotationArgPhysicalParams:   AnnotationArgMaterial,
	AnnotationArgRefractionParams: AnnotationArgMaterial,
	AnnotationArgUnlitParams:      AnnotationArgMaterial,
}

// StructType returns the struct type key of a group annotation with any array<> wrapper removed.
//
// Parameters:
//   - a: the annotation to inspect
//
// Returns:
//   - AnnotationArg: the element struct type
//   - bool: false when a is not a group annotation
func StructType(a Annotation) (AnnotationArg, bool) {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return "", false
	}
	typeArg := string(a.Args[2])
	if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
		typeArg = strings.TrimSuffix(inner, ">")
	}
	return AnnotationArg(typeArg), true
}

// ProviderIdentity resolves which provider owns the group named by a declaration.
// Provider annotations name it directly; group annotations resolve it from their struct type.
//
// Parameters:
//   - a: a declaration collected by the pre-processor
//
// Returns:
//   - AnnotationArg: the provider identity
//   - bool: false when the declaration does not identify a provider
func ProviderIdentity(a Annotation) (AnnotationArg, bool) {
	switch a.Type {
	case AnnotationTypeProvider:
		if len(a.Args) == 0 {
			return "", false
		}
		return a.Args[0], true
	case AnnotationTypeBindingGroup:
		st, ok := StructType(a)
		if !ok {
			return "", false
		}
		id, ok := structProviders[st]
		return id, ok
	}
	return "", false
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Lines without the prefix return nil with no error.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires five arguments (group, binding, address space, var name, struct type)", lineNum)
		}
		groupInt, bindingInt, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			typeArg = strings.TrimSuffix(inner, ">")
			if AnnotationArg(args[3]) == annotationArgStorageTypeUniform {
				return nil, fmt.Errorf("line %d: runtime-sized array %q cannot live in a uniform buffer", lineNum, args[5])
			}
		}
		if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, typeArg)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, bindingInt, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

// parseSlot converts the group and binding arguments of an annotation to non-negative integers.
func parseSlot(group, binding string, lineNum int) (int, int, error) {
	g, err := strconv.Atoi(group)
	if err != nil || g < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, group)
	}
	b, err := strconv.Atoi(binding)
	if err != nil || b < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, binding)
	}
	return g, b, nil
}
