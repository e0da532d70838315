package material

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/physical.wgsl
var physicalSource string

//go:embed assets/refraction.wgsl
var refractionSource string

//go:embed assets/backface.wgsl
var backfaceSource string

//go:embed assets/unlit.wgsl
var unlitSource string

// Kind selects the shader program a material renders with.
type Kind int

const (
	// KindPhysical is the metal/roughness shader lit by spot lights and the environment map.
	KindPhysical Kind = iota

	// KindRefraction samples the environment and backface capture targets in screen space.
	KindRefraction

	// KindBackface writes back-face view-space normals into the backface capture target.
	KindBackface

	// KindUnlit draws a tinted texture, used for title text and the background plane.
	KindUnlit
)

// Kinds lists every material kind in declaration order.
var Kinds = []Kind{KindPhysical, KindRefraction, KindBackface, KindUnlit}

// String returns the program name used in pipeline keys.
func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindRefraction:
		return "refraction"
	case KindBackface:
		return "backface"
	case KindUnlit:
		return "unlit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source returns the WGSL program for the kind, with vs_main and fs_main in one module.
// Unknown kinds return an empty string.
func (k Kind) Source() string {
	switch k {
	case KindPhysical:
		return physicalSource
	case KindRefraction:
		return refractionSource
	case KindBackface:
		return backfaceSource
	case KindUnlit:
		return unlitSource
	default:
		return ""
	}
}

// Side selects which faces of a mesh are rasterised.
type Side int

const (
	// SideFront draws front faces only.
	SideFront Side = iota

	// SideBack draws back faces only.
	SideBack

	// SideDouble draws both faces.
	SideDouble
)

// String returns the side name used in pipeline keys.
func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	case SideDouble:
		return "double"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// CullMode maps the side to the pipeline cull mode (CCW front faces).
func (s Side) CullMode() wgpu.CullMode {
	switch s {
	case SideFront:
		return wgpu.CullModeBack
	case SideBack:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

// RenderState is the fixed-function state a material needs from its pipeline.
type RenderState struct {
	Cull  wgpu.CullMode
	Blend bool
}
