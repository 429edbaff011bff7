package l5solver

import (
	"fmt"
	"strings"
)

// smokeviewPass renders one 3D smoke quantity with the temperature slice
// and records it as a movie.
type smokeviewPass struct {
	smoke string
	movie string
}

const movieFrameRate = 10

var smokeviewPasses = []smokeviewPass{
	{smoke: "TEMPERATURE", movie: "movie_fire"},
	{smoke: "SOOT DENSITY", movie: "movie_smoke"},
}

// RenderSmokeviewScript writes the viewer batch script (.ssf) that turns a
// finished run into the fire and smoke movies.
func RenderSmokeviewScript(opts RenderOptions) string {
	var sb strings.Builder
	for _, p := range smokeviewPasses {
		sb.WriteString("LOAD3DSMOKE\n")
		fmt.Fprintf(&sb, " %s\n", p.smoke)
		sb.WriteString("LOADSLCF\n")
		fmt.Fprintf(&sb, " PBY=%s, QUANTITY=TEMPERATURE\n", fmtReal(opts.SlicePBY))
		sb.WriteString("RENDERALL\n")
		sb.WriteString("1 0\n")
		fmt.Fprintf(&sb, "%s\n", opts.CHID)
		sb.WriteString("MAKEMOVIE\n")
		fmt.Fprintf(&sb, "%s\n", p.movie)
		fmt.Fprintf(&sb, "%s\n", opts.CHID)
		fmt.Fprintf(&sb, "%d\n", movieFrameRate)
	}
	return sb.String()
}
