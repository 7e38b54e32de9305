package detection

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/menta2k/grid-locator/pkg/grid"
)

// MaxElements caps how many regions the multi-element prompt asks for
const MaxElements = 5

var multiElementTemplate = strings.TrimSpace(dedent.Dedent(`
	Analyze this image as if it had a chess-like grid overlay with %[1]d columns (A-%[2]s) and %[3]d rows (1-%[3]d). Each grid cell is %[4]dx%[4]d pixels.
	Identify all interesting or notable elements in the image. For each element, provide its location using the grid coordinates (e.g., ["B2", "B3"] for an element spanning two cells) and a brief description.
	Format your response as a JSON object with an "elements" array, where each element has "grid_locations" (an array of grid coordinates) and "description" fields.
	Limit your response to the %[5]d most interesting or notable elements.
	Respond with the JSON object only, no markdown or other text.
`))

var singleTargetTemplate = strings.TrimSpace(dedent.Dedent(`
	This image has a grid overlay with %[1]d columns labelled A-%[2]s along the top and %[3]d rows labelled 1-%[3]d down the left side. Each grid cell is %[4]dx%[4]d pixels.
	Find the %[5]s in the image and report the single grid cell that contains its center.
	Respond with a JSON object of the form {"grid_location": "B2", "description": "short description of what you found"}.
	Respond with the JSON object only, no markdown or other text.
`))

// MultiElementPrompt asks for up to MaxElements notable regions on an implied grid
func MultiElementPrompt(g grid.Spec) string {
	return fmt.Sprintf(multiElementTemplate, g.Columns, g.LastColumn(), g.Rows, g.CellSize, MaxElements)
}

// SingleTargetPrompt asks for the cell holding one named target on a drawn grid
func SingleTargetPrompt(g grid.Spec, target string) string {
	return fmt.Sprintf(singleTargetTemplate, g.Columns, g.LastColumn(), g.Rows, g.CellSize, target)
}
