package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects how the grid is presented to the vision model
type Mode string

const (
	// ModePadded pads the image and leaves the grid implied
	ModePadded Mode = "padded"
	// ModeDrawn draws grid lines and labels on the image
	ModeDrawn Mode = "drawn"
)

// ParseMode resolves a mode name, case-insensitively
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePadded:
		return ModePadded, nil
	case ModeDrawn:
		return ModeDrawn, nil
	}
	return "", fmt.Errorf("unknown mode %q (use %q or %q)", s, ModePadded, ModeDrawn)
}

// EncodedImage is an image serialized for transport in a JSON payload
type EncodedImage struct {
	MediaType string
	Data      string // base64, standard encoding
}

// Element is one region reported by the model
type Element struct {
	GridLocations []string `json:"grid_locations"`
	Description   string   `json:"description"`
}

// Response is a parsed model reply: either *MultiElement or *SingleTarget
type Response interface {
	isResponse()
}

// MultiElement lists up to five notable regions, each spanning one or more cells
type MultiElement struct {
	Elements []Element `json:"elements"`
}

// SingleTarget locates one named region in a single cell
type SingleTarget struct {
	GridLocation string `json:"grid_location"`
	Description  string `json:"description"`
}

func (*MultiElement) isResponse() {}
func (*SingleTarget) isResponse() {}

// MarshalIndent renders a response the way the CLI prints it
func MarshalIndent(r Response) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
