package models

import "image"

// Rect is an axis-aligned rectangle in input image pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectFromImage converts an image.Rectangle into a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Image converts the Rect back into an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Face is a single detection reported by the engine. Values are copied from
// the engine verbatim: confidence and angle use the engine's own scale.
type Face struct {
	Rect       Rect `json:"rect"`
	Confidence int  `json:"confidence"`
	Angle      int  `json:"angle"`
}
