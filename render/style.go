package render

import (
	"fmt"
	"image"
	"image/color"
)

// PointStyle selects how a single sample is marked.
type PointStyle uint8

const (
	// Point marks a sample with one pixel.
	Point PointStyle = iota
	// Cross marks a sample with its pixel and the four diagonal neighbours.
	Cross
)

func (s PointStyle) String() string {
	switch s {
	case Point:
		return "point"
	case Cross:
		return "cross"
	default:
		return "?"
	}
}

// ParsePointStyle is the inverse of PointStyle.String.
func ParsePointStyle(s string) (PointStyle, error) {
	switch s {
	case "point":
		return Point, nil
	case "cross":
		return Cross, nil
	default:
		return 0, fmt.Errorf("unknown point style %q", s)
	}
}

type plotFunc func(img *image.RGBA, x, y int, c color.RGBA)

func (s PointStyle) plotter() plotFunc {
	if s == Cross {
		return plotCross
	}
	return plotPoint
}

func plotPoint(img *image.RGBA, x, y int, c color.RGBA) {
	setPixel(img, x, y, c)
}

func plotCross(img *image.RGBA, x, y int, c color.RGBA) {
	setPixel(img, x-1, y-1, c)
	setPixel(img, x+1, y-1, c)
	setPixel(img, x, y, c)
	setPixel(img, x-1, y+1, c)
	setPixel(img, x+1, y+1, c)
}
