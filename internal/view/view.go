// Package view turns a check history into what the widget shows: a status
// label with its color and a small bar chart. Everything here is a pure
// function of the history.
package view

import (
	"github.com/hamed0406/statuswidget/internal/domain"
)

type Status string

const (
	StatusChecking Status = "checking"
	StatusUp       Status = "up"
	StatusDown     Status = "down"
)

const (
	ColorChecking = "#9ca3af"
	ColorUp       = "#22c55e"
	ColorDown     = "#ef4444"
)

// Chart geometry, in pixels.
const (
	ChartWidth    = 120
	ChartHeight   = 36
	BarGap        = 2
	minFailHeight = 6
)

// StatusOf derives the label from the most recent entry only.
func StatusOf(h domain.History) Status {
	last := h.Last()
	switch {
	case last == nil:
		return StatusChecking
	case last.Success:
		return StatusUp
	default:
		return StatusDown
	}
}

func (s Status) Color() string {
	switch s {
	case StatusUp:
		return ColorUp
	case StatusDown:
		return ColorDown
	}
	return ColorChecking
}

// Badge is the short text shown inside the status dot.
func (s Status) Badge() string {
	switch s {
	case StatusUp:
		return "OK"
	case StatusDown:
		return "X"
	}
	return "..."
}

type Bar struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	OK     bool   `json:"ok"`
	Color  string `json:"color"`
}

type Chart struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Bars   []Bar `json:"bars"`
}

// Bars lays out one bar per entry, left to right, oldest first. Failures
// are drawn at 30% height (never below 6px) so they stay visible.
func Bars(h domain.History) Chart {
	n := len(h)
	if n < 1 {
		n = 1
	}
	barWidth := (ChartWidth - BarGap*(n-1)) / n
	if barWidth < 1 {
		barWidth = 1
	}
	failHeight := ChartHeight * 3 / 10
	if failHeight < minFailHeight {
		failHeight = minFailHeight
	}

	c := Chart{Width: ChartWidth, Height: ChartHeight, Bars: make([]Bar, 0, len(h))}
	for i, r := range h {
		height, color := ChartHeight, ColorUp
		if !r.Success {
			height, color = failHeight, ColorDown
		}
		c.Bars = append(c.Bars, Bar{
			X:      i * (barWidth + BarGap),
			Y:      ChartHeight - height,
			Width:  barWidth,
			Height: height,
			OK:     r.Success,
			Color:  color,
		})
	}
	return c
}
