package view

import (
	"bytes"
	"fmt"
)

// RenderSVG draws the chart as a standalone SVG document.
func RenderSVG(c Chart) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		c.Width, c.Height, c.Width, c.Height)
	for _, bar := range c.Bars {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s"/>`,
			bar.X, bar.Y, bar.Width, bar.Height, bar.Color)
	}
	b.WriteString(`</svg>`)
	return b.Bytes()
}
