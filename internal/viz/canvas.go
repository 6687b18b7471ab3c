package viz

import "strings"

const brailleBlank = 0x2800

// dotBits maps a sub-pixel (row, column) inside a Braille cell to its bit.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width x Height grid of Braille cells, 2x4 dots each. Pixel
// y grows downwards.
type Canvas struct {
	Width, Height int
	cells         []uint8
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]uint8, w*h)}
}

// PixelSize returns the canvas size in dots.
func (c *Canvas) PixelSize() (w, h int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (int, uint8, bool) {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return 0, 0, false
	}
	return (y/4)*c.Width + x/2, dotBits[y%4][x%2], true
}

// Set lights the dot at (x, y); dots off the canvas are dropped.
func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] |= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	i, bit, ok := c.cell(x, y)
	return ok && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() { clear(c.cells) }

// DrawLine joins two dots with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillSquare lights a (2r+1) x (2r+1) block centred on (x, y).
func (c *Canvas) FillSquare(x, y, r int) {
	for j := y - r; j <= y+r; j++ {
		for i := x - r; i <= x+r; i++ {
			c.Set(i, j)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Height * (c.Width*3 + 1))
	for row := 0; row < c.Height; row++ {
		for _, bits := range c.cells[row*c.Width : (row+1)*c.Width] {
			b.WriteRune(brailleBlank + rune(bits))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps positions in [Lo, Hi] and energies in [ULo, UHi] onto the
// canvas, leaving Top dots of headroom for particles riding the curve.
type Viewport struct {
	Lo, Hi   float64
	ULo, UHi float64
	Top      int
	canvas   *Canvas
}

// Fit samples u over [lo, hi] once per dot column and returns the viewport
// spanning its range together with the samples.
func (c *Canvas) Fit(lo, hi float64, u func(float64) float64, top int) (*Viewport, []float64) {
	cw, _ := c.PixelSize()
	us := make([]float64, cw)
	for i := range us {
		us[i] = u(lo + (hi-lo)*float64(i)/float64(max(cw-1, 1)))
	}
	vp := &Viewport{Lo: lo, Hi: hi, ULo: us[0], UHi: us[0], Top: top, canvas: c}
	for _, v := range us {
		vp.ULo, vp.UHi = min(vp.ULo, v), max(vp.UHi, v)
	}
	if vp.UHi == vp.ULo {
		vp.UHi = vp.ULo + 1
	}
	return vp, us
}

func (v *Viewport) X(x float64) int {
	cw, _ := v.canvas.PixelSize()
	return int((x - v.Lo) / (v.Hi - v.Lo) * float64(cw-1))
}

func (v *Viewport) Y(u float64) int {
	_, ch := v.canvas.PixelSize()
	bottom := ch - 3
	return bottom - int((u-v.ULo)/(v.UHi-v.ULo)*float64(bottom-v.Top))
}

// Curve draws pre-sampled values, one per dot column.
func (v *Viewport) Curve(us []float64) {
	for i := 1; i < len(us); i++ {
		v.canvas.DrawLine(i-1, v.Y(us[i-1]), i, v.Y(us[i]))
	}
}

// Mark draws a particle at position x with energy u, lifted off the curve.
func (v *Viewport) Mark(x, u float64, r int) {
	v.canvas.FillSquare(v.X(x), v.Y(u)-3, r)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
