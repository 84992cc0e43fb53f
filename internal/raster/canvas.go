// Package raster owns the packed RGBA8 buffer the Builder paints into,
// the clipped-region math used to crop it, and the Circle value type
// drawn onto it.
package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
)

// Pixel is a single RGBA8 sample. Every Pixel produced by this package
// has A == 255 unless it was decoded from a host-provided image via Open,
// or is the zero Pixel that At returns for an out-of-bounds coordinate.
type Pixel struct {
	R, G, B, A uint8
}

// DecodeError wraps a failure to parse an input image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a failure to write an output image.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Canvas is an owned RGBA8 raster. CenterX/CenterY are carried along by
// Section so that a circle's original center still maps correctly into a
// cropped, possibly-overhanging, region.
type Canvas struct {
	width, height int
	stride        int
	pix           []uint8
	CenterX       int
	CenterY       int
}

// New allocates an opaque black canvas of the given dimensions.
func New(width, height int) *Canvas {
	c := &Canvas{
		width:  width,
		height: height,
		stride: width * 4,
		pix:    make([]uint8, width*height*4),
	}
	for i := 3; i < len(c.pix); i += 4 {
		c.pix[i] = 255
	}
	return c
}

// Open decodes a host-provided image file into a Canvas. The decoded
// alpha channel is preserved verbatim; the A=255 invariant applies only
// to canvases this package subsequently draws into, not to raw input.
func Open(path string) (*Canvas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	bounds := img.Bounds()
	c := &Canvas{
		width:   bounds.Dx(),
		height:  bounds.Dy(),
		stride:  bounds.Dx() * 4,
		pix:     make([]uint8, bounds.Dx()*bounds.Dy()*4),
		CenterX: bounds.Dx() / 2,
		CenterY: bounds.Dy() / 2,
	}

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*c.stride + x*4
			c.pix[i] = uint8(r >> 8)
			c.pix[i+1] = uint8(g >> 8)
			c.pix[i+2] = uint8(b >> 8)
			c.pix[i+3] = uint8(a >> 8)
		}
	}

	return c, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// At returns the pixel at (x, y). Out-of-bounds coordinates return the
// zero Pixel.
func (c *Canvas) At(x, y int) Pixel {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Pixel{}
	}
	i := y*c.stride + x*4
	return Pixel{R: c.pix[i], G: c.pix[i+1], B: c.pix[i+2], A: c.pix[i+3]}
}

// Section returns an independent copy of the real (clipped) rectangle of
// the region, carrying RealCenterX/RealCenterY forward as CenterX/CenterY
// so a circle's original center still lands correctly in the crop.
func (c *Canvas) Section(r Region) *Canvas {
	ox := int(r.RealOriginX())
	oy := int(r.RealOriginY())
	w := int(r.RealWidth())
	h := int(r.RealHeight())

	out := New(w, h)
	out.CenterX = int(r.RealCenterX())
	out.CenterY = int(r.RealCenterY())

	for y := 0; y < h; y++ {
		srcY := oy + y
		if srcY < 0 || srcY >= c.height {
			continue
		}
		for x := 0; x < w; x++ {
			srcX := ox + x
			if srcX < 0 || srcX >= c.width {
				continue
			}
			si := srcY*c.stride + srcX*4
			di := y*out.stride + x*4
			copy(out.pix[di:di+4], c.pix[si:si+4])
		}
	}
	return out
}

// Clone returns an independent copy of c.
func (c *Canvas) Clone() *Canvas {
	out := &Canvas{
		width:   c.width,
		height:  c.height,
		stride:  c.stride,
		pix:     make([]uint8, len(c.pix)),
		CenterX: c.CenterX,
		CenterY: c.CenterY,
	}
	copy(out.pix, c.pix)
	return out
}

// Value sums (R+G+B) over every pixel; a cheap proxy for a region's
// brightness/content.
func (c *Canvas) Value() uint64 {
	var total uint64
	for i := 0; i < len(c.pix); i += 4 {
		total += uint64(c.pix[i]) + uint64(c.pix[i+1]) + uint64(c.pix[i+2])
	}
	return total
}

func byteDelta(a, b uint8) uint32 {
	if a >= b {
		return uint32(a - b)
	}
	return uint32(b - a)
}

// PixelDelta is the L1 distance between two pixels' RGB channels; alpha
// is ignored.
func PixelDelta(a, b Pixel) uint32 {
	return byteDelta(a.R, b.R) + byteDelta(a.G, b.G) + byteDelta(a.B, b.B)
}

// Delta sums the per-byte absolute difference between two same-sized
// canvases' raw RGBA buffers, alpha byte included. Because alpha is
// invariant at 255 on every canvas this package produces, including it
// is harmless and lets Delta scan flat bytes instead of decoded pixels.
func (c *Canvas) Delta(other *Canvas) uint64 {
	var total uint64
	n := len(c.pix)
	if len(other.pix) < n {
		n = len(other.pix)
	}
	for i := 0; i < n; i++ {
		total += uint64(byteDelta(c.pix[i], other.pix[i]))
	}
	return total
}

// IsEqual reports bytewise equality of the two canvases' buffers.
func (c *Canvas) IsEqual(other *Canvas) bool {
	if c.width != other.width || c.height != other.height {
		return false
	}
	for i := range c.pix {
		if c.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// DrawCircle rasterizes an opaque filled disc. Pixels outside the canvas
// are silently clipped; the circle's center may lie outside the canvas
// bounds entirely (supports overhanging regions).
func (c *Canvas) DrawCircle(circle Circle) {
	cx := int(circle.X)
	cy := int(circle.Y)
	r := int(circle.Radius)
	rSq := r * r

	minY, maxY := cy-r, cy+r
	if minY < 0 {
		minY = 0
	}
	if maxY >= c.height {
		maxY = c.height - 1
	}
	minX, maxX := cx-r, cx+r
	if minX < 0 {
		minX = 0
	}
	if maxX >= c.width {
		maxX = c.width - 1
	}

	for y := minY; y <= maxY; y++ {
		dy := y - cy
		for x := minX; x <= maxX; x++ {
			dx := x - cx
			if dx*dx+dy*dy > rSq {
				continue
			}
			i := y*c.stride + x*4
			c.pix[i] = circle.R
			c.pix[i+1] = circle.G
			c.pix[i+2] = circle.B
			c.pix[i+3] = 255
		}
	}
}

// CopyFrom blits other into c at (dx, dy); pixels of other that fall
// outside c are clipped.
func (c *Canvas) CopyFrom(other *Canvas, dx, dy int) {
	for y := 0; y < other.height; y++ {
		destY := dy + y
		if destY < 0 || destY >= c.height {
			continue
		}
		for x := 0; x < other.width; x++ {
			destX := dx + x
			if destX < 0 || destX >= c.width {
				continue
			}
			si := y*other.stride + x*4
			di := destY*c.stride + destX*4
			copy(c.pix[di:di+4], other.pix[si:si+4])
		}
	}
}

// Save encodes the canvas as a PNG file at path.
func (c *Canvas) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	defer f.Close()

	if err := c.WritePNG(f); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

// WritePNG encodes the canvas as PNG to w, for interop with HTTP handlers
// and other streaming writers that don't need a filesystem path.
func (c *Canvas) WritePNG(w io.Writer) error {
	return png.Encode(w, c.Image())
}

// Image converts the canvas to a standard library image.NRGBA, for
// interop with encoders and HTTP handlers that expect image.Image.
func (c *Canvas) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))
	for y := 0; y < c.height; y++ {
		si := y * c.stride
		di := y * img.Stride
		copy(img.Pix[di:di+c.stride], c.pix[si:si+c.stride])
	}
	return img
}
