package x11

import (
	"errors"
	"fmt"
	"image"

	"github.com/jezek/xgb/xproto"
)

// Capture grabs the whole root window as an RGBA image.
func (d *Detector) Capture() (image.Image, error) {
	if d.conn == nil {
		return nil, errors.New("x11 connection closed")
	}

	reply, err := xproto.GetImage(d.conn, xproto.ImageFormatZPixmap, xproto.Drawable(d.root),
		0, 0, d.width, d.height, 0xffffffff).Reply()
	if err != nil {
		return nil, fmt.Errorf("GetImage failed: %w", err)
	}

	return zpixmapToRGBA(reply.Data, int(d.width), int(d.height))
}

// zpixmapToRGBA converts 32 bits-per-pixel BGRX data into an opaque RGBA image.
func zpixmapToRGBA(data []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid screen size %dx%d", width, height)
	}
	if len(data) < width*height*4 {
		return nil, fmt.Errorf("short image data: got %d bytes for %dx%d", len(data), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		o := i * 4
		img.Pix[o] = data[o+2]
		img.Pix[o+1] = data[o+1]
		img.Pix[o+2] = data[o]
		img.Pix[o+3] = 0xff
	}
	return img, nil
}
