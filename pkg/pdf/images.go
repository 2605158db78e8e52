package pdf

import (
	"fmt"
	"io"
	"math"

	lpdf "github.com/ledongthuc/pdf"
)

// affine is a PDF transformation matrix [a b c d e f].
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

// mul returns m applied after n (m × n in PDF row-vector convention).
func (m affine) mul(n affine) affine {
	return affine{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// unitBox maps the unit square through m.
func (m affine) unitBox() BBox {
	box := BBox{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(p[0], p[1])
		box[0] = math.Min(box[0], x)
		box[1] = math.Min(box[1], y)
		box[2] = math.Max(box[2], x)
		box[3] = math.Max(box[3], y)
	}
	return box
}

type placement struct {
	name string
	box  BBox
}

// placedImages interprets the page content stream and returns every image
// XObject drawn with Do, in drawing order.
func placedImages(p lpdf.Page) (out []placement, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpret content stream: %v", r)
		}
	}()

	contents := p.V.Key("Contents")
	if contents.IsNull() {
		return nil, nil
	}
	xobjects := p.Resources().Key("XObject")
	if xobjects.IsNull() {
		return nil, nil
	}

	ctm := identity
	var stack []affine
	lpdf.Interpret(contents, func(stk *lpdf.Stack, op string) {
		n := stk.Len()
		args := make([]lpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if len(stack) > 0 {
				ctm = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		case "cm":
			if len(args) != 6 {
				return
			}
			var m affine
			for i := range m {
				m[i] = args[i].Float64()
			}
			ctm = m.mul(ctm)
		case "Do":
			if len(args) != 1 {
				return
			}
			name := args[0].Name()
			if xobjects.Key(name).Key("Subtype").Name() != "Image" {
				return
			}
			out = append(out, placement{name: name, box: ctm.unitBox()})
		}
	})
	return out, nil
}

func imageFormat(filter lpdf.Value) string {
	name := filter.Name()
	if filter.Kind() == lpdf.Array && filter.Len() > 0 {
		name = filter.Index(filter.Len() - 1).Name()
	}
	switch name {
	case "DCTDecode":
		return "jpeg"
	case "JPXDecode":
		return "jp2"
	case "JBIG2Decode":
		return "jbig2"
	case "CCITTFaxDecode":
		return "ccitt"
	}
	return "raw"
}

// readStream returns the decoded stream bytes. The library panics on filters
// it cannot decode, which is reported as an error.
func readStream(v lpdf.Value) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("decode stream: %v", r)
		}
	}()
	rd := v.Reader()
	defer rd.Close()
	return io.ReadAll(rd)
}

// ClassifyImage picks an image type from the aspect ratio of the placed box,
// or of the pixel size when the box is degenerate.
func ClassifyImage(box BBox, width, height int) ImageType {
	w, h := box.Width(), box.Height()
	if w <= 0 || h <= 0 {
		w, h = float64(width), float64(height)
	}
	if h <= 0 {
		return ImageDiagram
	}
	ratio := w / h
	switch {
	case ratio > 2:
		return ImageChart
	case ratio >= 0.5:
		return ImageFigure
	}
	return ImageDiagram
}

func (e *Extractor) pageImages(p lpdf.Page, page int) ([]Image, error) {
	placed, err := placedImages(p)
	if err != nil {
		return nil, err
	}
	xobjects := p.Resources().Key("XObject")

	images := make([]Image, 0, len(placed))
	for i, pl := range placed {
		xo := xobjects.Key(pl.name)
		img := Image{
			Page:        page,
			Index:       i,
			Name:        pl.name,
			BBox:        pl.box,
			Format:      imageFormat(xo.Key("Filter")),
			Width:       int(xo.Key("Width").Int64()),
			Height:      int(xo.Key("Height").Int64()),
			AnchorBlock: -1,
		}
		if img.Format == "raw" {
			data, err := readStream(xo)
			if err != nil {
				e.logger.Warn(moduleName, "Image data not decodable", map[string]interface{}{
					"page":  page,
					"image": pl.name,
					"error": err.Error(),
				})
			}
			img.Data = data
			img.PayloadUnavailable = err != nil
		} else {
			img.PayloadUnavailable = true
		}
		img.Type = ClassifyImage(img.BBox, img.Width, img.Height)
		images = append(images, img)
	}
	return images, nil
}
