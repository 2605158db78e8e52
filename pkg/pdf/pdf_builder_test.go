package pdf

import (
	"bytes"
	"fmt"
	"strings"
)

type testImage struct {
	name   string
	width  int
	height int
	filter string
	data   []byte
}

type testPage struct {
	content string
	images  []testImage
}

// buildPDF writes a minimal uncompressed PDF with two standard fonts (F1
// regular, F2 bold), both with 500-unit glyph widths.
func buildPDF(info map[string]string, pages ...testPage) []byte {
	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}
	stream := func(dict string, data []byte) string {
		return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
	}

	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	font := func(base string) string {
		return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", base, widths)
	}

	catalog := add("<< /Type /Catalog /Pages 2 0 R >>")
	add("") // pages tree, filled below
	f1 := add(font("Helvetica"))
	f2 := add(font("Helvetica-Bold"))

	var kids []string
	for _, p := range pages {
		var xobjects []string
		for _, img := range p.images {
			dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8", img.width, img.height)
			if img.filter != "" {
				dict += " /Filter /" + img.filter
			}
			id := add(stream(dict, img.data))
			xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", img.name, id))
		}
		contents := add(stream("", []byte(p.content)))
		resources := fmt.Sprintf("/Font << /F1 %d 0 R /F2 %d 0 R >>", f1, f2)
		if len(xobjects) > 0 {
			resources += " /XObject << " + strings.Join(xobjects, " ") + " >>"
		}
		page := add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R >>", resources, contents))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	infoID := 0
	if len(info) > 0 {
		var entries []string
		for k, v := range info {
			entries = append(entries, fmt.Sprintf("/%s (%s)", k, v))
		}
		infoID = add("<< " + strings.Join(entries, " ") + " >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	trailer := fmt.Sprintf("/Size %d /Root %d 0 R", len(objects)+1, catalog)
	if infoID > 0 {
		trailer += fmt.Sprintf(" /Info %d 0 R", infoID)
	}
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}

// textLines renders lines at a fixed leading, starting at (x, y).
func textLines(font string, size float64, x, y, leading float64, lines ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "BT /%s %g Tf %g %g Td ", font, size, x, y)
	for i, l := range lines {
		if i > 0 {
			fmt.Fprintf(&sb, "0 %g Td ", -leading)
		}
		fmt.Fprintf(&sb, "(%s) Tj ", l)
	}
	sb.WriteString("ET\n")
	return sb.String()
}
