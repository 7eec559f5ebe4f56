package daemon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

const iconSize = 32

// 3x5 digit glyphs, one row per string.
var digitGlyphs = [10][5]string{
	{"###", "#.#", "#.#", "#.#", "###"},
	{".#.", "##.", ".#.", ".#.", "###"},
	{"###", "..#", "###", "#..", "###"},
	{"###", "..#", "###", "..#", "###"},
	{"#.#", "#.#", "###", "..#", "..#"},
	{"###", "#..", "###", "..#", "###"},
	{"###", "#..", "###", "#.#", "###"},
	{"###", "..#", ".#.", ".#.", ".#."},
	{"###", "#.#", "###", "#.#", "###"},
	{"###", "#.#", "###", "..#", "###"},
}

var (
	iconPaper  = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
	iconHeader = color.RGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}
	iconInk    = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
)

// CalendarIcon renders a tear-off calendar page showing day as an ICO file
// with a single PNG image.
func CalendarIcon(year, month, day int) ([]byte, error) {
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	draw.Draw(img, image.Rect(2, 2, iconSize-2, iconSize-2), image.NewUniform(iconPaper), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 2, iconSize-2, 10), image.NewUniform(iconHeader), image.Point{}, draw.Src)

	digits := fmt.Sprint(day)
	const scale = 3
	width := len(digits)*3*scale + (len(digits)-1)*scale
	x := (iconSize - width) / 2
	y := 12
	for _, r := range digits {
		drawGlyph(img, digitGlyphs[r-'0'], x, y, scale)
		x += 4 * scale
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return wrapICO(buf.Bytes()), nil
}

func drawGlyph(img *image.RGBA, glyph [5]string, x, y, scale int) {
	for row, line := range glyph {
		for col, ch := range line {
			if ch != '#' {
				continue
			}
			r := image.Rect(x+col*scale, y+row*scale, x+(col+1)*scale, y+(row+1)*scale)
			draw.Draw(img, r, image.NewUniform(iconInk), image.Point{}, draw.Src)
		}
	}
}

// wrapICO prefixes a PNG with an ICONDIR and a single ICONDIRENTRY.
func wrapICO(pngData []byte) []byte {
	var buf bytes.Buffer
	header := struct {
		Reserved, Type, Count uint16
	}{0, 1, 1}
	entry := struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{iconSize, iconSize, 0, 0, 1, 32, uint32(len(pngData)), 6 + 16}

	_ = binary.Write(&buf, binary.LittleEndian, header)
	_ = binary.Write(&buf, binary.LittleEndian, entry)
	buf.Write(pngData)
	return buf.Bytes()
}
