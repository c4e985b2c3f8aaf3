package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type frame struct {
	topLeft, top, topRight  string
	side                    string
	sepLeft, sepRight       string
	bottomLeft, bottomRight string
}

var (
	singleFrame = frame{"┌", "─", "┐", "│", "├", "┤", "└", "┘"}
	doubleFrame = frame{"╔", "═", "╗", "║", "╠", "╣", "╚", "╝"}
)

// box draws a fixed width frame, width counts the runes between the sides
type box struct {
	w     io.Writer
	width int
	frame frame
}

func newBox(w io.Writer, width int, f frame) *box {
	return &box{w: w, width: width, frame: f}
}

func (b *box) rule(left, right string) {
	fmt.Fprintln(b.w, left+strings.Repeat(b.frame.top, b.width)+right)
}

func (b *box) open()  { b.rule(b.frame.topLeft, b.frame.topRight) }
func (b *box) sep()   { b.rule(b.frame.sepLeft, b.frame.sepRight) }
func (b *box) close() { b.rule(b.frame.bottomLeft, b.frame.bottomRight) }

func (b *box) blank() { b.line("") }

// line pads the formatted content to the box width, overlong content is kept whole
func (b *box) line(format string, args ...any) {
	content := fmt.Sprintf(format, args...)
	fmt.Fprintln(b.w, b.frame.side+pad(content, b.width)+b.frame.side)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
