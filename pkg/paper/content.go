package paper

import (
	"bytes"

	"github.com/kmathlab/paperpdf/pkg/pdf"
)

// OverflowReport counts lines that were placed below the bottom margin.
type OverflowReport struct {
	// Capacity is the number of lines that fit between the margins.
	Capacity int
	// Lines is the number of lines past Capacity; zero means the text fits.
	Lines int
}

// Overflowed reports whether any line is below the bottom margin.
func (o OverflowReport) Overflowed() bool { return o.Lines > 0 }

// ContentStream returns the text-showing content stream for lines. The
// text object starts at the top-left margin; every line, empty or not,
// advances the position by the leading. Empty lines emit no show
// operator. Lines must already be normalized.
func ContentStream(lines []string, layout Layout) ([]byte, OverflowReport) {
	num := func(v float64) string { return pdf.Real(v).String() }

	var buf bytes.Buffer
	buf.WriteString("BT\n")
	buf.WriteString(pdf.Name(layout.FontResource).String() + " " + num(layout.FontSize) + " Tf\n")
	buf.WriteString(num(layout.Margin) + " " + num(layout.PageHeight-layout.Margin) + " Td")

	advance := "\n0 " + num(-layout.Leading) + " Td"
	for _, line := range lines {
		if line != "" {
			buf.WriteString("\n(")
			buf.WriteString(pdf.EscapeString(string(Encode(line))))
			buf.WriteString(") Tj")
		}
		buf.WriteString(advance)
	}
	buf.WriteString("\nET")

	return buf.Bytes(), layout.overflow(len(lines))
}

// overflow counts lines whose baseline lies below the bottom margin.
// The first baseline sits at the top margin and every line moves down by
// the leading.
func (l Layout) overflow(n int) OverflowReport {
	capacity := l.LinesPerPage()
	if n <= capacity {
		return OverflowReport{Capacity: capacity}
	}
	return OverflowReport{Capacity: capacity, Lines: n - capacity}
}
