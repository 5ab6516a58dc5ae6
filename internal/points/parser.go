package points

import (
	"strings"
)

// Indentation levels produced by the outline renderer. The section header
// bullet sits at two spaces, its direct children (the points) at four, and
// everything nested below a point at six or deeper.
const (
	headerIndent = 2
	pointIndent  = 4
	subIndent    = 6
)

// ParsePoints splits normalized section text into an ordered sequence of
// Points. Lines indented exactly four spaces with a "- " prefix open a new
// point; "- " lines at six or more spaces immediately below collect as its
// sub-points until the next point line or any line at indentation four or
// less. Lines that match neither convention are dropped without error.
func ParsePoints(sectionText string, section Section) []Point {
	label := string(section)
	title := ""

	var pts []Point
	var current *Point

	for _, line := range strings.Split(sectionText, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if !strings.HasPrefix(trimmed, "- ") {
			if indent <= pointIndent {
				current = nil
			}
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(trimmed, "- "))

		switch {
		case indent == headerIndent:
			if title == "" {
				title = extractTitle(text, label)
			}
			current = nil
		case indent == pointIndent:
			pts = append(pts, Point{MainContent: text, Section: section})
			current = &pts[len(pts)-1]
		case indent >= subIndent:
			if current != nil {
				current.SubPoints = append(current.SubPoints, text)
			}
		default:
			// Off-grid indentation (3 or 5 spaces): dropped, and anything
			// at or above point level closes the open point.
			if indent <= pointIndent {
				current = nil
			}
		}
	}

	for i := range pts {
		pts[i].SectionTitle = title
		pts[i].PointNumber = i + 1
		pts[i].TotalPoints = len(pts)
	}
	return pts
}

// extractTitle pulls the free text after the section label on the header
// bullet, e.g. "DOK4 - Spiky POVs" yields "Spiky POVs".
func extractTitle(headerText, label string) string {
	if len(headerText) < len(label) || !strings.EqualFold(headerText[:len(label)], label) {
		return ""
	}
	rest := headerText[len(label):]
	return strings.TrimSpace(strings.TrimLeft(rest, " :-"))
}
