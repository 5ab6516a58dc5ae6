package points

// Section identifies one of the tracked outline subsections.
type Section string

const (
	SectionDOK4 Section = "DOK4"
	SectionDOK3 Section = "DOK3"
)

// TrackedSections returns the sections tracked by default, in diff order.
func TrackedSections() []Section {
	return []Section{SectionDOK4, SectionDOK3}
}

// Point is one main statement plus its sub-statements as extracted from a
// tracked section during the current run. Points carry no identity beyond
// their content; matching across runs goes through Signature, never an id.
type Point struct {
	MainContent  string
	SubPoints    []string
	Section      Section
	SectionTitle string
	PointNumber  int
	TotalPoints  int
}

// StatePoint is the persisted form of a Point from a previous run.
// ContentHash is a cheap dedupe/debug key only; the authoritative matching
// key is the signature.
type StatePoint struct {
	ContentHash  string   `json:"content_hash"`
	MainContent  string   `json:"main_content"`
	SubPoints    []string `json:"sub_points"`
	Section      Section  `json:"section"`
	SectionTitle string   `json:"section_title"`
	PointNumber  int      `json:"point_number"`
}

// ToState converts a Point into its persisted form.
func (p Point) ToState() StatePoint {
	subs := make([]string, len(p.SubPoints))
	copy(subs, p.SubPoints)
	return StatePoint{
		ContentHash:  ContentHash(p.MainContent, p.SubPoints),
		MainContent:  p.MainContent,
		SubPoints:    subs,
		Section:      p.Section,
		SectionTitle: p.SectionTitle,
		PointNumber:  p.PointNumber,
	}
}

// Signature returns the canonical matching key for the point.
func (p Point) Signature() string {
	return Signature(p.MainContent, p.SubPoints)
}

// Signature returns the canonical matching key for the persisted point.
func (sp StatePoint) Signature() string {
	return Signature(sp.MainContent, sp.SubPoints)
}

// ToStates converts a slice of Points into persisted form, preserving order.
func ToStates(pts []Point) []StatePoint {
	if len(pts) == 0 {
		return nil
	}
	states := make([]StatePoint, 0, len(pts))
	for _, p := range pts {
		states = append(states, p.ToState())
	}
	return states
}
