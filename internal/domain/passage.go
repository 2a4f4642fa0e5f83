package domain

// YearUnknown marks a passage whose report year could not be derived
// from the source document name during ingestion.
const YearUnknown = 0

// Passage is a stored unit of annual-report text with its provenance.
// Passages are created by the external ingestion process and never
// mutated while answering.
type Passage struct {
	ID             string
	SourceDocument string
	PositionIndex  int
	Text           string
	ReportYear     int
}

// HasYear reports whether the passage carries a known report year.
func (p Passage) HasYear() bool {
	return p.ReportYear != YearUnknown
}
