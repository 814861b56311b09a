package serpwatch

// ParseResult holds the items extracted from one result page and the name
// of the selector candidate that produced them. Candidate is empty when no
// candidate matched.
type ParseResult struct {
	Candidate string
	Results   []*SearchResult
}

// Parser extracts result items from an engine's result page.
type Parser interface {
	// Parse returns the items found in html using the first selector
	// candidate of engine that matches at least one result node. A page
	// where no candidate matches yields an empty ParseResult, not an error.
	Parse(html string, engine *EngineConfig, keyword string, page int) (*ParseResult, error)
}
