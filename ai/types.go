package ai

// ExtractedRelation is a directed, labeled relation between two extracted
// entities. Source and Target name entities; Relation is a short verb phrase
// in snake_case (e.g. "works_at", "located_in").
type ExtractedRelation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Extraction is the result of analyzing a piece of text: the named entities
// it mentions and the relations between them. Relations may reference
// entities absent from Entities; consumers upsert both endpoints.
type Extraction struct {
	Entities  []string            `json:"entities"`
	Relations []ExtractedRelation `json:"relationships"`
}

// Empty reports whether the extraction found nothing.
func (e *Extraction) Empty() bool {
	return len(e.Entities) == 0 && len(e.Relations) == 0
}
