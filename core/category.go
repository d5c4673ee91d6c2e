package core

import "fmt"

// QueryCategory is the closed set of query intents the classifier can
// produce. The router matches it exhaustively; there is no string-keyed
// dispatch, so an unrecognized category cannot reach the routing logic.
type QueryCategory int

const (
	// CategoryFactualLookup covers direct factual questions with a specific answer.
	CategoryFactualLookup QueryCategory = iota + 1
	// CategorySummarization covers requests to summarize or describe broadly.
	CategorySummarization
	// CategoryRelationalReasoning covers questions about relationships between entities.
	CategoryRelationalReasoning
	// CategoryCrossModalLinkage covers queries linking text, image, or audio content.
	CategoryCrossModalLinkage
	// CategoryKeywordSearch covers pure keyword lookup or filtering.
	CategoryKeywordSearch
)

// Categories returns all categories in enumeration order. Classification
// ties are broken by this order: the first category reaching the maximum
// similarity wins.
func Categories() []QueryCategory {
	return []QueryCategory{
		CategoryFactualLookup,
		CategorySummarization,
		CategoryRelationalReasoning,
		CategoryCrossModalLinkage,
		CategoryKeywordSearch,
	}
}

func (c QueryCategory) String() string {
	switch c {
	case CategoryFactualLookup:
		return "FACTUAL_LOOKUP"
	case CategorySummarization:
		return "SUMMARIZATION"
	case CategoryRelationalReasoning:
		return "RELATIONAL_REASONING"
	case CategoryCrossModalLinkage:
		return "CROSS_MODAL_LINKAGE"
	case CategoryKeywordSearch:
		return "KEYWORD_SEARCH"
	default:
		return fmt.Sprintf("QueryCategory(%d)", int(c))
	}
}

// ValidateCategory checks that a category value is a member of the closed set.
func ValidateCategory(c QueryCategory) error {
	if c < CategoryFactualLookup || c > CategoryKeywordSearch {
		return fmt.Errorf("%w: value %d", ErrUnknownCategory, c)
	}
	return nil
}
