package classify

import "github.com/poiesic/graphrag/core"

// categoryDescriptions are the reference texts each query is compared
// against. A query is assigned the category whose description it is most
// similar to in embedding space. Wording changes here shift classification
// behavior for every query.
var categoryDescriptions = map[core.QueryCategory]string{
	core.CategoryFactualLookup: `
		Direct factual questions requiring a specific answer.
		Examples: who, when, where, what, founder, CEO, location.
	`,

	core.CategorySummarization: `
		Requests to summarize, explain, outline, or describe text broadly.
		Examples: summarize, overview, high level, explain.
	`,

	core.CategoryRelationalReasoning: `
		Questions about relationships or comparisons between entities.
		Examples: relationship between X and Y, compare, how connected.
	`,

	core.CategoryCrossModalLinkage: `
		Queries linking text, image, audio, or video content.
		Examples: describe the image, relate audio to document, show connected context.
	`,

	core.CategoryKeywordSearch: `
		Pure keyword-based search or filtering.
		Examples: find mentions of X, occurrences of Y, keyword search.
	`,
}
