package graphrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/retrieval"
)

// AnswerResult is a generated answer together with the retrieval evidence
// it was grounded on.
type AnswerResult struct {
	Response string
	Result   *core.RetrievalResult
}

// Answer runs the full pipeline for one query: retrieval followed by
// grounded answer generation. The orchestrator is built and released per
// call; callers issuing many queries should hold their own orchestrator
// and use AnswerWith.
func (e *Engine) Answer(ctx context.Context, query string) (*AnswerResult, error) {
	orchestrator, err := e.NewOrchestrator()
	if err != nil {
		return nil, err
	}
	defer orchestrator.Release()

	return e.AnswerWith(ctx, orchestrator, query)
}

// AnswerWith answers a query using the given orchestrator.
func (e *Engine) AnswerWith(ctx context.Context, orchestrator *retrieval.Orchestrator, query string) (*AnswerResult, error) {
	result, err := orchestrator.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	prompt := buildAnswerPrompt(query, result)
	response, err := e.provider.AnswerGenerator().GenerateAnswer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		Response: response,
		Result:   result,
	}, nil
}

// buildAnswerPrompt assembles the grounded prompt: retrieved text contexts,
// graph evidence when the hybrid path produced any, and the query itself.
func buildAnswerPrompt(query string, result *core.RetrievalResult) string {
	var b strings.Builder

	b.WriteString("You are a helpful Assistant. Answer the user query using the context below.\n\n")

	b.WriteString("CONTEXT:\n")
	b.WriteString(strings.Join(result.Contexts, "\n"))
	b.WriteString("\n\n")

	if len(result.Matches) > 0 || len(result.Keywords) > 0 {
		b.WriteString("GRAPH CONTEXT:\n")
		for _, match := range result.Matches {
			fmt.Fprintf(&b, "Entity: %s\n", match.Entity)
			for _, edge := range match.OneHop {
				fmt.Fprintf(&b, "  %s -[%s]-> %s\n", edge.Source, edge.Relation, edge.Target)
			}
			if len(match.MultiHop) > 0 {
				fmt.Fprintf(&b, "  Related: %s\n", strings.Join(match.MultiHop, ", "))
			}
		}
		for _, kw := range result.Keywords {
			fmt.Fprintf(&b, "Keyword: %s\n", kw.Keyword)
			if len(kw.Nodes) > 0 {
				fmt.Fprintf(&b, "  Nodes: %s\n", strings.Join(kw.Nodes, ", "))
			}
			for _, edge := range kw.Edges {
				fmt.Fprintf(&b, "  %s -[%s]-> %s\n", edge.Source, edge.Relation, edge.Target)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("QUERY:\n")
	b.WriteString(query)
	b.WriteString("\n\nBe accurate and concise. Do not hallucinate.")

	return b.String()
}
