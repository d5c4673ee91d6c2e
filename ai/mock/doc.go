// Package mock provides test double implementations of the AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.EntityExtractor,
// ai.AnswerGenerator, and ai.AIProvider for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockExtractor := mock.NewMockEntityExtractor()
//	mockExtractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
//	    return &ai.Extraction{Entities: []string{"Alice"}}, nil
//	}
//
//	// Check call counts
//	count := mockExtractor.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockEntityExtractor: Treats capitalized words as entities
//   - MockAnswerGenerator: Returns a canned answer and records the prompt
//   - MockProvider: Aggregates the three mock services
package mock
