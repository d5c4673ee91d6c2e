package openai

const extractionSystemPrompt = `Extract entities and relationships from the given text and return them as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.
Your output must exactly follow this format:

{
  "entities": ["ENTITY1", "ENTITY2"],
  "relationships": [
    {"source": "ENTITY1", "target": "ENTITY2", "relation": "RELATIONSHIP"}
  ]
}

Rules:
- Entities are the proper nouns and distinct named things mentioned in the text: people, organizations, places, products, documents.
- Keep entity names exactly as written in the text; do not change capitalization or expand abbreviations.
- Relation labels are short lowercase snake_case verb phrases, e.g. "works_at", "located_in", "founded_by".
- Every relationship's source and target must be entity names.
- Include only entities and relationships that are explicitly stated or clearly implied by the text. Do not hallucinate.
- If nothing can be extracted, return {"entities": [], "relationships": []}.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Alice works at Acme Corp in Berlin."
Output:
{
  "entities": ["Alice", "Acme Corp", "Berlin"],
  "relationships": [
    {"source": "Alice", "target": "Acme Corp", "relation": "works_at"},
    {"source": "Acme Corp", "target": "Berlin", "relation": "located_in"}
  ]
}

Example (nothing to extract):
Input: "it was a nice day"
Output:
{
  "entities": [],
  "relationships": []
}`
