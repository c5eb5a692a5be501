package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/seekr/ai"
)

const interpretationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "keywords": {
      "type": "array",
      "items": {"type": "string", "pattern": "^[a-z0-9_]+$"}
    },
    "asset_types": {
      "type": "array",
      "items": {"type": "string"}
    },
    "tags": {
      "type": "array",
      "items": {"type": "string"}
    },
    "owners": {
      "type": "array",
      "items": {"type": "string"}
    },
    "min_quality": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    }
  },
  "required": ["keywords", "asset_types", "tags", "owners", "min_quality"],
  "additionalProperties": false
}`

const interpretationPromptTemplate = `You translate a data catalog search request into structured search criteria and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Keywords are the lowercase words a matching asset name or description would contain. Drop filler words.
- asset_types must only contain values from: %s.
- Tags are labels such as "pii", "finance" or "gold". Only include tags the request asks for explicitly.
- Owners are team or person names following words like "owned by" or "from".
- min_quality is between 0 and 1. Use 0.8 for "high quality" or "trusted", 0.5 for "decent", otherwise 0.
- Never invent criteria the request does not mention. Empty arrays are fine.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "customer tables with pii owned by finance"
Output:
{"keywords":["customer"],"asset_types":["table"],"tags":["pii"],"owners":["finance"],"min_quality":0}

Example (informal, no punctuation):
Input: "show me trusted revenue dashboards"
Output:
{"keywords":["revenue"],"asset_types":["dashboard"],"tags":[],"owners":[],"min_quality":0.8}

Example (keywords only):
Input: "where do we keep order history"
Output:
{"keywords":["order","history"],"asset_types":[],"tags":[],"owners":[],"min_quality":0}`

// buildSystemPrompt creates the system prompt with the asset vocabulary embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(interpretationPromptTemplate,
		interpretationResponseSchema,
		strings.Join(ai.AssetTypes, ", "))
}
