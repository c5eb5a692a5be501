package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterpretation(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		keywords []string
		wantErr  bool
	}{
		{
			name:     "plain json",
			raw:      `{"keywords":["customer"],"asset_types":["table"],"tags":[],"owners":[],"min_quality":0}`,
			keywords: []string{"customer"},
		},
		{
			name:     "code fence",
			raw:      "```json\n{\"keywords\":[\"order\"],\"asset_types\":[],\"tags\":[],\"owners\":[],\"min_quality\":0}\n```",
			keywords: []string{"order"},
		},
		{
			name:     "missing opening quote",
			raw:      `{keywords":["revenue"], "asset_types":[],"tags":[],"owners":[],"min_quality":0}`,
			keywords: []string{"revenue"},
		},
		{
			name:     "bare keys and trailing commas",
			raw:      "{keywords: [\"churn\", \"model\",], asset_types: [], tags: [], owners: [], min_quality: 0,}",
			keywords: []string{"churn", "model"},
		},
		{
			name:     "preamble before object",
			raw:      "Sure, here is the JSON:\n{\"keywords\":[\"ledger\"]}",
			keywords: []string{"ledger"},
		},
		{
			name:     "colon inside value untouched",
			raw:      `{"keywords":["a, b: c"]}`,
			keywords: []string{"a, b: c"},
		},
		{
			name:    "garbage",
			raw:     "I cannot help with that",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got interpretation
			_, err := parseInterpretation(tt.raw, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.keywords, got.Keywords)
		})
	}
}

func TestSanitize(t *testing.T) {
	r := interpretation{
		Keywords:   []string{"Customer", "customer", " orders. ", ""},
		AssetTypes: []string{"TABLE", "spreadsheet", "dashboard"},
		Tags:       []string{"PII"},
		Owners:     []string{"Finance"},
		MinQuality: 1.7,
	}

	got := r.sanitize()
	assert.Equal(t, []string{"customer", "orders"}, got.Keywords)
	assert.Equal(t, []string{"table", "dashboard"}, got.AssetTypes)
	assert.Equal(t, []string{"pii"}, got.Tags)
	assert.Equal(t, []string{"finance"}, got.Owners)
	assert.Equal(t, 1.0, got.MinQuality)

	r.MinQuality = -3
	assert.Equal(t, 0.0, r.sanitize().MinQuality)
}

func TestFallbackInterpretation(t *testing.T) {
	got := fallbackInterpretation("Where are the Orders?")
	assert.Equal(t, []string{"where", "are", "the", "orders"}, got.Keywords)
	assert.Empty(t, got.AssetTypes)
}

func TestScrubWord(t *testing.T) {
	tests := map[string]string{
		"#pii":         "pii",
		"@data-eng":    "data-eng",
		" orders. ":    "orders",
		"sales.orders": "sales.orders",
		"(revenue)?":   "revenue",
		"...":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, scrubWord(in), in)
	}
}
