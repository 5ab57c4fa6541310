package form

// Schema is the JSON schema a test form document must satisfy before
// semantic checks run.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"items": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":             map[string]any{"type": "string", "minLength": 1},
					"difficulty":     map[string]any{"type": "number", "minimum": -3, "maximum": 3},
					"discrimination": map[string]any{"type": "number", "exclusiveMinimum": 0, "maximum": 2.5},
					"guessing":       map[string]any{"type": "number", "minimum": 0, "maximum": 0.25},
				},
				"required":             []any{"id", "difficulty", "discrimination", "guessing"},
				"additionalProperties": false,
			},
		},
		"stages": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"blocks": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id": map[string]any{"type": "string", "minLength": 1},
								"target_difficulty": map[string]any{
									"type": "string",
									"enum": []any{"EASY", "MEDIUM", "HARD"},
								},
								"asset_urls": map[string]any{
									"type":  "array",
									"items": map[string]any{"type": "string", "minLength": 1},
								},
								"item_ids": map[string]any{
									"type":     "array",
									"minItems": 1,
									"items":    map[string]any{"type": "string", "minLength": 1},
								},
							},
							"required":             []any{"id", "target_difficulty", "item_ids"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []any{"blocks"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"id", "items", "stages"},
	"additionalProperties": false,
}
