package llm

import openrouter "github.com/revrost/go-openrouter"

const (
	ToolSearchProducts    = "SearchProducts"
	ToolListLowStock      = "ListLowStock"
	ToolGetSalesSummary   = "GetSalesSummary"
	ToolListNotifications = "ListNotifications"
)

func ToolSchemas() []openrouter.Tool {
	return []openrouter.Tool{
		searchProductsTool(),
		listLowStockTool(),
		getSalesSummaryTool(),
		listNotificationsTool(),
	}
}

func searchProductsTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolSearchProducts,
			Description: "Find products in the store catalog. Matches name, brand, category and barcode, case-insensitive substring. Returns id, name, brand, unit_price, quantity, unit and reorder_level. Default limit: 10.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Text to search for.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of products to return (default: 10, max: 50).",
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
	}
}

func listLowStockTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolListLowStock,
			Description: "List products whose quantity is at or below their reorder level.",
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			},
		},
	}
}

func getSalesSummaryTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolGetSalesSummary,
			Description: "Get the number of recorded sales and their subtotal, tax and total for a period.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"from": map[string]any{
						"type":        "string",
						"format":      "date-time",
						"description": "Start of the period in RFC3339 format (e.g., 2025-01-01T00:00:00Z).",
					},
					"to": map[string]any{
						"type":        "string",
						"format":      "date-time",
						"description": "End of the period in RFC3339 format. If not specified, use now.",
					},
				},
				"required":             []string{"from"},
				"additionalProperties": false,
			},
		},
	}
}

func listNotificationsTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        ToolListNotifications,
			Description: "List the store's notifications, newest first. Kinds: low_stock, sale_recorded, product_added.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"unread_only": map[string]any{
						"type":        "boolean",
						"description": "Only return notifications that have not been read.",
					},
				},
				"additionalProperties": false,
			},
		},
	}
}
