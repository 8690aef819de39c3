package intent

import "github.com/sashabaranov/go-openai"

// classificationTools returns the function schemas offered to the model
// during classification. One call to one of these is the expected output of
// every classification request.
func classificationTools() []openai.Tool {
	queryProperties := map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "The main search query (e.g., 'best butter chicken', 'pizza place', 'romantic dinner')",
		},
		"place": map[string]any{
			"type":        "string",
			"description": "The location/place to search in (e.g., 'New York', 'downtown', 'near me'). Extract from context if not explicitly mentioned.",
		},
		"cuisine": map[string]any{
			"type":        "string",
			"description": "Type of cuisine if mentioned (e.g., 'Indian', 'Italian', 'Chinese')",
		},
		"price_range": map[string]any{
			"type":        "string",
			"description": "Price preference if mentioned (e.g., 'budget', 'cheap', 'expensive', 'fine dining')",
		},
		"dietary_restrictions": map[string]any{
			"type":        "string",
			"description": "Any dietary restrictions mentioned (e.g., 'vegetarian', 'vegan', 'gluten-free')",
		},
	}

	collectionProperties := map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Name of the collection (e.g., 'Best Pizza Places', 'Romantic Dinner Spots')",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "Description of the collection",
		},
		"is_public": map[string]any{
			"type":        "boolean",
			"description": "Whether the collection should be public (true) or private (false). Default is true.",
		},
		"tags": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "List of tags for the collection (e.g., ['pizza', 'italian', 'comfort food'])",
		},
		"auth_token": map[string]any{
			"type":        "string",
			"description": "Authorization token for creating the collection",
		},
	}

	collectionWithIDsProperties := map[string]any{}
	for k, v := range collectionProperties {
		collectionWithIDsProperties[k] = v
	}
	collectionWithIDsProperties["restaurant_ids"] = map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "List of restaurant IDs to add to the collection. These should be from previous search results.",
	}

	return []openai.Tool{
		functionTool(fnSearchRestaurants,
			"Search for restaurants based on a specific query and location. Use this when the user wants to find restaurants matching specific criteria.",
			queryProperties, []string{"query"}),
		functionTool(fnRecommendRestaurants,
			"Get restaurant recommendations based on preferences or general requests. Use this when the user wants recommendations rather than searching for something specific.",
			queryProperties, []string{"query"}),
		functionTool(fnCreateCollection,
			"Create a new empty restaurant collection. Use this when the user wants to create a curated list with a name, description, tags, and privacy settings, but WITHOUT adding specific restaurants.",
			collectionProperties, []string{"name", "description"}),
		functionTool(fnCreateCollectionWithIDs,
			"Create a restaurant collection and add specific restaurants to it. Use this ONLY when the user wants to create a collection FROM previously found restaurants (like 'create collection from these results'). Do NOT use this for general collection creation requests.",
			collectionWithIDsProperties, []string{"name", "description", "restaurant_ids"}),
		functionTool(fnGetInfo,
			"Handle informational requests about restaurants, help requests, or general questions.",
			map[string]any{
				"topic": map[string]any{
					"type":        "string",
					"description": "The topic of the informational request (e.g., 'help', 'how to use', 'about')",
				},
			}, []string{"topic"}),
	}
}

func functionTool(name, description string, properties map[string]any, required []string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}
