package intent

import "fmt"

const classifySystemPrompt = `You are a restaurant command parser. Your job is to analyze user requests and extract structured information about restaurant searches, recommendations, and collections.

Guidelines for parsing:
1. For specific searches (like "best butter chicken spot", "pizza near me"), use search_restaurants
2. For general recommendations ("recommend a restaurant", "suggest somewhere"), use recommend_restaurants
3. For creating an empty curated list, use create_collection
4. For creating a collection FROM previously found restaurants ("save these as a collection"), use create_collection_with_restaurants
5. For help or informational requests, use get_info
6. Always try to extract location/place information from context
7. Extract cuisine type, price preferences, and dietary restrictions when mentioned
8. Be flexible with location - users might say "near me", "downtown", city names, etc.

Examples:
- "Best butter chicken spot?" -> search_restaurants with query="best butter chicken"
- "Find Italian restaurants in NYC" -> search_restaurants with query="Italian restaurants", place="NYC", cuisine="Italian"
- "Recommend a good restaurant for dinner" -> recommend_restaurants with query="good restaurant for dinner"
- "Help me find restaurants" -> get_info with topic="help"

Extract all relevant information and choose the most appropriate function.`

const collectionCheckSystemPrompt = `You are a classification assistant. Analyze queries to determine if they're asking for collection creation. Respond with only 'YES' or 'NO'.`

const collectionCheckPrompt = `Analyze if the user's query is asking to create a restaurant collection.

User Query: %q
%s
A collection creation request is when the user wants to:
1. Create/make/save a collection of restaurants
2. Save restaurant search results
3. Organize restaurants into a group
4. Respond affirmatively (yes/ok/sure) to a previous AI suggestion about creating a collection

Return ONLY "YES" if this is a collection creation request, or "NO" if it's not.

Examples:
- "create a collection" -> YES
- "save these restaurants" -> YES
- "make a collection from these results" -> YES
- "yes" (when previous AI asked about creating collection) -> YES
- "what are the opening hours?" -> NO
- "tell me about Italian cuisine" -> NO
- "find more restaurants" -> NO

Answer:`

const extractTagsSystemPrompt = `You extract restaurant search tags from user queries. Respond with valid JSON only, in this exact shape:
{"tags": ["tag1", "tag2"], "place": "City Name"}

Rules:
- At most 5 tags: dish names, cuisine types, restaurant categories
- Tags are short lowercase phrases
- "place" is the location mentioned in the query, or "" if none
- No commentary, JSON only`

func buildCollectionCheckPrompt(utterance, lastAIMessage string) string {
	contextLine := ""
	if lastAIMessage != "" {
		contextLine = fmt.Sprintf("Previous AI message: %s\n", truncate(lastAIMessage, 200))
	}
	return fmt.Sprintf(collectionCheckPrompt, utterance, contextLine)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
