package retrieval

import "fmt"

const (
	MsgNoDocuments          = "No documents found in your library. Please upload some papers first."
	MsgNoResults            = "No relevant content found for your query. Try rephrasing or using different keywords."
	MsgEmbeddingUnavailable = "Search is temporarily unavailable because the query could not be embedded. Please try again."
	MsgChatFallback         = "I apologize, but I'm having trouble generating a response right now. Please try again."
)

// SearchFallback is the answer used when synthesis fails but results exist.
func SearchFallback(query string, found int) string {
	return fmt.Sprintf("Based on your search for '%s', I found %d relevant excerpts from your papers, but couldn't generate a detailed response. Please check the search results below for relevant information.", query, found)
}
