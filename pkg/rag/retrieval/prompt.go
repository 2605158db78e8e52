package retrieval

import (
	"fmt"
	"strings"

	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/rag/analysis"
)

const (
	searchContextResults = 5
	searchSnippetChars   = 500
	chatContextResults   = 3
	chatSnippetChars     = 300
	chatHistoryTurns     = 4
)

const searchSystemPrompt = `You are a research assistant helping a user search through their academic paper library.
Based on the provided context from their papers, answer their question in 1-3 well-structured paragraphs.
Use inline citations referencing the papers by their titles and page numbers where appropriate.
Be concise but informative, focusing on directly addressing the user's question.

IMPORTANT: Format your response using Markdown. Use **bold** for emphasis, *italics* for terms,
and proper formatting for readability.`

const chatSystemPrompt = `You are a research assistant helping a user with their academic paper library. You can:
1. Answer questions about their research papers
2. Help with brainstorming and research ideas
3. Provide insights based on their document collection
4. Continue conversations with context from previous messages

Always be helpful, concise, and reference specific papers when relevant.
Format your response in Markdown for better readability.
Use inline citations like [Paper Title, p.X] when referencing specific content.`

// citation renders "[Title, p.N, Section]"; page and section are optional.
func citation(r Result, withSection bool) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(r.DocumentTitle)
	if r.Page != nil {
		fmt.Fprintf(&b, ", p.%d", *r.Page)
	}
	if withSection && r.SectionTitle != "" {
		b.WriteString(", ")
		b.WriteString(r.SectionTitle)
	}
	b.WriteString("]")
	return b.String()
}

func buildSearchMessages(query string, results []Result) []llm.Message {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "The user is searching their paper library with this query: %q\n\n", query)
	prompt.WriteString("Here are the most relevant excerpts from their papers:\n\n")

	for i, r := range results {
		if i == searchContextResults {
			break
		}
		if i > 0 {
			prompt.WriteString("\n\n")
		}
		fmt.Fprintf(&prompt, "%d. %s: %s", i+1, citation(r, true), analysis.Preview(r.Content, searchSnippetChars))
	}

	prompt.WriteString("\n\nPlease provide a comprehensive answer to their query based on this information from their library. ")
	prompt.WriteString("Use inline references like [Paper Title, p.X] when citing specific information. Format your response in Markdown.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: searchSystemPrompt},
		{Role: llm.RoleUser, Content: prompt.String()},
	}
}

func buildChatMessages(message string, history []Turn, results []Result) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: chatSystemPrompt}}

	if block := historyBlock(history); block != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: "Previous conversation context:\n" + block,
		})
	}

	var user strings.Builder
	user.WriteString("User message: ")
	user.WriteString(message)
	if len(results) == 0 {
		user.WriteString("\n\nNo specific documents found relevant to this message.")
	} else {
		user.WriteString("\n\nRelevant excerpts from their papers:\n")
		for i, r := range results {
			if i == chatContextResults {
				break
			}
			if i > 0 {
				user.WriteString("\n\n")
			}
			fmt.Fprintf(&user, "%s: %s", citation(r, false), analysis.Preview(r.Content, chatSnippetChars))
		}
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: user.String()})
}

func historyBlock(history []Turn) string {
	if len(history) > chatHistoryTurns {
		history = history[len(history)-chatHistoryTurns:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		switch t.Role {
		case llm.RoleUser:
			lines = append(lines, "User: "+t.Content)
		case llm.RoleAssistant:
			lines = append(lines, "Assistant: "+t.Content)
		}
	}
	return strings.Join(lines, "\n")
}
