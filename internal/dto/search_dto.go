package dto

import (
	"research-rag-be/pkg/rag/retrieval"
)

type SearchRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

type SearchResponse struct {
	Query           string             `json:"query"`
	Results         []retrieval.Result `json:"results"`
	Count           int                `json:"count"`
	LLMResponse     string             `json:"llm_response"`
	LLMResponseHTML string             `json:"llm_response_html"`
	Message         string             `json:"message,omitempty"`
	Degraded        bool               `json:"degraded"`
	Model           string             `json:"model,omitempty"`
}
