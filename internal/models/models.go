// ABOUTME: Core data models for knowledge items, embeddings, and answers.
// ABOUTME: Mirrors the JSON shapes exchanged with the external RAG API.
package models

import (
	"math"
	"strings"
)

// KnowledgeItem is a piece of text submitted for ingestion.
// Chunking and embedding happen server-side.
type KnowledgeItem struct {
	Text   string `json:"text,omitempty"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
}

// HasContent reports whether the item carries text or a URL for the server
// to fetch. Items with neither are rejected before any request.
func (k KnowledgeItem) HasContent() bool {
	return strings.TrimSpace(k.Text) != "" || strings.TrimSpace(k.URL) != ""
}

// IngestResult reports how many chunks the server added.
type IngestResult struct {
	AddedChunks int `json:"added_chunks"`
}

// EmbeddingItem is a stored chunk together with its vector.
type EmbeddingItem struct {
	ID        string    `json:"id"`
	Embedding []float64 `json:"embedding"`
	Title     string    `json:"title,omitempty"`
	Source    string    `json:"source,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// Usable returns true if the vector has at least 2 components and all are finite.
func (e EmbeddingItem) Usable() bool {
	if len(e.Embedding) < 2 {
		return false
	}
	for _, v := range e.Embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Label returns the title, falling back to the source.
func (e EmbeddingItem) Label() string {
	if e.Title != "" {
		return strings.TrimSpace(e.Title)
	}
	return strings.TrimSpace(e.Source)
}

// EmbeddingPage is one page of the GET /embeddings listing.
type EmbeddingPage struct {
	Items  []EmbeddingItem `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// CountUsable returns the number of items with a usable vector.
func CountUsable(items []EmbeddingItem) int {
	n := 0
	for _, it := range items {
		if it.Usable() {
			n++
		}
	}
	return n
}

// SourceCitation is a retrieved chunk cited by an answer.
type SourceCitation struct {
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Label returns the title, falling back to the source.
func (s SourceCitation) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Source
}

// AnswerResult is the response to a question.
type AnswerResult struct {
	Answer  string           `json:"answer,omitempty"`
	Sources []SourceCitation `json:"sources,omitempty"`
}
