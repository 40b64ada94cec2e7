// ABOUTME: Tests for model helpers.
// ABOUTME: Covers ingestion content checks and embedding usability.
package models

import (
	"math"
	"testing"
)

func TestKnowledgeItemHasContent(t *testing.T) {
	tests := []struct {
		name string
		item KnowledgeItem
		want bool
	}{
		{"text", KnowledgeItem{Text: "hello"}, true},
		{"url only", KnowledgeItem{URL: "https://example.com"}, true},
		{"both", KnowledgeItem{Text: "hello", URL: "https://example.com"}, true},
		{"blank", KnowledgeItem{Text: "  ", URL: "\t", Title: "t"}, false},
		{"empty", KnowledgeItem{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.HasContent(); got != tt.want {
				t.Errorf("HasContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmbeddingItemUsable(t *testing.T) {
	tests := []struct {
		name string
		vec  []float64
		want bool
	}{
		{"two finite", []float64{1, 2}, true},
		{"one component", []float64{1}, false},
		{"nan", []float64{1, math.NaN()}, false},
		{"inf", []float64{math.Inf(-1), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (EmbeddingItem{Embedding: tt.vec}).Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}
