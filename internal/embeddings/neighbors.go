// ABOUTME: Similarity helpers over fetched embedding vectors.
// ABOUTME: Ranks neighbours of a selected point in the original vector space.
package embeddings

import (
	"math"
	"sort"

	"github.com/2389-research/asksee/internal/models"
)

// Neighbor pairs an item index with its similarity to the query item.
type Neighbor struct {
	Index int
	Item  models.EmbeddingItem
	Score float64
}

// CosineSimilarity computes the cosine similarity between two vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Nearest returns up to n items most similar to items[idx], best first.
// Items without a usable vector, or with a different dimensionality, are skipped.
func Nearest(items []models.EmbeddingItem, idx, n int) []Neighbor {
	if idx < 0 || idx >= len(items) || n <= 0 || !items[idx].Usable() {
		return nil
	}
	query := items[idx].Embedding

	var results []Neighbor
	for i, it := range items {
		if i == idx || !it.Usable() || len(it.Embedding) != len(query) {
			continue
		}
		results = append(results, Neighbor{
			Index: i,
			Item:  it,
			Score: CosineSimilarity(query, it.Embedding),
		})
	}

	// Sort by score descending, stable on input order for ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if n > len(results) {
		n = len(results)
	}
	return results[:n]
}
