// Package ranker orders boolean results when a relevance scorer is plugged
// in. No scorer ships with the engine; without one results keep id order.
package ranker

import (
	"sort"

	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/parser"
)

// Scorer assigns a relevance score to one matching item.
type Scorer interface {
	Score(item index.NewsItem, query parser.Node) float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(item index.NewsItem, query parser.Node) float64

func (f ScorerFunc) Score(item index.NewsItem, query parser.Node) float64 { return f(item, query) }

type ScoredItem struct {
	Item  index.NewsItem
	Score float64
}

// Rank scores items and sorts them by descending score, breaking ties by
// ascending id. A limit of zero or less keeps every item.
func Rank(items []index.NewsItem, query parser.Node, scorer Scorer, limit int) []ScoredItem {
	result := make([]ScoredItem, 0, len(items))
	for _, it := range items {
		result = append(result, ScoredItem{Item: it, Score: scorer.Score(it, query)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Item.ID < result[j].Item.ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
