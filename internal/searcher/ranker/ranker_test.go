package ranker

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/parser"
)

// titleHits counts query leaves whose text occurs in the item title.
var titleHits = ScorerFunc(func(item index.NewsItem, q parser.Node) float64 {
	var n float64
	for _, leaf := range parser.Leaves(q) {
		if t, ok := leaf.(*parser.Term); ok && strings.Contains(strings.ToLower(item.Title), t.Text) {
			n++
		}
	}
	return n
})

func TestRank(t *testing.T) {
	q, err := parser.Parse("perro or gato")
	if err != nil {
		t.Fatal(err)
	}
	items := []index.NewsItem{
		{ID: 0, Title: "Nada"},
		{ID: 1, Title: "Perro y gato"},
		{ID: 2, Title: "Gato"},
		{ID: 3, Title: "Perro"},
	}

	var got []int
	for _, s := range Rank(items, q, titleHits, 0) {
		got = append(got, s.Item.ID)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 0}, got); diff != "" {
		t.Errorf("Rank order mismatch (-want +got):\n%s", diff)
	}

	if top := Rank(items, q, titleHits, 2); len(top) != 2 || top[0].Score != 2 {
		t.Errorf("Rank with limit = %+v", top)
	}
}
