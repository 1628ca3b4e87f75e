package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/sarnews/newsearch/internal/indexer"
	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/executor"
	"github.com/sarnews/newsearch/internal/searcher/parser"
	"github.com/sarnews/newsearch/internal/searcher/ranker"
	"github.com/sarnews/newsearch/pkg/config"
)

var benchQueries = []struct {
	name  string
	query string
}{
	{"term", "gobierno"},
	{"and", "gobierno and vivienda"},
	{"or", "empleo or sanidad or educación"},
	{"not", "not tribunal"},
	{"nested", "(gobierno or ley) and not (mercado or cultura)"},
	{"phrase", `"ley vivienda"`},
	{"wildcard", "eco*"},
	{"field", "title:gobierno and keywords:ley"},
}

func buildExecutor(b *testing.B, docs int, opts ...executor.Option) *executor.Executor {
	b.Helper()
	cfg := config.IndexerConfig{MultiField: true, Positional: true, Stemming: true, Permuterm: true, StemLanguage: "spanish"}
	store, err := indexer.NewEngine(cfg, nil).Build(context.Background(), batchSource(collections(docs, 100)))
	if err != nil {
		b.Fatal(err)
	}
	return executor.New(store, opts...)
}

func BenchmarkQueryParse(b *testing.B) {
	for _, q := range benchQueries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(q.query); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExecute(b *testing.B) {
	exec := buildExecutor(b, 50)
	for _, q := range benchQueries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := exec.Execute(context.Background(), q.query, 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExecuteStemming(b *testing.B) {
	exec := buildExecutor(b, 50, executor.WithStemming(true))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := exec.Execute(context.Background(), "reformas and presupuestos", 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExecuteParallel(b *testing.B) {
	exec := buildExecutor(b, 50)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q := benchQueries[i%len(benchQueries)]
			if _, err := exec.Execute(context.Background(), q.query, 10); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}

// BenchmarkRank measures scoring and ordering with a title-length scorer at
// several result sizes.
func BenchmarkRank(b *testing.B) {
	scorer := ranker.ScorerFunc(func(it index.NewsItem, _ parser.Node) float64 {
		return 1 / float64(len(it.Title)+1)
	})
	query, _ := parser.Parse("gobierno")
	for _, n := range []int{100, 1000, 10000} {
		items := make([]index.NewsItem, n)
		for i := range items {
			items[i] = index.NewsItem{ID: i, Title: article(i, 1).Title}
		}
		b.Run(fmt.Sprintf("items_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ranker.Rank(items, query, scorer, 10)
			}
		})
	}
}
