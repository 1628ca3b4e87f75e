package index

import "github.com/sarnews/newsearch/internal/corpus"

// PostingList is a strictly increasing sequence of NewsItem ids. Every merge
// in the query pipeline relies on that order.
type PostingList []int

// Positions maps a NewsItem id to the ascending token offsets of one term in
// that item's field text.
type Positions map[int][]int

// Document is one ingested source unit (a collection file).
type Document struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

// NewsItem is one article within a Document. Title, Date and Keywords are
// carried for display only.
type NewsItem struct {
	ID       int    `json:"news_id"`
	DocID    int    `json:"document"`
	Offset   int    `json:"offset"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Keywords string `json:"keywords"`
}

// Field describes an indexable article field. Untokenized fields index their
// whole normalised value as a single term.
type Field struct {
	Name      string
	Tokenized bool
}

// DefaultField is searched by terms without a field qualifier.
const DefaultField = corpus.FieldArticle

// Fields lists the fields indexed in multi-field mode.
var Fields = []Field{
	{Name: corpus.FieldTitle, Tokenized: true},
	{Name: corpus.FieldDate, Tokenized: false},
	{Name: corpus.FieldKeywords, Tokenized: true},
	{Name: corpus.FieldArticle, Tokenized: true},
	{Name: corpus.FieldSummary, Tokenized: true},
}
