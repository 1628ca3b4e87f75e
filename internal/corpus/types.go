// Package corpus defines the article record schema and the sources that
// produce batches of articles for indexing: JSON collection files on disk
// and a PostgreSQL table.
package corpus

import "context"

// Field names of an article record.
const (
	FieldTitle    = "title"
	FieldDate     = "date"
	FieldKeywords = "keywords"
	FieldArticle  = "article"
	FieldSummary  = "summary"
)

// RequiredFields lists the keys every record must carry.
var RequiredFields = []string{FieldTitle, FieldDate, FieldKeywords, FieldArticle, FieldSummary}

// Article is one news record of a collection file.
type Article struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Keywords string `json:"keywords"`
	Body     string `json:"article"`
	Summary  string `json:"summary"`
}

// Field returns the value of the named field.
func (a Article) Field(name string) (string, bool) {
	switch name {
	case FieldTitle:
		return a.Title, true
	case FieldDate:
		return a.Date, true
	case FieldKeywords:
		return a.Keywords, true
	case FieldArticle:
		return a.Body, true
	case FieldSummary:
		return a.Summary, true
	default:
		return "", false
	}
}

// Batch is the ordered article list of one source unit (one file, or one
// source value of a table). Each batch becomes one indexed Document.
type Batch struct {
	Location string
	Articles []Article
}

// Source produces batches in a deterministic order.
type Source interface {
	Batches(ctx context.Context) ([]Batch, error)
}
