package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// PostgresSource reads articles from a table shaped like
//
//	CREATE TABLE news_articles (
//	    source   TEXT    NOT NULL,
//	    position INTEGER NOT NULL,
//	    title    TEXT,
//	    date     TEXT,
//	    keywords TEXT,
//	    article  TEXT,
//	    summary  TEXT,
//	    PRIMARY KEY (source, position)
//	);
//
// Rows sharing a source value form one batch, ordered by position.
type PostgresSource struct {
	DB    *sql.DB
	Table string
}

func (s PostgresSource) Batches(ctx context.Context) ([]Batch, error) {
	query := fmt.Sprintf(
		`SELECT source, title, date, keywords, article, summary FROM %s ORDER BY source, position`,
		pq.QuoteIdentifier(s.Table),
	)
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w: %v", s.Table, apperrors.ErrUnreadableSource, err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var source string
		var cols [5]sql.NullString
		if err := rows.Scan(&source, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4]); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.Table, err)
		}
		for i, c := range cols {
			if !c.Valid {
				return nil, fmt.Errorf("%s source %q field %q: %w", s.Table, source, RequiredFields[i], apperrors.ErrMissingField)
			}
		}
		if len(batches) == 0 || batches[len(batches)-1].Location != source {
			batches = append(batches, Batch{Location: source})
		}
		last := &batches[len(batches)-1]
		last.Articles = append(last.Articles, Article{
			Title:    cols[0].String,
			Date:     cols[1].String,
			Keywords: cols[2].String,
			Body:     cols[3].String,
			Summary:  cols[4].String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", s.Table, err)
	}
	return batches, nil
}
