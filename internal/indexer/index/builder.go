package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sarnews/newsearch/internal/corpus"
	"github.com/sarnews/newsearch/internal/indexer/permuterm"
	"github.com/sarnews/newsearch/internal/indexer/stem"
	"github.com/sarnews/newsearch/internal/indexer/tokenizer"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// Options gates which index structures are built.
type Options struct {
	MultiField bool
	Positional bool
	Stemming   bool
	Permuterm  bool
	Stemmer    stem.Stemmer
}

// Builder accumulates the inverted and positional indices during the
// indexing phase. Freeze hands the result over as an immutable Store; the
// Builder rejects further writes afterwards.
type Builder struct {
	mu        sync.Mutex
	opts      Options
	fields    []Field
	docs      []Document
	news      []NewsItem
	postings  map[string]map[string]PostingList
	positions map[string]map[string]Positions
	tokens    int64
	frozen    bool
}

// NewBuilder returns an empty Builder. Stemming requires a Stemmer.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Stemming && opts.Stemmer == nil {
		return nil, fmt.Errorf("stemming enabled without a stemmer: %w", apperrors.ErrInvalidInput)
	}
	fields := []Field{{Name: DefaultField, Tokenized: true}}
	if opts.MultiField {
		fields = Fields
	}
	b := &Builder{
		opts:      opts,
		fields:    fields,
		postings:  make(map[string]map[string]PostingList, len(fields)),
		positions: make(map[string]map[string]Positions, len(fields)),
	}
	for _, f := range fields {
		b.postings[f.Name] = make(map[string]PostingList)
		if opts.Positional {
			b.positions[f.Name] = make(map[string]Positions)
		}
	}
	return b, nil
}

// AddDocument registers one source unit and indexes each of its articles as
// a NewsItem. Ids are assigned in call order.
func (b *Builder) AddDocument(location string, articles []corpus.Article) (Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return Document{}, fmt.Errorf("adding %s: %w", location, apperrors.ErrIndexFrozen)
	}
	doc := Document{ID: len(b.docs), Path: location}
	b.docs = append(b.docs, doc)
	for offset, article := range articles {
		item := NewsItem{
			ID:       len(b.news),
			DocID:    doc.ID,
			Offset:   offset,
			Title:    article.Title,
			Date:     article.Date,
			Keywords: article.Keywords,
		}
		b.news = append(b.news, item)
		for _, f := range b.fields {
			text, _ := article.Field(f.Name)
			b.addField(f, item.ID, text)
		}
	}
	return doc, nil
}

func (b *Builder) addField(f Field, newsID int, text string) {
	var terms []string
	if f.Tokenized {
		terms = tokenizer.Terms(text)
	} else if v := strings.Join(strings.Fields(strings.ToLower(text)), " "); v != "" {
		// Whole value as one term, whitespace runs collapsed so a quoted
		// query can reach multi-word values.
		terms = []string{v}
	}
	postings := b.postings[f.Name]
	positions := b.positions[f.Name]
	for pos, term := range terms {
		pl := postings[term]
		// ids arrive in increasing order, so checking the tail keeps the
		// list sorted and duplicate-free.
		if n := len(pl); n == 0 || pl[n-1] != newsID {
			postings[term] = append(pl, newsID)
		}
		if positions != nil {
			p, ok := positions[term]
			if !ok {
				p = make(Positions)
				positions[term] = p
			}
			p[newsID] = append(p[newsID], pos)
		}
	}
	if f.Name == DefaultField {
		b.tokens += int64(len(terms))
	}
}

// NumNews returns the number of NewsItems added so far.
func (b *Builder) NumNews() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.news)
}

// Freeze builds the derived stem and permuterm indices over each field's
// vocabulary and returns the read-only Store.
func (b *Builder) Freeze() (*Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return nil, fmt.Errorf("freezing twice: %w", apperrors.ErrIndexFrozen)
	}
	b.frozen = true

	s := &Store{
		opts:     b.opts,
		docs:     b.docs,
		news:     b.news,
		fields:   make(map[string]*FieldIndex, len(b.fields)),
		order:    make([]string, 0, len(b.fields)),
		universe: make(PostingList, len(b.news)),
		tokens:   b.tokens,
		builtAt:  time.Now().UTC(),
	}
	for i := range s.universe {
		s.universe[i] = i
	}
	for _, f := range b.fields {
		postings := b.postings[f.Name]
		vocab := make([]string, 0, len(postings))
		for term := range postings {
			vocab = append(vocab, term)
		}
		sort.Strings(vocab)
		fi := &FieldIndex{
			name:      f.Name,
			tokenized: f.Tokenized,
			postings:  postings,
			positions: b.positions[f.Name],
			vocab:     vocab,
		}
		if b.opts.Stemming && f.Tokenized {
			fi.stems = stem.Build(vocab, b.opts.Stemmer)
		}
		if b.opts.Permuterm {
			fi.permuterm = permuterm.Build(vocab)
		}
		s.fields[f.Name] = fi
		s.order = append(s.order, f.Name)
	}
	b.postings = nil
	b.positions = nil
	return s, nil
}
