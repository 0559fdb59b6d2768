// Package search compiles filtered-deck search strings into card store
// queries.
//
// Supported terms, implicitly joined with AND:
//
//	deck:NAME        the deck and its subdecks; "*" matches any run of characters
//	tag:NAME         notes carrying the tag; "*" is a wildcard
//	is:new|learn|review|due|suspended|buried
//	prop:FIELD OP N  FIELD is ivl, due, lapses, reps or factor; OP one of < <= > >= = !=
//	nid:N            cards of one note
//	TEXT             notes whose fields contain TEXT
//
// Double quotes group words, as in "deck:My Deck".
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
)

var (
	// ErrUnknownTerm is returned for a key:value term with an unsupported key
	// or value.
	ErrUnknownTerm = errors.New("unknown search term")

	// ErrNoMatchingDeck is returned when a deck: term names no deck.
	ErrNoMatchingDeck = errors.New("no deck matches")

	// ErrContradiction is returned when two terms can never both hold.
	ErrContradiction = errors.New("search terms contradict each other")
)

// DeckLister supplies the decks that deck: terms are resolved against.
type DeckLister interface {
	AllSorted(ctx context.Context) ([]*domain.Deck, error)
}

// Options carries the day context relative terms are evaluated in.
type Options struct {
	Today     int
	DayCutoff int64
}

// Term is one parsed search term.
type Term struct {
	Key   string
	Value string
}

// Tokenize splits input on whitespace, keeping double-quoted runs together.
func Tokenize(input string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	for _, r := range input {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", input)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// Parse splits input into terms. A token without a colon is a text term
// with an empty key.
func Parse(input string) ([]Term, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	terms := make([]Term, 0, len(tokens))
	for _, tok := range tokens {
		key, value, found := strings.Cut(tok, ":")
		if !found {
			terms = append(terms, Term{Value: tok})
			continue
		}
		key = strings.ToLower(key)
		switch key {
		case "deck", "tag", "is", "prop", "nid":
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownTerm, tok)
		}
		if value == "" {
			return nil, fmt.Errorf("%w: %q has no value", ErrUnknownTerm, tok)
		}
		terms = append(terms, Term{Key: key, Value: value})
	}
	return terms, nil
}

// Compile parses input and resolves it into a card query.
func Compile(ctx context.Context, input string, decks DeckLister, opts Options) (repository.CardQuery, error) {
	terms, err := Parse(input)
	if err != nil {
		return repository.CardQuery{}, err
	}
	c := &compiler{opts: opts}
	for _, t := range terms {
		if err := c.apply(ctx, t, decks); err != nil {
			return repository.CardQuery{}, err
		}
	}
	return c.q, nil
}

type compiler struct {
	opts     Options
	q        repository.CardQuery
	deckSet  bool
	queueSet bool
	typeSet  bool
}

func (c *compiler) apply(ctx context.Context, t Term, decks DeckLister) error {
	switch t.Key {
	case "":
		c.q.Texts = append(c.q.Texts, t.Value)
	case "tag":
		c.q.Tags = append(c.q.Tags, t.Value)
	case "nid":
		id, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: nid:%s", ErrUnknownTerm, t.Value)
		}
		if c.q.NoteID != 0 && c.q.NoteID != id {
			return fmt.Errorf("%w: nid:%d and nid:%d", ErrContradiction, c.q.NoteID, id)
		}
		c.q.NoteID = id
	case "deck":
		ids, err := resolveDecks(ctx, decks, t.Value)
		if err != nil {
			return err
		}
		return c.restrictDecks(ids)
	case "is":
		return c.applyIs(t.Value)
	case "prop":
		return c.applyProp(t.Value)
	}
	return nil
}

func (c *compiler) restrictDecks(ids []int64) error {
	if c.deckSet {
		ids = intersect(c.q.DeckIDs, ids)
		if len(ids) == 0 {
			return fmt.Errorf("%w: deck terms share no deck", ErrContradiction)
		}
	}
	c.q.DeckIDs = ids
	c.deckSet = true
	return nil
}

func (c *compiler) restrictQueues(qs ...domain.QueueType) error {
	if c.queueSet {
		qs = intersect(c.q.Queues, qs)
		if len(qs) == 0 {
			return fmt.Errorf("%w: no card can sit in both queues", ErrContradiction)
		}
	}
	c.q.Queues = qs
	c.queueSet = true
	return nil
}

func (c *compiler) restrictTypes(ts ...domain.CardType) error {
	if c.typeSet {
		ts = intersect(c.q.Types, ts)
		if len(ts) == 0 {
			return fmt.Errorf("%w: no card can have both types", ErrContradiction)
		}
	}
	c.q.Types = ts
	c.typeSet = true
	return nil
}

func (c *compiler) applyIs(v string) error {
	switch strings.ToLower(v) {
	case "new":
		return c.restrictTypes(domain.CardNew)
	case "learn":
		return c.restrictQueues(domain.QueueLearning, domain.QueueDayLearn, domain.QueuePreview)
	case "review":
		return c.restrictTypes(domain.CardReview, domain.CardRelearning)
	case "due":
		c.q.DueWindow = &repository.DueWindow{Today: c.opts.Today, Cutoff: c.opts.DayCutoff}
		return nil
	case "suspended":
		return c.restrictQueues(domain.QueueSuspended)
	case "buried":
		return c.restrictQueues(domain.QueueSiblingBuried, domain.QueueManuallyBuried)
	}
	return fmt.Errorf("%w: is:%s", ErrUnknownTerm, v)
}

var propPattern = regexp.MustCompile(`^([a-z]+)(<=|>=|!=|<|>|=)(-?\d+)$`)

func (c *compiler) applyProp(v string) error {
	m := propPattern.FindStringSubmatch(strings.ToLower(v))
	if m == nil {
		return fmt.Errorf("%w: prop:%s", ErrUnknownTerm, v)
	}
	field := repository.PropField(m[1])
	if !repository.ValidPropField(field) || !repository.ValidPropOp(m[2]) {
		return fmt.Errorf("%w: prop:%s", ErrUnknownTerm, v)
	}
	value, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: prop:%s", ErrUnknownTerm, v)
	}
	if field == repository.PropDue {
		// Relative to today, and only meaningful for day-based queues.
		value += int64(c.opts.Today)
		if err := c.restrictQueues(domain.QueueReview, domain.QueueDayLearn); err != nil {
			return err
		}
	}
	c.q.Props = append(c.q.Props, repository.PropFilter{Field: field, Op: m[2], Value: value})
	return nil
}

// resolveDecks returns the ids of every deck whose name matches pattern,
// plus their descendants.
func resolveDecks(ctx context.Context, decks DeckLister, pattern string) ([]int64, error) {
	all, err := decks.AllSorted(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	re, err := globToRegexp(pattern)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, d := range all {
		if re.MatchString(d.Name) {
			matched = append(matched, d.Name)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatchingDeck, pattern)
	}
	var ids []int64
	for _, d := range all {
		for _, m := range matched {
			if strings.EqualFold(d.Name, m) || domain.IsDescendantName(strings.ToLower(m), strings.ToLower(d.Name)) {
				ids = append(ids, d.ID)
				break
			}
		}
	}
	return ids, nil
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return nil, fmt.Errorf("compiling deck pattern %q: %w", pattern, err)
	}
	return re, nil
}

func intersect[T comparable](a, b []T) []T {
	var out []T
	for _, v := range b {
		if slices.Contains(a, v) {
			out = append(out, v)
		}
	}
	return out
}
