package repository

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// CardOrder selects the ORDER BY clause of a card query.
type CardOrder int

const (
	OrderNone CardOrder = iota
	OrderID
	// OrderDue sorts by due, then template ordinal, so siblings of a new
	// note come out in card order.
	OrderDue
	// OrderLastReviewed puts never-reviewed cards first, then the ones
	// reviewed longest ago.
	OrderLastReviewed
	OrderIvlAsc
	OrderIvlDesc
	OrderLapsesDesc
	OrderNoteAdded
	OrderNoteAddedDesc
	OrderTypeDue
	// OrderDuePriority favours overdue review cards with short intervals.
	// Requires CardQuery.Today.
	OrderDuePriority
)

// PropField is a card column that search properties may compare against.
type PropField string

const (
	PropIvl    PropField = "ivl"
	PropDue    PropField = "due"
	PropLapses PropField = "lapses"
	PropReps   PropField = "reps"
	PropFactor PropField = "factor"
)

var propColumns = map[PropField]string{
	PropIvl:    "ivl",
	PropDue:    "due",
	PropLapses: "lapses",
	PropReps:   "reps",
	PropFactor: "factor",
}

var propOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "=": true, "!=": true}

// ValidPropOp reports whether op may be used in a PropFilter.
func ValidPropOp(op string) bool {
	return propOps[op]
}

// ValidPropField reports whether f names a comparable card column.
func ValidPropField(f PropField) bool {
	_, ok := propColumns[f]
	return ok
}

// PropFilter compares one card column against a constant.
type PropFilter struct {
	Field PropField
	Op    string
	Value int64
}

// DueWindow matches cards due for study: review and day-learning cards due
// on or before Today, learning cards due before Cutoff (epoch seconds).
type DueWindow struct {
	Today  int
	Cutoff int64
}

// CardQuery is the predicate language of the card store. Zero-valued fields
// do not constrain the result.
type CardQuery struct {
	IDs        []int64
	ExcludeIDs []int64
	DeckIDs    []int64
	// HomeDeckIDs matches cards living in the decks or parked elsewhere
	// from them.
	HomeDeckIDs []int64
	NoteID      int64
	Queues     []domain.QueueType
	Types      []domain.CardType
	DueBefore  *int64
	DueAtMost  *int64
	DueWindow  *DueWindow
	// NotFiltered excludes cards parked in a filtered deck.
	NotFiltered bool
	// Tags match notes carrying every tag; "*" is a wildcard.
	Tags []string
	// Texts match notes whose fields contain every text.
	Texts []string
	Props []PropFilter
	Order CardOrder
	Today int
	Limit int
}

// Int64 returns a pointer to v, for the optional CardQuery bounds.
func Int64(v int64) *int64 {
	return &v
}

func (q CardQuery) where() (string, []any, error) {
	var conds []string
	var args []any

	if len(q.IDs) > 0 {
		conds = append(conds, "id IN ("+placeholders(len(q.IDs))+")")
		args = append(args, int64Args(q.IDs)...)
	}
	if len(q.ExcludeIDs) > 0 {
		conds = append(conds, "id NOT IN ("+placeholders(len(q.ExcludeIDs))+")")
		args = append(args, int64Args(q.ExcludeIDs)...)
	}
	if len(q.DeckIDs) > 0 {
		conds = append(conds, "did IN ("+placeholders(len(q.DeckIDs))+")")
		args = append(args, int64Args(q.DeckIDs)...)
	}
	if len(q.HomeDeckIDs) > 0 {
		ph := placeholders(len(q.HomeDeckIDs))
		conds = append(conds, "(did IN ("+ph+") OR odid IN ("+ph+"))")
		args = append(args, int64Args(q.HomeDeckIDs)...)
		args = append(args, int64Args(q.HomeDeckIDs)...)
	}
	if q.NoteID != 0 {
		conds = append(conds, "nid = ?")
		args = append(args, q.NoteID)
	}
	if len(q.Queues) > 0 {
		conds = append(conds, "queue IN ("+placeholders(len(q.Queues))+")")
		for _, v := range q.Queues {
			args = append(args, int(v))
		}
	}
	if len(q.Types) > 0 {
		conds = append(conds, "type IN ("+placeholders(len(q.Types))+")")
		for _, v := range q.Types {
			args = append(args, int(v))
		}
	}
	if q.DueBefore != nil {
		conds = append(conds, "due < ?")
		args = append(args, *q.DueBefore)
	}
	if q.DueAtMost != nil {
		conds = append(conds, "due <= ?")
		args = append(args, *q.DueAtMost)
	}
	if w := q.DueWindow; w != nil {
		conds = append(conds, "((queue IN (?, ?) AND due <= ?) OR (queue IN (?, ?) AND due < ?))")
		args = append(args,
			int(domain.QueueReview), int(domain.QueueDayLearn), w.Today,
			int(domain.QueueLearning), int(domain.QueuePreview), w.Cutoff)
	}
	if q.NotFiltered {
		conds = append(conds, "odid = 0")
	}
	for _, tag := range q.Tags {
		pattern := "% " + strings.ReplaceAll(likeEscape(tag), "*", "%") + " %"
		conds = append(conds, `nid IN (SELECT id FROM notes WHERE tags LIKE ? ESCAPE '\')`)
		args = append(args, pattern)
	}
	for _, text := range q.Texts {
		conds = append(conds, `nid IN (SELECT id FROM notes WHERE fields LIKE ? ESCAPE '\')`)
		args = append(args, "%"+likeEscape(text)+"%")
	}
	for _, p := range q.Props {
		col, ok := propColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown card property %q", p.Field)
		}
		if !propOps[p.Op] {
			return "", nil, fmt.Errorf("unknown comparison %q", p.Op)
		}
		conds = append(conds, col+" "+p.Op+" ?")
		args = append(args, p.Value)
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (q CardQuery) orderBy() (string, []any) {
	switch q.Order {
	case OrderID:
		return " ORDER BY id", nil
	case OrderDue:
		return " ORDER BY due, ord, id", nil
	case OrderLastReviewed:
		return " ORDER BY (SELECT MAX(r.id) FROM revlog r WHERE r.cid = cards.id), id", nil
	case OrderIvlAsc:
		return " ORDER BY ivl, id", nil
	case OrderIvlDesc:
		return " ORDER BY ivl DESC, id", nil
	case OrderLapsesDesc:
		return " ORDER BY lapses DESC, id", nil
	case OrderNoteAdded:
		return " ORDER BY nid, ord", nil
	case OrderNoteAddedDesc:
		return " ORDER BY nid DESC, ord", nil
	case OrderTypeDue:
		return " ORDER BY type, due, id", nil
	case OrderDuePriority:
		return ` ORDER BY CASE WHEN queue = ? AND due <= ?
			THEN ivl / CAST(? - due + 0.001 AS REAL)
			ELSE 100000 + due END, id`,
			[]any{int(domain.QueueReview), q.Today, q.Today}
	}
	return "", nil
}

// build renders the full statement for the given SELECT list.
func (q CardQuery) build(selectList string) (string, []any, error) {
	where, args, err := q.where()
	if err != nil {
		return "", nil, err
	}
	order, orderArgs := q.orderBy()
	query := "SELECT " + selectList + " FROM cards" + where + order
	args = append(args, orderArgs...)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return query, args, nil
}
