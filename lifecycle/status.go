// Package lifecycle holds the laptop status vocabulary and the guards that
// decide which status transitions are legal.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the closed set of laptop lifecycle states. The string value is the
// name stored in the status table and must never be renamed.
type Status string

const (
	Available   Status = "Available"
	Allocated   Status = "Allocated"
	UnderRepair Status = "Under Repair"
	Retired     Status = "Retired"
	Lost        Status = "Lost"
)

// All lists the vocabulary in seeding order.
var All = []Status{Available, Allocated, UnderRepair, Retired, Lost}

var (
	ErrIncompleteVocabulary = errors.New("status vocabulary incomplete")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrIllegalTransition    = errors.New("illegal status transition")
)

// Parse accepts a status name case-insensitively ("under repair", "UnderRepair").
func Parse(name string) (Status, bool) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	for _, s := range All {
		if strings.ToLower(strings.ReplaceAll(string(s), " ", "")) == norm {
			return s, true
		}
	}
	return "", false
}

// Vocabulary maps each Status to the stable row id it was seeded with.
// It is built once at startup and is read-only afterwards.
type Vocabulary struct {
	ids   map[Status]uint
	names map[uint]Status
}

// NewVocabulary resolves the seeded rows (name -> id). Every Status must be
// present; unknown names are ignored.
func NewVocabulary(rows map[string]uint) (*Vocabulary, error) {
	v := &Vocabulary{ids: make(map[Status]uint, len(All)), names: make(map[uint]Status, len(All))}
	var missing []string
	for _, s := range All {
		id, ok := rows[string(s)]
		if !ok {
			missing = append(missing, string(s))
			continue
		}
		v.ids[s] = id
		v.names[id] = s
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteVocabulary, strings.Join(missing, ", "))
	}
	return v, nil
}

func (v *Vocabulary) ID(s Status) (uint, error) {
	id, ok := v.ids[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return id, nil
}

func (v *Vocabulary) Status(id uint) (Status, error) {
	s, ok := v.names[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrUnknownStatus, id)
	}
	return s, nil
}
