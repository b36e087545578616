package solitaire

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Zone names one of the thirteen card locations of a Klondike layout.
type Zone int

const (
	Pile1 Zone = iota
	Pile2
	Pile3
	Pile4
	Pile5
	Pile6
	Pile7
	Stack1
	Stack2
	Stack3
	Stack4
	Draw
	Discard

	zoneCount
)

var zoneNames = [zoneCount]string{
	"pile1", "pile2", "pile3", "pile4", "pile5", "pile6", "pile7",
	"stack1", "stack2", "stack3", "stack4",
	"draw", "discard",
}

var (
	Piles  = [...]Zone{Pile1, Pile2, Pile3, Pile4, Pile5, Pile6, Pile7}
	Stacks = [...]Zone{Stack1, Stack2, Stack3, Stack4}
)

const (
	DeckSize  = 52
	SuitSize  = 13
	DrawCards = 24
)

func (z Zone) Valid() bool   { return z >= Pile1 && z < zoneCount }
func (z Zone) IsPile() bool  { return z >= Pile1 && z <= Pile7 }
func (z Zone) IsStack() bool { return z >= Stack1 && z <= Stack4 }

func (z Zone) String() string {
	if !z.Valid() {
		return "Zone(" + strconv.Itoa(int(z)) + ")"
	}
	return zoneNames[z]
}

func ParseZone(name string) (Zone, error) {
	for i, n := range zoneNames {
		if n == name {
			return Zone(i), nil
		}
	}
	return 0, fmt.Errorf("unknown zone %q", name)
}

func (z Zone) MarshalText() ([]byte, error) {
	if !z.Valid() {
		return nil, fmt.Errorf("invalid zone %d", int(z))
	}
	return []byte(zoneNames[z]), nil
}

func (z *Zone) UnmarshalText(b []byte) error {
	v, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = v
	return nil
}

// State is a full Klondike layout. The last card of every zone is its top.
type State struct {
	zones [zoneCount][]Card
}

// NewState returns a layout with every zone empty.
func NewState() State {
	var s State
	for z := range s.zones {
		s.zones[z] = []Card{}
	}
	return s
}

// Cards returns the cards of z, bottom first. The slice is shared with s.
func (s State) Cards(z Zone) []Card {
	if !z.Valid() {
		return nil
	}
	return s.zones[z]
}

func (s State) Len(z Zone) int { return len(s.Cards(z)) }

// Top returns the top card of z.
func (s State) Top(z Zone) (Card, bool) {
	cards := s.Cards(z)
	if len(cards) == 0 {
		return Card{}, false
	}
	return cards[len(cards)-1], true
}

// Put appends cards to z as given, keeping their Up flags.
func (s *State) Put(z Zone, cards ...Card) {
	if !z.Valid() {
		return
	}
	if s.zones[z] == nil {
		s.zones[z] = make([]Card, 0, len(cards))
	}
	s.zones[z] = append(s.zones[z], cards...)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	var out State
	for z, cards := range s.zones {
		out.zones[z] = make([]Card, len(cards))
		copy(out.zones[z], cards)
	}
	return out
}

// Total counts the cards over all zones.
func (s State) Total() int {
	n := 0
	for _, cards := range s.zones {
		n += len(cards)
	}
	return n
}

// CardsRemaining is the number of cards not yet moved onto a foundation.
func (s State) CardsRemaining() int {
	n := DeckSize
	for _, z := range Stacks {
		n -= len(s.zones[z])
	}
	return n
}

// Won reports whether all four foundations are complete.
func (s State) Won() bool {
	for _, z := range Stacks {
		if len(s.zones[z]) != SuitSize {
			return false
		}
	}
	return true
}

type stateJSON struct {
	Pile1   []Card `json:"pile1"`
	Pile2   []Card `json:"pile2"`
	Pile3   []Card `json:"pile3"`
	Pile4   []Card `json:"pile4"`
	Pile5   []Card `json:"pile5"`
	Pile6   []Card `json:"pile6"`
	Pile7   []Card `json:"pile7"`
	Stack1  []Card `json:"stack1"`
	Stack2  []Card `json:"stack2"`
	Stack3  []Card `json:"stack3"`
	Stack4  []Card `json:"stack4"`
	Draw    []Card `json:"draw"`
	Discard []Card `json:"discard"`
}

func (w *stateJSON) fields() [zoneCount]*[]Card {
	return [zoneCount]*[]Card{
		&w.Pile1, &w.Pile2, &w.Pile3, &w.Pile4, &w.Pile5, &w.Pile6, &w.Pile7,
		&w.Stack1, &w.Stack2, &w.Stack3, &w.Stack4,
		&w.Draw, &w.Discard,
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	var w stateJSON
	for z, f := range w.fields() {
		if s.zones[z] == nil {
			*f = []Card{}
		} else {
			*f = s.zones[z]
		}
	}
	return json.Marshal(w)
}

func (s *State) UnmarshalJSON(b []byte) error {
	var w stateJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	for z, f := range w.fields() {
		if *f == nil {
			s.zones[z] = []Card{}
		} else {
			s.zones[z] = *f
		}
	}
	return nil
}

// Fields flattens s into the named-zone record used by API responses.
func (s State) Fields() map[string][]Card {
	out := make(map[string][]Card, zoneCount)
	for z, cards := range s.zones {
		if cards == nil {
			cards = []Card{}
		}
		out[zoneNames[z]] = cards
	}
	return out
}
