package solitaire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Suit int

const (
	Spades Suit = iota
	Clubs
	Hearts
	Diamonds
)

// Suits lists the four suits in canonical deck order.
var Suits = [...]Suit{Spades, Clubs, Hearts, Diamonds}

var suitNames = [...]string{"spades", "clubs", "hearts", "diamonds"}

type Color int

const (
	Black Color = iota
	Red
)

func (s Suit) String() string {
	if s < Spades || s > Diamonds {
		return "Suit(" + strconv.Itoa(int(s)) + ")"
	}
	return suitNames[s]
}

// Color reports the suit color: spades and clubs are black, hearts and diamonds red.
func (s Suit) Color() Color {
	switch s {
	case Hearts, Diamonds:
		return Red
	default:
		return Black
	}
}

func ParseSuit(s string) (Suit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range suitNames {
		if n == name {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

func (s Suit) MarshalText() ([]byte, error) {
	if s < Spades || s > Diamonds {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	v, err := ParseSuit(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Value is a card rank, Ace (1) through King (13).
type Value int

const (
	Ace Value = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Values lists the ranks in ascending order.
var Values = [...]Value{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

func (v Value) Valid() bool { return v >= Ace && v <= King }

func (v Value) String() string {
	switch v {
	case Ace:
		return "ace"
	case Jack:
		return "jack"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	if v.Valid() {
		return strconv.Itoa(int(v))
	}
	return "Value(" + strconv.Itoa(int(v)) + ")"
}

func ParseValue(s string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ace":
		return Ace, nil
	case "jack":
		return Jack, nil
	case "queen":
		return Queen, nil
	case "king":
		return King, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < int(Two) || n > int(Ten) {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return Value(n), nil
}

func (v Value) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid value %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *Value) UnmarshalText(b []byte) error {
	p, err := ParseValue(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// UnmarshalJSON accepts both "7" and 7; browsers send pip values either way.
func (v *Value) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n < int(Two) || n > int(Ten) {
			return fmt.Errorf("invalid value %d", n)
		}
		*v = Value(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid value %s", string(b))
	}
	return v.UnmarshalText([]byte(s))
}

type Card struct {
	Suit  Suit  `json:"suit"`
	Value Value `json:"value"`
	Up    bool  `json:"up"`
}

// Same reports whether both cards have the same suit and value, ignoring Up.
func (c Card) Same(o Card) bool {
	return c.Suit == o.Suit && c.Value == o.Value
}

func (c Card) String() string {
	var r string
	switch c.Value {
	case Ace:
		r = "A"
	case Jack:
		r = "J"
	case Queen:
		r = "Q"
	case King:
		r = "K"
	default:
		r = strconv.Itoa(int(c.Value))
	}
	return r + strings.ToUpper(c.Suit.String()[:1])
}
