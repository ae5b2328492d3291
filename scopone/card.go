// Package scopone encodes the observable state of a Scopone player.
// Game-rule simulation lives in the environment wrapped by the training
// layer, not here.
package scopone

import "fmt"

// Suit constants — packed into the upper 4 bits of Card.
const (
	SuitBastoni uint8 = 0
	SuitCoppe   uint8 = 1
	SuitDenari  uint8 = 2
	SuitSpade   uint8 = 3
)

const (
	NumSuits = 4
	NumRanks = 10 // ace through re
	DeckSize = NumSuits * NumRanks
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank (1-10).
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4), 1-10.
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Valid reports whether the card is a real deck card.
func (c Card) Valid() bool {
	return c != EmptyCard && c.Suit() < NumSuits && c.Rank() >= 1 && c.Rank() <= NumRanks
}

// Index returns the card's deck index in suit-major, rank-ascending order
// (0-39). Action indices elsewhere in the game engine use the same order, so
// encoded hands and legal actions agree.
func (c Card) Index() int {
	return int(c.Suit())*NumRanks + int(c.Rank()) - 1
}

// CardFromIndex is the inverse of Index. Returns EmptyCard for indices
// outside the deck.
func CardFromIndex(i int) Card {
	if i < 0 || i >= DeckSize {
		return EmptyCard
	}
	return NewCard(uint8(i/NumRanks), uint8(i%NumRanks)+1)
}

var suitLetters = [NumSuits]byte{'B', 'C', 'D', 'S'}

func (c Card) String() string {
	if !c.Valid() {
		return "--"
	}
	return fmt.Sprintf("%c%d", suitLetters[c.Suit()], c.Rank())
}
