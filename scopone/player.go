package scopone

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cardrl/scopone-training/util"
)

var (
	ErrMissingTable        = errors.New("missing table cards")
	ErrMissingLegalActions = errors.New("missing legal actions")
	ErrInvalidCard         = errors.New("invalid card")
	ErrDuplicateCard       = errors.New("duplicate card")
	ErrDuplicateAction     = errors.New("duplicate legal action")
	ErrActionNotInHand     = errors.New("legal action does not match a card in hand")
)

// Player holds one seat's cards: the hand still to be played and the cards
// captured so far.
type Player struct {
	ID       int
	Hand     []Card
	Captured []Card
}

func NewPlayer(id int) *Player {
	return &Player{
		ID:       id,
		Hand:     make([]Card, 0, NumRanks),
		Captured: make([]Card, 0),
	}
}

// PlayerState is the encoded observable view of the game for one player. All
// card fields hold deck indices (see Card.Index), sorted ascending.
type PlayerState struct {
	Hand         []int `json:"hand"`
	Table        []int `json:"table"`
	LegalActions []int `json:"legal_actions"`
	Captured     int   `json:"captured"`
}

// State encodes the player's view of the game given the cards currently on
// the table and the legal action indices for the acting player. Pure
// function: inputs are not mutated and malformed inputs fail with a
// validation error instead of producing a partial state.
//
// Every legal action index must be the deck index of a card currently in the
// player's hand — legal actions are the subset of held cards eligible to be
// played.
func (p *Player) State(table []Card, legalActions []int) (PlayerState, error) {
	if table == nil {
		return PlayerState{}, ErrMissingTable
	}
	if legalActions == nil {
		return PlayerState{}, ErrMissingLegalActions
	}

	seen := make(map[int]bool, len(p.Hand)+len(table))
	inHand := make(map[int]bool, len(p.Hand))
	for _, c := range p.Hand {
		if !c.Valid() {
			return PlayerState{}, fmt.Errorf("%w: hand card %v", ErrInvalidCard, uint8(c))
		}
		if seen[c.Index()] {
			return PlayerState{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c.Index()] = true
		inHand[c.Index()] = true
	}
	for _, c := range table {
		if !c.Valid() {
			return PlayerState{}, fmt.Errorf("%w: table card %v", ErrInvalidCard, uint8(c))
		}
		if seen[c.Index()] {
			return PlayerState{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c.Index()] = true
	}

	legal := make([]int, 0, len(legalActions))
	seenAction := make(map[int]bool, len(legalActions))
	for _, a := range legalActions {
		if !inHand[a] {
			return PlayerState{}, fmt.Errorf("%w: action %d", ErrActionNotInHand, a)
		}
		if seenAction[a] {
			return PlayerState{}, fmt.Errorf("%w: action %d", ErrDuplicateAction, a)
		}
		seenAction[a] = true
		legal = append(legal, a)
	}

	state := PlayerState{
		Hand:         cardIndices(p.Hand),
		Table:        cardIndices(table),
		LegalActions: legal,
		Captured:     len(p.Captured),
	}
	sort.Ints(state.LegalActions)
	return state, nil
}

// Hash returns a stable hash of the encoded state, suitable as a tabular
// state key.
func (s PlayerState) Hash() string {
	return util.JsonHash(s)
}

// cardIndices maps cards to sorted deck indices.
func cardIndices(cards []Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Index()
	}
	sort.Ints(out)
	return out
}
