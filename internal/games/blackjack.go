package games

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// BlackjackGame verifies the shoe of a blackjack round.
// The shoe is a rate-sort permutation of deckCount canonical decks, driven
// by SHA256(hash:i) for i = 1, 2, ... until every card has 4 hex digits.
type BlackjackGame struct{}

const (
	blackjackDefaultDecks = 4
	blackjackMinDecks     = 1
	blackjackMaxDecks     = 8
	blackjackDefaultSeats = 3
	blackjackMinSeats     = 1
	blackjackMaxSeats     = 7
)

// Spec returns metadata about the Blackjack game.
func (g *BlackjackGame) Spec() GameSpec {
	return GameSpec{
		ID:          "blackjack",
		Name:        "Blackjack",
		MetricLabel: "first_card",
		Hash:        "hmac-sha256",
	}
}

// BlackjackHands is the initial deal.
type BlackjackHands struct {
	Seats  [][]Card `json:"seats"`
	Dealer []Card   `json:"dealer"`
}

// BlackjackDetails is the full verified outcome.
type BlackjackDetails struct {
	Decks       int            `json:"decks"`
	SeatCount   int            `json:"seat_count"`
	Hands       BlackjackHands `json:"hands"`
	SeatValues  []int          `json:"seat_values"`
	DealerValue int            `json:"dealer_value"`
	Cards       []Card         `json:"cards"`
}

// Evaluate derives the round hash and deals the shoe.
func (g *BlackjackGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	decks, err := intParam(params, "decks", blackjackDefaultDecks)
	if err != nil {
		return GameResult{}, err
	}
	if decks < blackjackMinDecks || decks > blackjackMaxDecks {
		return GameResult{}, unsupported("blackjack decks must be between %d and %d, got %d", blackjackMinDecks, blackjackMaxDecks, decks)
	}

	seats, err := intParam(params, "seats", blackjackDefaultSeats)
	if err != nil {
		return GameResult{}, err
	}
	if seats < blackjackMinSeats || seats > blackjackMaxSeats {
		return GameResult{}, unsupported("blackjack seats must be between %d and %d, got %d", blackjackMinSeats, blackjackMaxSeats, seats)
	}

	hash, err := engine.KeyedHash(engine.SHA256, seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	cards, err := ShuffleDeck(hash, decks)
	if err != nil {
		return GameResult{}, err
	}

	hands, err := DealInitialHands(cards, seats)
	if err != nil {
		return GameResult{}, err
	}

	seatValues := make([]int, len(hands.Seats))
	for i, hand := range hands.Seats {
		seatValues[i] = blackjackHandValue(hand)
	}

	return GameResult{
		Metric:      float64(cards[0].Index()),
		MetricLabel: "first_card",
		Hash:        hash,
		Details: BlackjackDetails{
			Decks:       decks,
			SeatCount:   seats,
			Hands:       hands,
			SeatValues:  seatValues,
			DealerValue: blackjackHandValue(hands.Dealer),
			Cards:       cards,
		},
	}, nil
}

// shoeHashCount is how many SHA-256 digests cover 4 hex digits per card:
// ceil(deckCount * 52 * 4 / 64).
func shoeHashCount(deckCount int) int {
	need := deckCount * deckSize * engine.NibblesPerRate
	per := engine.SHA256.HexLength()
	return (need + per - 1) / per
}

// ShuffleDeck orders deckCount canonical decks by the rate-sort of the
// hash stream SHA256(hash:1) || SHA256(hash:2) || ...
func ShuffleDeck(hash string, deckCount int) ([]Card, error) {
	if err := engine.ValidateHashLength(engine.SHA256, hash); err != nil {
		return nil, err
	}
	if deckCount < 1 {
		return nil, unsupported("deck count must be positive, got %d", deckCount)
	}

	var stream strings.Builder
	for i := 1; i <= shoeHashCount(deckCount); i++ {
		stream.WriteString(engine.Hash(engine.SHA256, hash+":"+strconv.Itoa(i)))
	}

	deck := canonicalDeck(deckCount)
	perm, err := engine.PermuteHex(stream.String(), len(deck))
	if err != nil {
		return nil, err
	}

	shoe := make([]Card, len(perm))
	for i, idx := range perm {
		shoe[i] = deck[idx]
	}
	return shoe, nil
}

// DealInitialHands deals one card to each seat then the dealer, twice.
func DealInitialHands(cards []Card, seats int) (BlackjackHands, error) {
	need := 2 * (seats + 1)
	if len(cards) < need {
		return BlackjackHands{}, fmt.Errorf("%w: dealing %d seats needs %d cards, got %d", engine.ErrInvalidInput, seats, need, len(cards))
	}

	hands := BlackjackHands{
		Seats:  make([][]Card, seats),
		Dealer: make([]Card, 0, 2),
	}
	next := 0
	for round := 0; round < 2; round++ {
		for s := 0; s < seats; s++ {
			hands.Seats[s] = append(hands.Seats[s], cards[next])
			next++
		}
		hands.Dealer = append(hands.Dealer, cards[next])
		next++
	}
	return hands, nil
}
