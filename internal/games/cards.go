package games

// Suit of a playing card.
type Suit string

const (
	Clubs    Suit = "CLUBS"
	Diamonds Suit = "DIAMONDS"
	Hearts   Suit = "HEARTS"
	Spades   Suit = "SPADES"
)

// Rank of a playing card.
type Rank string

const (
	Two   Rank = "TWO"
	Three Rank = "THREE"
	Four  Rank = "FOUR"
	Five  Rank = "FIVE"
	Six   Rank = "SIX"
	Seven Rank = "SEVEN"
	Eight Rank = "EIGHT"
	Nine  Rank = "NINE"
	Ten   Rank = "TEN"
	Jack  Rank = "JACK"
	Queen Rank = "QUEEN"
	King  Rank = "KING"
	Ace   Rank = "ACE"
)

const deckSize = 52

// Suits and ranks in canonical deck order.
var (
	cardSuits = []Suit{Clubs, Diamonds, Hearts, Spades}
	cardRanks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

var suitSymbols = map[Suit]string{
	Clubs: "♣", Diamonds: "♦", Hearts: "♥", Spades: "♠",
}

var rankSymbols = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8",
	Nine: "9", Ten: "10", Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

// Card is one card of a (possibly multi-deck) shoe. Deck is the zero-based
// deck it came from.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
	Deck int  `json:"deck"`
}

// String returns a short form like "♠A" or "♥10".
func (c Card) String() string {
	return suitSymbols[c.Suit] + rankSymbols[c.Rank]
}

// Red reports whether the card is a heart or a diamond.
func (c Card) Red() bool {
	return c.Suit == Hearts || c.Suit == Diamonds
}

// Index is the card's position within a single canonical deck, 0-51.
func (c Card) Index() int {
	s, r := 0, 0
	for i, suit := range cardSuits {
		if suit == c.Suit {
			s = i
		}
	}
	for i, rank := range cardRanks {
		if rank == c.Rank {
			r = i
		}
	}
	return s*len(cardRanks) + r
}

// canonicalDeck enumerates deckCount decks: deck by deck, suit by suit,
// rank by rank. This order is the domain of the shuffle permutation.
func canonicalDeck(deckCount int) []Card {
	cards := make([]Card, 0, deckCount*deckSize)
	for d := 0; d < deckCount; d++ {
		for _, suit := range cardSuits {
			for _, rank := range cardRanks {
				cards = append(cards, Card{Suit: suit, Rank: rank, Deck: d})
			}
		}
	}
	return cards
}

// blackjackCardValue returns the blackjack point value of a card.
// 2-10: face value, J/Q/K: 10, A: 11 (soft)
func blackjackCardValue(rank Rank) int {
	switch rank {
	case Ace:
		return 11
	case Jack, Queen, King, Ten:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}

// blackjackHandValue calculates the best blackjack hand value (accounting for soft aces).
func blackjackHandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += blackjackCardValue(c.Rank)
		if c.Rank == Ace {
			aces++
		}
	}
	// Reduce aces from 11 to 1 if over 21
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}
