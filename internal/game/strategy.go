package game

import "sort"

// Action is what the player does on their turn.
type Action string

const (
	Hit    Action = "hit"
	Stand  Action = "stand"
	Double Action = "double"
	Split  Action = "split"
)

// Dealer up-card values covered by every table row. An up-card Ace is 11.
const (
	MinUpCard = 2
	MaxUpCard = 11
)

type ruleKey struct {
	value  int
	upCard int
}

// Rule is a single table entry, used when listing a table.
type Rule struct {
	Value  int    `json:"value"`
	UpCard int    `json:"upCard"`
	Action Action `json:"action"`
}

// StrategyTable is an immutable basic-strategy table. Build it once with
// NewBasicStrategy and share it; nothing mutates it after construction.
type StrategyTable struct {
	pairs actionMap
	soft  actionMap
	hard  actionMap
}

// NewBasicStrategy returns the fixed table the automated player follows.
//
// Rows are written for up-cards 2 through 11 (Ace), one letter per column:
// H hit, S stand, D double, P split.
func NewBasicStrategy() *StrategyTable {
	t := &StrategyTable{
		pairs: make(actionMap),
		soft:  make(actionMap),
		hard:  make(actionMap),
	}

	// hard totals 12-17
	t.hard.row(17, "SSSSSSSSSS")
	t.hard.row(16, "SSSSSHHHHH")
	t.hard.row(15, "SSSSSHHHHH")
	t.hard.row(14, "SSSSSHHHHH")
	t.hard.row(13, "SSSSSHHHHH")
	t.hard.row(12, "HHSSSHHHHH")

	// soft totals 17-19
	t.soft.row(19, "SSSSSSSSSS")
	t.soft.row(18, "SSSDDSSHHH")
	t.soft.row(17, "HHHHHHHHHH")

	// pairs by card value; 11 is a pair of Aces
	t.pairs.row(11, "PPPPPPPPPP")
	t.pairs.row(10, "SSSSSSSSSS")
	t.pairs.row(9, "PPPPPSPPSS")
	t.pairs.row(8, "PPPPPPPPPP")

	return t
}

type actionMap map[ruleKey]Action

func (m actionMap) row(value int, actions string) {
	codes := map[rune]Action{'H': Hit, 'S': Stand, 'D': Double, 'P': Split}
	up := MinUpCard
	for _, code := range actions {
		m[ruleKey{value: value, upCard: up}] = codes[code]
		up++
	}
}

func (m actionMap) rules() []Rule {
	rules := make([]Rule, 0, len(m))
	for k, a := range m {
		rules = append(rules, Rule{Value: k.value, UpCard: k.upCard, Action: a})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Value != rules[j].Value {
			return rules[i].Value > rules[j].Value
		}
		return rules[i].UpCard < rules[j].UpCard
	})
	return rules
}

// Pairs lists the pair rows, highest value first.
func (t *StrategyTable) Pairs() []Rule { return t.pairs.rules() }

// Soft lists the soft-total rows, highest total first.
func (t *StrategyTable) Soft() []Rule { return t.soft.rules() }

// Hard lists the hard-total rows, highest total first.
func (t *StrategyTable) Hard() []Rule { return t.hard.rules() }

// Decide returns the action for hand against the dealer's up-card value.
//
// Checks run in order and the first match wins:
//
//   - a two-card pair uses the pairs table, defaulting to hit;
//   - a soft hand uses the soft table; a total with no row stands at 18 or
//     more and hits otherwise;
//   - anything else uses the hard table; a total with no row stands at 17 or
//     more and hits otherwise.
//
// A bust hand has no meaningful action and gets stand.
func (t *StrategyTable) Decide(hand Hand, dealerUpCard int) Action {
	total, softAces := evaluate(hand)
	if total > 21 {
		return Stand
	}

	if IsPair(hand) {
		if a, ok := t.pairs[ruleKey{value: hand[0].Value(), upCard: dealerUpCard}]; ok {
			return a
		}
		return Hit
	}

	if softAces > 0 {
		if a, ok := t.soft[ruleKey{value: total, upCard: dealerUpCard}]; ok {
			return a
		}
		return fallback(total, 18)
	}

	if a, ok := t.hard[ruleKey{value: total, upCard: dealerUpCard}]; ok {
		return a
	}
	return fallback(total, 17)
}

func fallback(total, standAt int) Action {
	if total >= standAt {
		return Stand
	}
	return Hit
}
