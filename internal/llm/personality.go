package llm

// personalityTraits describes each playing style inside the prompt.
var personalityTraits = map[string]string{
	"aggressive":   "You prefer aggressive play and look for opportunities to bet and raise.",
	"conservative": "You play tight and only make moves with strong hands or good odds.",
	"balanced":     "You play a balanced strategy, adapting to the situation.",
	"bluffer":      "You occasionally bluff and use deception as part of your strategy.",
	"mathematical": "You focus heavily on pot odds, hand strength, and mathematical analysis.",
}

// personalityCodas are reinforced at the end of the prompt so the style
// survives long context.
var personalityCodas = map[string]string{
	"aggressive":   "Remember: You're an aggressive player who likes to bet and raise to put pressure on opponents.",
	"conservative": "Remember: You're a conservative player who only plays strong hands and folds when uncertain.",
	"bluffer":      "Remember: You're a strategic player who occasionally bluffs to keep opponents guessing.",
	"mathematical": "Remember: You're a mathematical player who focuses on odds, probabilities, and expected value.",
}

// traitFor returns the style paragraph, defaulting to balanced.
func traitFor(personality string) string {
	if t, ok := personalityTraits[personality]; ok {
		return t
	}
	return personalityTraits["balanced"]
}
