package agent

import (
	"fmt"
	"slices"
)

// Kind discriminates how a seat is played.
type Kind string

const (
	KindHuman Kind = "human"
	KindRule  Kind = "rule"
	KindLLM   Kind = "llm"
)

// RuleNames lists the built-in rule agents in catalog order.
var RuleNames = []string{
	"call",
	"random",
	"aggressive_random",
	"passive",
	"tight",
	"loose",
	"bluff",
	"position_aware",
}

// Personalities lists the LLM playing styles in catalog order.
var Personalities = []string{
	"aggressive",
	"conservative",
	"balanced",
	"bluffer",
	"mathematical",
}

// KnownRule reports whether name is a built-in rule agent.
func KnownRule(name string) bool {
	return slices.Contains(RuleNames, name)
}

// KnownPersonality reports whether p is a built-in LLM playing style.
func KnownPersonality(p string) bool {
	return slices.Contains(Personalities, p)
}

// SeatSpec declares which agent plays a seat. Exactly the fields for the
// declared kind are consulted; the rest stay empty.
type SeatSpec struct {
	Kind        Kind   `json:"kind"`
	Rule        string `json:"rule,omitempty"`
	Model       string `json:"model,omitempty"`
	Personality string `json:"personality,omitempty"`
}

// Validate rejects specs that no constructor can satisfy.
func (s SeatSpec) Validate() error {
	switch s.Kind {
	case KindHuman:
		return nil
	case KindRule:
		if !KnownRule(s.Rule) {
			return fmt.Errorf("unknown rule agent %q", s.Rule)
		}
		return nil
	case KindLLM:
		if s.Model == "" {
			return fmt.Errorf("llm seat requires a model")
		}
		if s.Personality != "" && !KnownPersonality(s.Personality) {
			return fmt.Errorf("unknown personality %q", s.Personality)
		}
		return nil
	default:
		return fmt.Errorf("unknown agent kind %q", s.Kind)
	}
}

// Descriptor is one entry of the agent listing clients use to build
// seat configurations. Available is false when the agent's backing
// service is not configured, such as LLM seats without a gateway.
type Descriptor struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

var ruleDescriptions = map[string]string{
	"call":              "Calls any bet, checks when free",
	"random":            "Uniform over the legal actions, raise sized at random",
	"aggressive_random": "Random, but never folds while another action is legal",
	"passive":           "Checks when free, calls small bets, folds to pressure",
	"tight":             "Folds weak hands to bets, raises only strong ones",
	"loose":             "Plays most hands, raises decent ones",
	"bluff":             "Passive line with occasional flop and turn bluffs",
	"position_aware":    "Tight ranges that widen in late position",
}

var personalityDescriptions = map[string]string{
	"aggressive":   "Pressures with raises and big sizings",
	"conservative": "Premium hands only, avoids thin spots",
	"balanced":     "Solid fundamentals, mixes value and protection",
	"bluffer":      "Unpredictable, attacks weakness",
	"mathematical": "Pot odds and equity driven",
}

// Catalog returns every agent a seat can be configured with. Every
// entry starts available; callers that know a backing service is
// missing clear the flag.
func Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(RuleNames)+len(Personalities)+1)
	for _, name := range RuleNames {
		out = append(out, Descriptor{ID: name, Kind: KindRule, Description: ruleDescriptions[name], Available: true})
	}
	for _, p := range Personalities {
		out = append(out, Descriptor{ID: p, Kind: KindLLM, Description: personalityDescriptions[p], Available: true})
	}
	out = append(out, Descriptor{ID: "human", Kind: KindHuman, Description: "Seat driven by propose_action calls", Available: true})
	return out
}
