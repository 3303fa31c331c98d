package server

// Built-in table lineups. Config presets with the same name override
// them; others extend the catalog.
var builtinPresets = []PresetConfig{
	{
		Name:        "test",
		Description: "Two call stations, quick deterministic games",
		MaxHands:    10,
		Seats: []SeatConfig{
			{Kind: "rule", Rule: "call", Name: "Caller One"},
			{Kind: "rule", Rule: "call", Name: "Caller Two"},
		},
	},
	{
		Name:        "balanced",
		Description: "Six rule bots across the style spectrum",
		Seats: []SeatConfig{
			{Kind: "rule", Rule: "tight", Name: "Tina"},
			{Kind: "rule", Rule: "loose", Name: "Lou"},
			{Kind: "rule", Rule: "passive", Name: "Pat"},
			{Kind: "rule", Rule: "bluff", Name: "Blake"},
			{Kind: "rule", Rule: "position_aware", Name: "Posey"},
			{Kind: "rule", Rule: "aggressive_random", Name: "Rex"},
		},
	},
	{
		Name:        "llm_showcase",
		Description: "Four model seats with distinct personalities",
		Seats: []SeatConfig{
			{Kind: "llm", Model: "gpt-4o-mini", Personality: "aggressive", Name: "Ada"},
			{Kind: "llm", Model: "gpt-4o-mini", Personality: "conservative", Name: "Cora"},
			{Kind: "llm", Model: "gpt-4o-mini", Personality: "bluffer", Name: "Bix"},
			{Kind: "llm", Model: "gpt-4o-mini", Personality: "mathematical", Name: "Mae"},
		},
	},
	{
		Name:        "human_vs_ai",
		Description: "One human seat against five rule bots",
		Seats: []SeatConfig{
			{Kind: "human", Name: "You"},
			{Kind: "rule", Rule: "tight", Name: "Tina"},
			{Kind: "rule", Rule: "loose", Name: "Lou"},
			{Kind: "rule", Rule: "call", Name: "Cal"},
			{Kind: "rule", Rule: "bluff", Name: "Blake"},
			{Kind: "rule", Rule: "random", Name: "Randy"},
		},
	},
	{
		Name:        "human_vs_llm",
		Description: "Heads-up human against a model seat",
		Seats: []SeatConfig{
			{Kind: "human", Name: "You"},
			{Kind: "llm", Model: "gpt-4o-mini", Personality: "balanced", Name: "Ada"},
		},
	},
}

// presetCatalog merges configured presets over the built-ins, keyed by
// name, preserving built-in order first.
func presetCatalog(configured []PresetConfig) []PresetConfig {
	out := make([]PresetConfig, 0, len(builtinPresets)+len(configured))
	replaced := make(map[string]int)

	for _, p := range builtinPresets {
		replaced[p.Name] = len(out)
		out = append(out, p)
	}
	for _, p := range configured {
		if i, ok := replaced[p.Name]; ok {
			out[i] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func findPreset(catalog []PresetConfig, name string) (PresetConfig, bool) {
	for _, p := range catalog {
		if p.Name == name {
			return p, true
		}
	}
	return PresetConfig{}, false
}
