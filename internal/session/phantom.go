package session

import "fmt"

// The rules engine keeps reporting a settled hand's pot breakdown until
// the next deal, after the chips are already back in the winners'
// stacks. Left alone, a pots-plus-stacks audit at the hand boundary
// over-counts by exactly the settled pot: phantom chips.
//
// projectPots zeroes pot totals whenever no hand is running, so wire
// snapshots stay conserved at stable points.
func projectPots(engine RulesEngine) []PotView {
	pots := engine.Pots()
	handRunning := engine.IsHandRunning()

	out := make([]PotView, 0, len(pots))
	for _, p := range pots {
		view := PotView{
			PotID:    p.ID,
			Total:    p.Amount,
			Eligible: append([]int(nil), p.Eligible...),
		}
		if !handRunning {
			view.Total = 0
		}
		out = append(out, view)
	}
	return out
}

// auditConservation asserts that pots plus stacks equal the table's
// expected total after the phantom correction. A non-zero delta here
// means real chips were created or destroyed, which is fatal to the
// session.
func auditConservation(engine RulesEngine, seats int, expectedTotal int) error {
	total := 0
	for seat := 0; seat < seats; seat++ {
		total += engine.Chips(seat)
	}
	if engine.IsHandRunning() {
		for _, p := range engine.Pots() {
			total += p.Amount
		}
	}

	if total != expectedTotal {
		return fmt.Errorf("chip conservation violated: table holds %d, expected %d", total, expectedTotal)
	}
	return nil
}
