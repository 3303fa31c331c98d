// Package holdem implements the no-limit Texas Hold'em rules engine behind
// the session orchestrator.
//
// The main type is Engine, which owns one table across multiple hands:
// blind rotation, betting streets, side pots, showdown evaluation and chip
// accounting. The orchestration layer drives it one action at a time via
// AvailableMoves and TakeAction.
//
// # Determinism
//
// Every source of randomness flows through the injected *rand.Rand, so a
// table constructed with the same seed deals identical hands:
//
//	eng, _ := holdem.NewEngine(cfg, randutil.New(42), logger)
//	eng.StartHand()
//
// # Pot reporting between hands
//
// After a hand settles, Pots() keeps returning the settled breakdown until
// the next StartHand while the chips are already back in the winners'
// stacks. Observers computing pots-plus-stacks at a hand boundary must
// zero the pot totals first.
//
// Engine is not safe for concurrent use; callers serialize access.
package holdem
