// Package game runs a fixed-seat Texas Hold'em table.
//
// A Session owns the seats, their chip stacks and the dealer button for the
// life of the process. An Orchestrator plays one hand at a time against the
// session: it shuffles a fresh deck, deals, posts blinds and drives a
// BettingEngine through pre-flop, flop, turn and river before paying out at
// showdown or as soon as a single seat survives.
//
// # Decisions
//
// Every seat has an ActionSource. When a seat is on turn the orchestrator asks
// its source for a decision and then waits on the shared Inbox. Sources answer
// asynchronously by submitting a Decision addressed to a seat index:
//
//	inbox := game.NewInbox(16)
//	human := game.NewHumanSource(0, inbox)
//	bots := game.NewAISource(policy, inbox, quartz.NewReal(), rng, logger)
//	sources := game.Sources{human, bots, bots, bots}
//
// Decisions for a seat that is not on turn are dropped. Illegal decisions are
// rejected without touching any state and the same seat is asked again.
//
// # Events
//
// Nothing outside this package mutates seats or hand state. Presentation code
// subscribes to the EventBus and rebuilds what it needs from the events.
//
// # Hand ranking
//
// Showdown uses poker.Classify, which counts rank multiplicities only. Ties on
// strength class split the pot evenly and any odd chips are not paid out.
package game
