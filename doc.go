/*
Package parley is a branching dialogue authoring and runtime engine.

Authors draw a dialogue as a graph of nodes (start, dialogue lines, choices and
ends) joined by edges between named ports. The compiler validates that graph
and turns it into a compact runtime script; the engine then plays the script
one unit at a time for a session, reporting choice outcomes to analytics.

# Concept

A document (pkg/graph) is the editable form: nodes carry canvas positions and
edges live in a side table keyed by output port. Compilation (pkg/compiler)
either fully succeeds or refuses with every violation found. The script
(pkg/script) is immutable and shared by any number of sessions.

Playback (pkg/engine) never moves on its own. The host asks for the current
unit, shows it through a Display, and calls Advance or Choose. Broken
references end a session and are reported as anomalies instead of errors.

# Usage

	s, err := parley.Load("onboarding.yaml")
	if err != nil {
		log.Fatal(err)
	}

	eng := parley.NewEngine(s, engine.WithDisplay(myDisplay))
	unit, _ := eng.Start(ctx)
	for !unit.Ended() {
		switch unit.Kind {
		case domain.UnitDialogue:
			unit, _ = eng.Advance(ctx)
		case domain.UnitChoice:
			_, unit, _ = eng.Choose(ctx, pick(unit.Choices))
		}
	}

Sessions that outlive a process are handled by pkg/session with one of the
state stores in pkg/adapters (memory, file, redis).
*/
package parley
