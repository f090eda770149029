/*
Package domain contains the core models and rules of the Gambit scenario engine.

A scenario is a directed graph of steps. Each step presents a situation and a
set of options; choosing an option awards (or costs) experience points and
either leads to another step or ends the scenario. This package is kept pure
and free of I/O, following Hexagonal Architecture principles: persistence,
catalog storage and narrative generation live behind the interfaces in
package ports.

# Key Entities

  - Scenario: Metadata of a training exercise (title, role, difficulty).
  - Step: A node of the scenario graph. Exactly one step per scenario is the root.
  - Option: An outgoing choice of a step, carrying an XP delta and an optional next step.
  - Progress: A user's traversal of one scenario (score, transcript, terminal flags).
  - Summary: The derived report produced once a traversal ends.

# Rules

  - Evaluate classifies an XP delta as good, risky or bad.
  - Progress.Record applies a decision; the failure check always runs before
    the completion check, so a run that reaches MaxBadDecisions on a terminal
    option ends as failed.
  - Rate maps a final score to a performance tier.
*/
package domain
