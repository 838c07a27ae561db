/*
Package domain contains the core domain models of the parley dialogue engine.

It defines the entities shared by the authoring graph, the compiler and the
playback engine. This package is kept pure and free of I/O, following the
same Hexagonal Architecture split as the rest of the module.

# Key Entities

  - Node: a unit in the dialogue graph. Its Payload is one of StartPayload,
    DialoguePayload, ChoicePayload or EndPayload.
  - Choice: an option of a choice node, routed through its own output port.
  - Edge: an authoring-only connection between an output port and a node input.
  - Text: a language-keyed string map carried untouched through every layer.
  - Unit: what the playback engine asks the display to show.
  - ChoiceEvent: the analytics record emitted for every choice made.
  - SessionState: the persisted snapshot of a playback session.
*/
package domain
