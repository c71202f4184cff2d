/*
Package domain contains the core domain models of the parley dialogue engine.

It defines the entities of the conversation graph and the runtime snapshot of
a conversation. This package is kept pure and free of external dependencies
like I/O or persistence.

# Key Entities

  - Node: A conversation state holding pre-authored answers.
  - Edge: A directed transition guarded by trigger keywords.
  - State: The persisted position of one conversation (current node, history).
  - Reply: The answer emitted after a move, handed to the presentation side.
*/
package domain
