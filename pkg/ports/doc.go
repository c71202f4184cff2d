/*
Package ports defines the driven ports (interfaces) for the parley engine.

These interfaces decouple the dialogue core from external implementations,
allowing the engine to work with various graph sources, storage backends and
presentation layers.

# Key Interfaces

  - GraphSource: Supplies a built dialogue graph (e.g., from YAML, Loam or the DSL).
  - StateStore: Persists and loads conversation State.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - Presenter: Receives the reply produced after each move.
*/
package ports
