/*
Package ports defines the driven and driving ports (interfaces) of the Gambit engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various catalog sources, progress stores and narrative
providers.

# Key Interfaces

  - ScenarioCatalog: Read-only access to scenarios and their step graphs (Memory, YAML, Loam).
  - ProgressStore: Persists one traversal per (user, scenario) with optimistic concurrency.
  - DistributedLocker: Serializes submissions across replicas.
  - Narrator: Produces a natural-language review of a finished traversal.
  - Engine: The driving port used by the HTTP, MCP and CLI adapters.
*/
package ports
