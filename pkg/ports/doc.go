/*
Package ports defines the driven ports (interfaces) of the behavior tree runtime.

These interfaces decouple the tick driver from external implementations, so
the same driver can publish its state to memory, a directory or Redis.

# Key Interfaces

  - SnapshotStore: persists the latest per-tick Snapshot of each agent.

The reusable contract suite for adapters lives in the ports/tests package.
*/
package ports
