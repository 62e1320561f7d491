/*
Package domain contains the core vocabulary of the arbor behavior tree interpreter.

It is kept free of I/O and of the node implementations themselves, so that builders,
drivers and adapters can all share it without import cycles.

# Key Entities

  - Status: the three-valued result of a tick (Success, Failure, Running).
  - Kind: the closed set of node variants (Root, Inverter, PrioritySelector,
    StatefulSequence, Action, Sense).
  - Action / Sense: the contracts of externally provided capabilities.
  - LifecycleHooks: observability callbacks fired while a tree is ticked.
*/
package domain
