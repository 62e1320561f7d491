/*
Package observability provides lifecycle hooks for monitoring behavior trees.

Metrics feeds Prometheus collectors (ticks by status, tick duration, node
visits, configuration errors); LoggingHooks writes the same events to a
structured logger. Both return domain.LifecycleHooks and can be combined
with Merge before being passed to runner.WithHooks.
*/
package observability
