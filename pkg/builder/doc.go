/*
Package builder validates blueprints and constructs executable behavior trees.

Every Action and Sense record is checked against a Catalog of available
capability names, and every record must carry one of the six known kinds.
What happens to a failing record is an explicit Policy:

  - Lenient (default): the record is dropped. A Root or Inverter whose child
    failed is built without a child (it fails at tick time); a composite omits
    the failed child. Problems are returned in Result.Issues.
  - Strict: any problem fails the build with an *AggregateError.

Trees are assembled bottom-up: a parent node is only constructed once all of
its children exist, so nodes are never mutated after construction.
*/
package builder
