/*
Package blueprint defines the structural description of a behavior tree as
produced by an external generator, and decodes it from JSON or YAML.

A description is a tree of records tagged with a node kind:

	{
	  "description": "chase enemies in sight",
	  "tree": {
	    "type": "Root",
	    "child": {
	      "type": "StatefulSequence",
	      "children": [
	        {"type": "Sense", "name": "CanSeeEnemy"},
	        {"type": "Action", "name": "Chase"}
	      ]
	    }
	  }
	}

A bare record (without the "tree" envelope) is accepted too. Decoding is
lenient per record: a nested record that cannot be interpreted is marked as
malformed instead of failing the whole document, so the builder can apply its
omission policy to that subtree only.
*/
package blueprint
