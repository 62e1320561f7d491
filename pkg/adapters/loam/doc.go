/*
Package loam keeps a library of named blueprints on disk using Loam.

Each blueprint is a Markdown document. The front matter holds the tree and the
body holds the description, so a library stays readable in any editor:

	---
	id: guard
	tree:
	  type: Root
	  child:
	    type: Action
	    name: Patrol
	---
	Walk the perimeter.
*/
package loam
