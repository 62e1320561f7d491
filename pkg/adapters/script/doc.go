// Package script provides scripted capabilities that replay a fixed sequence
// of outcomes, one per call.
//
// A script file lists actions with their statuses and senses with their
// values:
//
//	actions:
//	  - name: Chase
//	    statuses: [RUNNING, RUNNING, FAILURE]
//	senses:
//	  - name: CanSeeEnemy
//	    values: [true, true, false]
//	    loop: true
//
// Once a sequence is exhausted its last entry repeats, unless loop is set,
// in which case it starts over. Scripts drive simulations (`arbor run`) and
// end-to-end tests.
package script
