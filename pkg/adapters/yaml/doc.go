// Package yaml loads a dialogue graph from a single YAML document.
//
//	root: start
//	nodes:
//	  - name: start
//	    answers: ["Hi! What can I get you?"]
//	    edges:
//	      - to: pizza
//	        keywords: [order pizza, buy pizza]
//	  - name: pizza
//	    answer: One pizza coming up.
//	    edges:
//	      - to: start
//	        keywords: menu
//
// Scalar values are accepted where lists are expected, so a single answer or
// keyword does not need brackets. Unknown keys are rejected.
package yaml
