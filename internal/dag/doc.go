// Package dag builds the execution graph for a mission. It takes the loaded
// config model, creates one node per step and resource, links explicit
// (depends_on) and implicit (expression reference) dependencies, and validates
// the result is acyclic before the executor runs it.
package dag
