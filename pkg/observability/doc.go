/*
Package observability provides tools for monitoring the parley engine.

It turns engine lifecycle hooks into Prometheus metrics and structured log
lines. Hooks from several sources can be combined with Chain.
*/
package observability
