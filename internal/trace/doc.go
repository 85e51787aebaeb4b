// Package trace records what the symbol loader and the type engine do.
//
// Enable tracing from the command line:
//
//	nominal lub --trace=- --trace-level=detail util.ArrayList<lang.String> util.LinkedList<lang.String>
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer kept in memory and dumped on demand
//   - Tee: fan-out to several tracers
//
// # Scopes
//
//   - ScopeSession: session setup, class path loading
//   - ScopeQuery: one engine query (subtype, lub, descriptor lookup)
//   - ScopeCompletion: lazy completion of one symbol
//   - ScopeNode: recursive steps inside a query
//
// Every event carries the session identifier so traces from several sessions
// written to one sink can be told apart.
package trace
