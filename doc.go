// Package remotesum provides a coordinator which computes the element-wise
// sum of two integer arrays with a fixed set of remote operators.
//
// Operators are addressed by static configuration. The coordinator keeps one
// websocket connection to each operator and issues one scalar Add call per
// element pair.
//
// A task is split into two halves which are resolved concurrently. Each half
// prefers its own operator and fails over to the other operators in
// configuration order. When an operator fails in the middle of a half, the
// whole half is retried on the next operator from its first element. When
// every operator fails for a half, the task fails and no partial result is
// returned.
//
// A background prober pings every operator periodically and records its
// liveness. Replies to tasks carry a fresh snapshot of operator liveness
// taken at dispatch time instead.
package remotesum
