// Package executor runs compiled query plans.
//
// A plan can be executed eagerly with List, lazily with Iterator, or through a
// range-over-func sequence with Stream. List drains the same iterator that
// Iterator returns, so for a fixed plan and data snapshot all three produce the
// same tuples in the same order.
//
// # Resource ownership
//
// Every execution holds one index cursor (and one resource.Controller cursor slot
// when a controller is configured) until it is released:
//
//   - List releases before it returns, on success and on error.
//   - An Iterator releases on exhaustion, on the first error, or on Close.
//     Callers that stop early must call Close; Close is idempotent.
//   - Stream releases when the loop ends or the caller breaks out of it.
package executor
