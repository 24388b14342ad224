// Package dispatcher executes the actions the matcher resolves.
//
// Each resolved step of a pending command is dispatched once. Operators
// wait for a motion unless a visual selection supplies their range;
// motions move every cursor or hand the pending operator its span;
// commands run once per cursor or once for the whole set. The requested
// transformations are finalized after all invocations of a step, applied
// to the document as one batch, and the resulting cursors and mode are
// installed.
//
// User errors abort the current command and are reported to the status
// line. Warnings are logged. Faults panic, and are recovered into an
// aborted command when RecoverFromPanic is set.
package dispatcher
