// Package session ties the key-sequence interpreter together for one
// editing session.
//
// A Session owns the mode, the cursor set, and the command being typed.
// Keys arrive one at a time through HandleKey. Each key is matched
// against the action catalog. Complete matches are dispatched, and a
// finished command is recorded for dot repeat and for the macro being
// recorded, if any. Sessions are not meant to be driven from several
// goroutines at once; HandleKey serializes callers.
//
// Basic usage:
//
//	s, err := session.New(config.Default(), buffer.New("hello"), session.NopUI{}, nil, log, session.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, ev := range key.MustParseSequence("dw") {
//	    s.HandleKey(ev)
//	}
package session
