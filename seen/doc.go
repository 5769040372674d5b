// Package seen records the most recent thing each nickname did on a network
// and answers "seen <nick>" queries about it.
//
// It has three parts:
//   - the action model: one type per Kind carrying only that kind's fields,
//     each with a render hook used to describe it in a sentence;
//   - Recorder: a dispatch hook that turns lifecycle notifications into
//     events and stores them, replacing whatever was stored for the nick;
//   - Querier: the "seen" command, rendering the stored event with a
//     humanized time-since.
//
// Storage is behind the Store interface. MemoryStore lives here; the Postgres
// implementation is in package db.
package seen
