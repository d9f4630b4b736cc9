// Package store owns the durable collection of decks and their cards. All
// mutation happens through the Store so entity identity and the
// confidence/lastStudied invariant hold, and every mutation writes the full
// state through to a Snapshotter as a single durable record.
package store
