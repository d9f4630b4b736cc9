// Package study implements the study session engine: an explicit state
// machine that walks one deck's cards in a fixed order, writes confidence
// ratings through to the store, and produces a final session summary.
package study
