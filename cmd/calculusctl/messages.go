package main

import "github.com/jabolina/calculus/types"

const (
	unionLine types.MID = iota
	unionBar
	unionInt
)

// line carries a string payload, plus a quit marker, on the readme,
// simplex and interactive demos' channels.
type line struct {
	Value string
	Quit  bool
}

func (line) MessageID() types.MID { return unionLine }

// bar is the sink-disconnect demo's sole payload.
type bar struct{}

func (bar) MessageID() types.MID { return unionBar }

// integer carries an addressed value, plus a quit marker, on the
// source-disconnect and fan-out demos' channels.
type integer struct {
	Value int
	Quit  bool
}

func (integer) MessageID() types.MID { return unionInt }
