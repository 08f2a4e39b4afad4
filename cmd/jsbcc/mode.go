package main

import "errors"

const pipeFlag = "-p"

const usage = `Usage: jsbcc input_file [byte_code_file]
       Or
       ls *.js | jsbcc -p`

var errUsage = errors.New("no input file")

type mode int

const (
	modeSingle mode = iota
	modePipe
)

type invocation struct {
	mode   mode
	input  string
	output string
}

// resolve maps command-line arguments to an invocation. Only -p is special,
// and only as the first argument; anything else is taken as a path.
func resolve(args []string) (invocation, error) {
	if len(args) == 0 {
		return invocation{}, errUsage
	}
	if args[0] == pipeFlag {
		return invocation{mode: modePipe}, nil
	}
	inv := invocation{mode: modeSingle, input: args[0]}
	if len(args) > 1 {
		inv.output = args[1]
	}
	return inv, nil
}
