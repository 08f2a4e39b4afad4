// Command jsbcc compiles script files into byte-code files.
//
//	jsbcc input_file [byte_code_file]
//	ls *.js | jsbcc -p
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
