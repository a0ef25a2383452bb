// Command datacleanr runs the DataCleanr API server and offers offline
// analysis of tabular files from the terminal.
package main

func main() {
	Execute()
}
