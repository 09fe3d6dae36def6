package main

import "post-sieve/cmd"

func main() {
	cmd.Execute()
}
