package main

import cmd "github.com/rohmanhakim/nps-crawler/internal/cli"

func main() {
	cmd.Execute()
}
