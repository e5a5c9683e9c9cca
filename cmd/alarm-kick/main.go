package main

import "github.com/oshokin/alarm-clock/cmd/alarm-kick/cmd"

func main() {
	cmd.Execute()
}
