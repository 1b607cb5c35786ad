package main

import "github.com/strowk/renovate/internal/cmd"

func main() {
	cmd.Execute()
}
