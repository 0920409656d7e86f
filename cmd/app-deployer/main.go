package main

import "github.com/oshokin/app-deployer/cmd/app-deployer/cmd"

func main() {
	cmd.Execute()
}
