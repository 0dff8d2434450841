package main

import "github.com/kendall-kelly/printshop-api/cmd"

func main() {
	cmd.Execute()
}
