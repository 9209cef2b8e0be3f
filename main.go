package main

import "github.com/peternagy/dbquerytool/cmd"

func main() {
	cmd.Execute()
}
