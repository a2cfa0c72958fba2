package main

import "github.com/dailybudget/dailybudget/cmd"

func main() {
	cmd.Execute()
}
