package main

import "github.com/olivierh59500/neuralsearch/cmd"

func main() {
	cmd.Execute()
}
