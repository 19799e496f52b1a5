/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "webframe/cmd"

func main() {
	cmd.Execute()
}
