package main

import "github.com/createwith/invoicepdf/cmd"

func main() {
	cmd.Execute()
}
