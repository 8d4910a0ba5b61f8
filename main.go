/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import "github.com/mvberg/serialgw/cmd"

func main() {
	cmd.Execute()
}
