/*
Copyright © 2026 PGIMPACT AUTHORS
*/
package main

import "github.com/pgimpact/pgimpact/cmd"

func main() {
	cmd.Execute()
}
