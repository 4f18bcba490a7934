// main.go
package main

import "go-storefront/cmd"

func main() {
	cmd.Execute()
}
