// Command harbor runs port logistics scenarios and the billing demo.
package main

import "github.com/papapumpkin/harbor/cmd"

func main() {
	cmd.Execute()
}
