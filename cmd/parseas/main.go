// Command parseas validates JSON, YAML and gob documents against Go type
// expressions.
//
//	parseas check --shape '[]int' data.json
//	cat users.yaml | parseas check --shape '[]map[string]any' --protocol yaml -
//	parseas schema --shape 'map[string][]float64'
package main

import (
	"os"
)

func main() {
	os.Exit(Execute(os.Args[1:]))
}
