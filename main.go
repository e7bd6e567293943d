/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/
package main

import (
	"github.com/stronk7/moodle-block-search-glossaries/cmd"

	// Import extensions - each registers itself via init()
	_ "github.com/stronk7/moodle-block-search-glossaries/extension/all"
)

func main() {
	cmd.Execute()
}
