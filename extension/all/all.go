// Package all imports all built-in glossd extensions.
// Import this package to register all built-in commands.
package all

import (
	// Core extensions - each registers itself via init()
	_ "github.com/stronk7/moodle-block-search-glossaries/extension/catalog"
	_ "github.com/stronk7/moodle-block-search-glossaries/extension/core"
	_ "github.com/stronk7/moodle-block-search-glossaries/extension/search"
)
