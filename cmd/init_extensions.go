/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go opens the catalogue, builds the shared service and
// initialises extensions on first use. Extensions register in init() and
// declare commands before any store exists.

package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
)

// noStoreCommands lists commands that bypass automatic store initialisation.
// Built dynamically from bootstrap commands plus extension-declared storeless commands.
var noStoreCommands map[string]bool

// buildNoStoreCommands returns the bootstrap commands plus those declared
// by extensions implementing extension.Storeless, such as "highlight".
func buildNoStoreCommands() map[string]bool {
	cmds := map[string]bool{
		"init":   true,
		"guide":  true,
		"config": true,
		"llm":    true,
	}

	// Add extension-declared storeless commands
	for _, s := range extension.Implementing[extension.Storeless]() {
		for _, name := range s.NoStoreCommands() {
			cmds[name] = true
		}
	}

	return cmds
}

// Global extension context, created during initialisation.
var (
	extContext extension.Context
	extService *glossary.Service
	initOnce   sync.Once
	initErr    error
)

// initExtensions creates the glossary service and injects it into extensions.
// With --catalog the service reads a catalogue file into memory instead of
// opening a database.
// It runs once per process. A missing repository surfaces as
// repo.ErrNotInitialised, which tells the user to run "glossd init".
func initExtensions() error {
	initOnce.Do(func() {
		var svc *glossary.Service
		var err error
		if path := Catalog(); path != "" {
			svc, err = glossary.OpenCatalog(context.Background(), path)
			if err != nil {
				initErr = fmt.Errorf("loading catalogue: %w", err)
				return
			}
			log.SetProject(path)
		} else {
			svc, err = glossary.New(DB())
			if err != nil {
				initErr = fmt.Errorf("opening database: %w", err)
				return
			}
			log.SetProject(svc.Dir())
		}
		extService = svc

		extContext = extension.NewContext(svc, svc.DB(), svc.Config())
		svc.SetExtensionContext(extContext)

		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}

		// Build noStoreCommands after all extensions are registered
		noStoreCommands = buildNoStoreCommands()
	})
}
