// cmd/driftcheck validates consistency between the Spark catalog, the form
// labels, the translations and the seed resources.
//
// Checks:
// - spark.cue compiles, is concrete and its defaults name listed options
// - every label key the form builder asks for has a message in every language
// - the seed resources offer at least one runnable file per program type
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/matthewbaird/taskform/internal/catalog"
	"github.com/matthewbaird/taskform/internal/form"
	"github.com/matthewbaird/taskform/internal/i18n"
	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/types"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("driftcheck: ")

	projectRoot := findProjectRoot()
	failed := false

	// Phase 1: the on-disk catalog, which may differ from the one embedded
	// in an already built binary.
	path := filepath.Join(projectRoot, "internal", "catalog", "spark.cue")
	fmt.Printf("Phase 1: Validating %s...\n", path)
	src, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("reading catalog: %v", err)
	}
	c, err := catalog.Parse("spark.cue", src)
	if err != nil {
		log.Fatalf("catalog validation failed: %v", err)
	}
	for _, p := range checkDefaults(c) {
		fmt.Printf("  DRIFT: %s\n", p)
		failed = true
	}
	fmt.Println("  Catalog validates.")

	// Phase 2: translations
	fmt.Println("Phase 2: Checking label translations...")
	missing := i18n.Default().Missing(form.LabelKeys())
	for tag, keys := range missing {
		for _, k := range keys {
			fmt.Printf("  DRIFT: %s has no message for %s\n", tag, k)
		}
		failed = true
	}
	if len(missing) == 0 {
		fmt.Printf("  All %d labels translated.\n", len(form.LabelKeys()))
	}

	// Phase 3: seed resources
	fmt.Println("Phase 3: Checking seed resources...")
	store := resource.NewMemoryStore(resource.SeedResources()...)
	for _, pt := range c.ProgramTypes {
		raw, err := store.Query(context.Background(), types.ResourceFile, pt.Value)
		if err != nil {
			log.Fatalf("querying seed resources: %v", err)
		}
		if len(resource.Normalize(raw)) == 0 {
			fmt.Printf("  DRIFT: no %s file for program type %s\n", resource.Suffix(pt.Value), pt.Value)
			failed = true
		}
	}

	if failed {
		log.Fatal("drift detected")
	}
	fmt.Println("\ndriftcheck: OK — no drift detected")
}

// checkDefaults reports record defaults that are not among the options of
// their select field.
func checkDefaults(c *catalog.Catalog) []string {
	var problems []string
	for _, chk := range []struct {
		field string
		value string
		opts  []catalog.Option
	}{
		{"programType", c.Defaults.ProgramType, c.ProgramTypes},
		{"sparkVersion", c.Defaults.SparkVersion, c.SparkVersions},
		{"deployMode", c.Defaults.DeployMode, c.DeployModes},
	} {
		if !catalog.Contains(chk.opts, chk.value) {
			problems = append(problems, fmt.Sprintf("default %s %q is not an option", chk.field, chk.value))
		}
	}
	return problems
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		log.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			log.Fatal("cannot find project root (no go.mod found)")
		}
		dir = parent
	}
}
