package resource

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ariga.io/atlas-go-sdk/atlasexec"
)

// SchemaDDL is the desired state of the resources table. It is executed
// directly by SQLStore.CreateTable and fed to Atlas by ApplySchema.
const SchemaDDL = `CREATE TABLE IF NOT EXISTS resources (
	id           INTEGER PRIMARY KEY,
	pid          INTEGER NOT NULL DEFAULT 0,
	name         TEXT NOT NULL,
	full_name    TEXT NOT NULL,
	type         TEXT NOT NULL,
	is_directory BOOLEAN NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_resources_type_full_name ON resources (type, full_name);
`

// ApplySchema migrates the database at url to SchemaDDL declaratively with
// the Atlas CLI found at atlasBin. devURL names the scratch database Atlas
// plans against.
func ApplySchema(ctx context.Context, atlasBin, url, devURL string) error {
	dir, err := os.MkdirTemp("", "taskform-schema")
	if err != nil {
		return fmt.Errorf("creating schema dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "schema.sql"), []byte(SchemaDDL), 0o644); err != nil {
		return fmt.Errorf("writing schema file: %w", err)
	}

	client, err := atlasexec.NewClient(dir, atlasBin)
	if err != nil {
		return fmt.Errorf("initializing atlas client: %w", err)
	}
	if _, err := client.SchemaApply(ctx, &atlasexec.SchemaApplyParams{
		URL:         url,
		To:          "file://schema.sql",
		DevURL:      devURL,
		AutoApprove: true,
	}); err != nil {
		return fmt.Errorf("applying schema with atlas: %w", err)
	}
	log.Printf("resource: schema applied with atlas to %s", url)
	return nil
}
