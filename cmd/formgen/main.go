// cmd/formgen prints the rendered Spark task form for one program type and
// language, as JSON or YAML. Option trees are resolved against the seed
// resources, so the output is what a fresh session would show.
//
// Usage:
//
//	formgen -program-type PYTHON -lang zh -format yaml -out gen/form/python.yaml
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/taskform/internal/catalog"
	"github.com/matthewbaird/taskform/internal/form"
	"github.com/matthewbaird/taskform/internal/i18n"
	"github.com/matthewbaird/taskform/internal/model"
	"github.com/matthewbaird/taskform/internal/resource"
)

// document is the generated file.
type document struct {
	ProgramType string               `json:"program_type"`
	Language    string               `json:"language"`
	Fields      []form.RenderedField `json:"fields"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("formgen: ")

	programType := flag.String("program-type", "", "program type to render (default: catalog default)")
	lang := flag.String("lang", "en", "label language")
	format := flag.String("format", "json", "output format: json or yaml")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	var w io.Writer = os.Stdout
	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
			log.Fatalf("creating output dir: %v", err)
		}
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("creating %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	if err := generate(w, *programType, *lang, *format); err != nil {
		log.Fatal(err)
	}
	if *out != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", *out)
	}
}

func generate(w io.Writer, programType, lang, format string) error {
	c, err := catalog.Load()
	if err != nil {
		return err
	}
	task := c.NewTask()
	if programType != "" {
		if !catalog.Contains(c.ProgramTypes, programType) {
			return fmt.Errorf("unknown program type %q", programType)
		}
		task.ProgramType = programType
	}

	m := model.New(task)
	loader := resource.NewLoader(resource.NewMemoryStore(resource.SeedResources()...),
		resource.WithResultHandler(resource.LogFailures))
	b, err := form.New(context.Background(), m, loader,
		form.WithCatalog(c),
		form.WithTranslator(i18n.Default().Match(lang)),
	)
	if err != nil {
		return err
	}
	defer b.Close()
	loader.Wait()

	doc := document{ProgramType: task.ProgramType, Language: lang, Fields: b.Render()}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		return writeYAML(w, doc)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeYAML re-encodes the JSON form of v so YAML keys match the JSON ones.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("converting to yaml: %w", err)
	}
	clearStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// clearStyle drops the flow style the JSON source gives every node.
func clearStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		clearStyle(c)
	}
}
