package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generate(&buf, "PYTHON", "en", "json"))

	var doc struct {
		ProgramType string `json:"program_type"`
		Fields      []struct {
			Field   string `json:"field"`
			Name    string `json:"name"`
			Hidden  bool   `json:"hidden"`
			Options []struct {
				Label string `json:"label"`
			} `json:"options"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "PYTHON", doc.ProgramType)
	require.Len(t, doc.Fields, 15)
	assert.Equal(t, "mainClass", doc.Fields[2].Field)
	assert.True(t, doc.Fields[2].Hidden)
	assert.Equal(t, "Main Package", doc.Fields[3].Name)
	require.Len(t, doc.Fields[3].Options, 1)
	assert.Equal(t, "jobs", doc.Fields[3].Options[0].Label)
}

func TestGenerate_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generate(&buf, "", "zh", "yaml"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "SCALA", doc["program_type"])
	fields, ok := doc["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 15)
	assert.Equal(t, "程序类型", fields[0].(map[string]any)["name"])
}

func TestGenerate_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, generate(&buf, "RUBY", "en", "json"))
	assert.Error(t, generate(&buf, "", "en", "toml"))
}
