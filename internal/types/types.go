// Package types provides the Go structs shared by the form generator, the
// resource store and the wire protocol. JSON keys of SparkTask are the bound
// field names used by field descriptors, so a record serialises with the same
// names a renderer binds against.
package types

import (
	"encoding/json"
	"time"
)

// Program types. PYTHON is the interpreted variant: it needs no main class and
// no main jar.
const (
	ProgramJava   = "JAVA"
	ProgramScala  = "SCALA"
	ProgramPython = "PYTHON"
)

// ResourceFile is the resource kind queried for jar and script pickers.
const ResourceFile = "FILE"

// SparkTask is the configuration record of a Spark task node.
type SparkTask struct {
	ProgramType    string       `json:"programType"`
	SparkVersion   string       `json:"sparkVersion"`
	MainClass      string       `json:"mainClass"`
	MainJar        string       `json:"mainJar"` // resource id, "" when unset
	DeployMode     string       `json:"deployMode"`
	AppName        string       `json:"appName"`
	DriverCores    int          `json:"driverCores"`
	DriverMemory   string       `json:"driverMemory"`
	NumExecutors   int          `json:"numExecutors"`
	ExecutorMemory string       `json:"executorMemory"`
	ExecutorCores  int          `json:"executorCores"`
	MainArgs       string       `json:"mainArgs"`
	Others         string       `json:"others"`
	ResourceList   []string     `json:"resourceList"`
	LocalParams    []LocalParam `json:"localParams"`
}

// Clone returns a deep copy of the record.
func (t SparkTask) Clone() SparkTask {
	c := t
	if t.ResourceList != nil {
		c.ResourceList = append([]string(nil), t.ResourceList...)
	}
	if t.LocalParams != nil {
		c.LocalParams = append([]LocalParam(nil), t.LocalParams...)
	}
	return c
}

// LocalParam is one user-defined key/value pair of a task.
type LocalParam struct {
	Prop   string `json:"prop"`
	Direct string `json:"direct,omitempty"` // "IN" or "OUT"
	Type   string `json:"type,omitempty"`   // "VARCHAR", "INTEGER", ...
	Value  string `json:"value"`
}

// Resource is one node of the raw resource tree returned by the resource
// query service. Directories carry children; files do not.
type Resource struct {
	ID        int64      `json:"id"`
	PID       int64      `json:"pid"`
	Name      string     `json:"name"`
	FullName  string     `json:"full_name"`
	Type      string     `json:"type"`
	Directory bool       `json:"directory"`
	Children  []Resource `json:"children,omitempty"`
}

// OptionNode is one selectable item of a select or tree-select field.
type OptionNode struct {
	Value    string       `json:"value"`
	Label    string       `json:"label"`
	FullName string       `json:"full_name,omitempty"`
	Children []OptionNode `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n OptionNode) IsLeaf() bool { return len(n.Children) == 0 }

// SourceRef identifies something a domain event refers to: the editing
// session, a field of its record, or a program type whose options were
// loaded.
type SourceRef struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Role       string `json:"role"` // "subject", "target", "context"
}

// ActivityEntry is one domain event indexed under one of its references.
// One event produces one entry per reference.
type ActivityEntry struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	OccurredAt        time.Time       `json:"occurred_at"`
	IndexedEntityType string          `json:"indexed_entity_type"`
	IndexedEntityID   string          `json:"indexed_entity_id"`
	EntityRole        string          `json:"entity_role"`
	SourceRefs        []SourceRef     `json:"source_refs"`
	Summary           string          `json:"summary"`
	Category          string          `json:"category"`
	Weight            string          `json:"weight"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}
