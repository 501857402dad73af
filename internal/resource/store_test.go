package resource

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/taskform/internal/types"
)

// wantJava is the normalized option tree the seed yields for JAVA.
var wantJava = []types.OptionNode{
	{Value: "1", Label: "jobs", FullName: "/jobs", Children: []types.OptionNode{
		{Value: "2", Label: "etl", FullName: "/jobs/etl", Children: []types.OptionNode{
			{Value: "3", Label: "etl-assembly-1.4.jar", FullName: "/jobs/etl/etl-assembly-1.4.jar"},
		}},
	}},
	{Value: "9", Label: "spark-examples.jar", FullName: "/spark-examples.jar"},
}

var wantPython = []types.OptionNode{
	{Value: "1", Label: "jobs", FullName: "/jobs", Children: []types.OptionNode{
		{Value: "2", Label: "etl", FullName: "/jobs/etl", Children: []types.OptionNode{
			{Value: "4", Label: "clean.py", FullName: "/jobs/etl/clean.py"},
		}},
		{Value: "5", Label: "reports", FullName: "/jobs/reports", Children: []types.OptionNode{
			{Value: "6", Label: "monthly.py", FullName: "/jobs/reports/monthly.py"},
		}},
	}},
}

func TestMemoryStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(SeedResources()...)

	raw, err := store.Query(ctx, types.ResourceFile, types.ProgramJava)
	require.NoError(t, err)
	if diff := cmp.Diff(wantJava, Options(Normalize(raw))); diff != "" {
		t.Errorf("JAVA options mismatch (-want +got):\n%s", diff)
	}

	raw, err = store.Query(ctx, types.ResourceFile, types.ProgramPython)
	require.NoError(t, err)
	if diff := cmp.Diff(wantPython, Options(Normalize(raw))); diff != "" {
		t.Errorf("PYTHON options mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStore_QueryFiltersKind(t *testing.T) {
	store := NewMemoryStore(SeedResources()...)
	raw, err := store.Query(context.Background(), "UDF", types.ProgramScala)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	require.Len(t, raw[0].Children, 1)
	if raw[0].Children[0].Name != "hive-udf.jar" {
		t.Errorf("child = %q, want hive-udf.jar", raw[0].Children[0].Name)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t), "")
	require.NoError(t, store.CreateTable(ctx))
	require.NoError(t, store.Insert(ctx, SeedResources()...))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(SeedResources()), n)

	raw, err := store.Query(ctx, types.ResourceFile, types.ProgramJava)
	require.NoError(t, err)
	if diff := cmp.Diff(wantJava, Options(Normalize(raw))); diff != "" {
		t.Errorf("JAVA options mismatch (-want +got):\n%s", diff)
	}

	raw, err = store.Query(ctx, types.ResourceFile, types.ProgramPython)
	require.NoError(t, err)
	if diff := cmp.Diff(wantPython, Options(Normalize(raw))); diff != "" {
		t.Errorf("PYTHON options mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLStore_CreateTableIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t), "")
	require.NoError(t, store.CreateTable(ctx))
	require.NoError(t, store.CreateTable(ctx))
	require.NoError(t, store.Insert(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	raw, err := store.Query(ctx, types.ResourceFile, types.ProgramJava)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestNormalize(t *testing.T) {
	in := []types.Resource{
		{ID: 1, Name: "empty", Directory: true, Children: []types.Resource{}},
		{ID: 2, Name: "nested", Directory: true, Children: []types.Resource{
			{ID: 3, Name: "deeper", Directory: true},
		}},
		{ID: 4, Name: "app.jar"},
		{ID: 5, Name: "lib", Directory: true, Children: []types.Resource{
			{ID: 6, Name: "dep.jar", Children: []types.Resource{}},
		}},
	}

	got := Normalize(in)
	want := []types.Resource{
		{ID: 4, Name: "app.jar"},
		{ID: 5, Name: "lib", Directory: true, Children: []types.Resource{
			{ID: 6, Name: "dep.jar"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}

	// Input untouched.
	require.Len(t, in[1].Children, 1)
	require.NotNil(t, in[3].Children[0].Children)
}
