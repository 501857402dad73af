package resource

import "github.com/matthewbaird/taskform/internal/types"

// SeedResources is a small resource center used by the demo server and the
// descriptor generator: jars and scripts spread over nested directories,
// plus an empty directory and a directory holding only unrelated files.
func SeedResources() []types.Resource {
	return []types.Resource{
		{ID: 1, Name: "jobs", FullName: "/jobs", Type: types.ResourceFile, Directory: true},
		{ID: 2, PID: 1, Name: "etl", FullName: "/jobs/etl", Type: types.ResourceFile, Directory: true},
		{ID: 3, PID: 2, Name: "etl-assembly-1.4.jar", FullName: "/jobs/etl/etl-assembly-1.4.jar", Type: types.ResourceFile},
		{ID: 4, PID: 2, Name: "clean.py", FullName: "/jobs/etl/clean.py", Type: types.ResourceFile},
		{ID: 5, PID: 1, Name: "reports", FullName: "/jobs/reports", Type: types.ResourceFile, Directory: true},
		{ID: 6, PID: 5, Name: "monthly.py", FullName: "/jobs/reports/monthly.py", Type: types.ResourceFile},
		{ID: 7, PID: 5, Name: "README.md", FullName: "/jobs/reports/README.md", Type: types.ResourceFile},
		{ID: 8, Name: "archive", FullName: "/archive", Type: types.ResourceFile, Directory: true},
		{ID: 9, Name: "spark-examples.jar", FullName: "/spark-examples.jar", Type: types.ResourceFile},
		{ID: 10, Name: "udf", FullName: "/udf", Type: "UDF", Directory: true},
		{ID: 11, PID: 10, Name: "hive-udf.jar", FullName: "/udf/hive-udf.jar", Type: "UDF"},
	}
}
