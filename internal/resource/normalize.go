package resource

import (
	"strconv"

	"github.com/matthewbaird/taskform/internal/types"
)

// Normalize returns a copy of the tree without branches that lead to no
// file: directories with no file beneath them are dropped, and surviving
// nodes with no children have a nil Children slice. The input is not
// modified.
func Normalize(tree []types.Resource) []types.Resource {
	out := make([]types.Resource, 0, len(tree))
	for _, n := range tree {
		if len(n.Children) > 0 {
			n.Children = Normalize(n.Children)
		}
		if len(n.Children) == 0 {
			n.Children = nil
			if n.Directory {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// Options converts a resource tree into option nodes keyed by resource id.
func Options(tree []types.Resource) []types.OptionNode {
	out := make([]types.OptionNode, 0, len(tree))
	for _, n := range tree {
		node := types.OptionNode{
			Value:    strconv.FormatInt(n.ID, 10),
			Label:    n.Name,
			FullName: n.FullName,
		}
		if len(n.Children) > 0 {
			node.Children = Options(n.Children)
		}
		out = append(out, node)
	}
	return out
}
