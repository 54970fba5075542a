package graph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/deploygraph/pkg/graph"
	"github.com/matzehuels/deploygraph/pkg/semantic"
)

func ExampleWriteJSON() {
	g := &graph.Graph{
		Nodes: []graph.Node{{
			ID:           "module.net",
			SymbolicName: "module.net",
			Kind:         graph.KindModule,
			Ref:          "./net.tf",
			Range:        semantic.Range{End: semantic.Position{Line: 2, Char: 1}},
		}},
	}

	if err := graph.WriteJSON(g, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "module.net",
	//       "symbolicName": "module.net",
	//       "resourceType": null,
	//       "modulePath": "./net.tf",
	//       "isCollection": false,
	//       "range": {
	//         "start": {
	//           "line": 0,
	//           "char": 0
	//         },
	//         "end": {
	//           "line": 2,
	//           "char": 1
	//         }
	//       },
	//       "hasError": false
	//     }
	//   ],
	//   "edges": [],
	//   "hasErrors": false
	// }
}

func ExampleNodeID() {
	parent := graph.NodeID("", "module.net")
	fmt.Println(parent)
	fmt.Println(graph.NodeID(parent, "aws_subnet.a"))
	// Output:
	// module.net
	// module.net::aws_subnet.a
}

func ExampleToDOT() {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "module.net", SymbolicName: "module.net", Kind: graph.KindModule, Ref: "./net.tf"},
			{ID: "module.net::aws_subnet.a", ParentID: "module.net", SymbolicName: "aws_subnet.a", Kind: graph.KindResource, Ref: "aws_subnet"},
		},
	}

	dot := graph.ToDOT(g)
	fmt.Println(strings.Contains(dot, `subgraph "cluster_module.net"`))
	// Output:
	// true
}
