package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arkivegraph/pathql/internal/collab/memory"
	"github.com/arkivegraph/pathql"
)

const helpText = `pathql interactive REPL

Commands:
  new <name>            Create a new empty in-memory dataset
  load <name> <file>    Load a dataset from a JSON fixture file
  unload <name>         Remove a loaded dataset
  list                  List all loaded datasets
  use <name>            Set the active dataset for queries
  k <n>                 Set the result width for subsequent queries (default 5)
  help                  Show this help message
  exit / quit           Exit the REPL

Any other input is treated as a path query against the active dataset.

Query examples:
  @gw -[born]-> type:date
  "george washington" -[affiliated]-> type:organization
  type:person ~"founding father"
`

// dataset pairs an Engine with the in-memory collaborators backing it, so
// the REPL can load more fixtures into the same dataset across commands.
type dataset struct {
	engine   *pathql.Engine
	graph    *memory.Graph
	vectors  *memory.VectorIndex
	embedder *memory.Embedder
}

func newDataset() *dataset {
	engine, g, v, e := pathql.NewDemo(64)
	return &dataset{engine: engine, graph: g, vectors: v, embedder: e}
}

func main() {
	datasets := make(map[string]*dataset)
	var active string
	k := 5

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("pathql — path query engine over a heterogeneous knowledge graph")
	fmt.Println(`Type "help" for available commands.`)
	fmt.Println()

	for {
		if active != "" {
			fmt.Printf("[%s]> ", active)
		} else {
			fmt.Print("> ")
		}

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "exit", "quit":
			return

		case "help":
			fmt.Print(helpText)

		case "list":
			if len(datasets) == 0 {
				fmt.Println("(no datasets loaded)")
			} else {
				for name := range datasets {
					marker := " "
					if name == active {
						marker = "*"
					}
					fmt.Printf("  %s %s\n", marker, name)
				}
			}

		case "new":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: new <name>")
				continue
			}
			name := parts[1]
			datasets[name] = newDataset()
			if active == "" {
				active = name
			}
			fmt.Printf("created empty dataset %q\n", name)

		case "use":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: use <name>")
				continue
			}
			name := parts[1]
			if _, ok := datasets[name]; !ok {
				fmt.Fprintf(os.Stderr, "no dataset named %q\n", name)
				continue
			}
			active = name
			fmt.Printf("active dataset set to %q\n", name)

		case "k":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: k <n>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n <= 0 {
				fmt.Fprintln(os.Stderr, "k must be a positive integer")
				continue
			}
			k = n

		case "load":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: load <name> <file>")
				continue
			}
			name, path := parts[1], parts[2]
			ds, ok := datasets[name]
			if !ok {
				ds = newDataset()
				datasets[name] = ds
			}
			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error opening %q: %v\n", path, err)
				continue
			}
			n, err := memory.LoadFixture(context.Background(), f, ds.graph, ds.vectors, ds.embedder)
			f.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error loading %q: %v\n", path, err)
				continue
			}
			if active == "" {
				active = name
			}
			fmt.Printf("loaded %q (%d entities)\n", name, n)

		case "unload":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: unload <name>")
				continue
			}
			name := parts[1]
			if _, ok := datasets[name]; !ok {
				fmt.Fprintf(os.Stderr, "no dataset named %q\n", name)
				continue
			}
			delete(datasets, name)
			if active == name {
				active = ""
			}
			fmt.Printf("unloaded %q\n", name)

		default:
			if active == "" {
				fmt.Fprintln(os.Stderr, "no active dataset — use 'new' or 'load' first")
				continue
			}
			resp, err := datasets[active].engine.Query(context.Background(), pathql.Request{Path: line, K: k})
			if err != nil {
				fmt.Fprintf(os.Stderr, "query error: %v\n", err)
				continue
			}
			printResponse(resp)
		}
	}
}

func printResponse(resp *pathql.Response) {
	if resp.Metadata.ErrorTag != "" {
		fmt.Printf("%s: %s\n", resp.Metadata.ErrorTag, resp.Metadata.Reason)
		return
	}
	if len(resp.Results) == 0 {
		fmt.Println("(no results)")
		return
	}
	for i, r := range resp.Results {
		label := r.Entity.Label
		if label == "" {
			label = r.Entity.ID
		}
		fmt.Printf("%2d. %s (%s)  score=%.4f\n", i+1, label, r.Entity.Type, r.Score)
	}
	b, _ := json.MarshalIndent(resp.Metadata, "", "  ")
	fmt.Printf("metadata: %s\n", b)
}
