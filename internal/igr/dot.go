package igr

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteDot renders the graph in Graphviz format. Functions and branches
// become clusters; compound nodes get a grey cluster around their branches.
func WriteDot(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph IGR {")
	fmt.Fprintln(bw, "graph [compound=true];")
	fmt.Fprintln(bw, "node [shape=record];")

	g.Walk(Visitor{
		EnterSubGraph: func(sg *SubGraph) {
			name := dotName(sg)
			fmt.Fprintf(bw, "subgraph cluster_%s {\n", name)
			fmt.Fprintf(bw, "label = %q\n", sg.Name)
			fmt.Fprintln(bw, "graph [pencolor = black, bgcolor = white]")
			fmt.Fprintf(bw, "%s_in [label=\"{%s_in|%s}\"];\n", name, name, dotOutPorts(sg.Entry))
			for i := range sg.Entry {
				dotEdges(bw, g, sg.EntryRef(i), &sg.Entry[i])
			}
		},
		LeaveSubGraph: func(sg *SubGraph) {
			name := dotName(sg)
			fmt.Fprintf(bw, "%s_out [label=\"{{%s}|%s_out}\"];\n", name, dotInPort(&sg.Exit, 0), name)
			fmt.Fprintln(bw, "}")
		},
		EnterCompound: func(n *Node) {
			fmt.Fprintf(bw, "subgraph cluster_compound_%d {\n", n.ID)
			fmt.Fprintf(bw, "label = compound_%d\n", n.ID)
			fmt.Fprintln(bw, "graph [pencolor = black, bgcolor = lightgrey]")
		},
		LeaveCompound: func(*Node) {
			fmt.Fprintln(bw, "}")
		},
		Node: func(n *Node) {
			ins := make([]string, len(n.In))
			for i := range n.In {
				ins[i] = dotInPort(&n.In[i], i)
			}
			fmt.Fprintf(bw, "%d [label=\"{{%s}|%s|{<O0>%s}}\"", n.ID, strings.Join(ins, "|"), dotEscape(n.String()), dotType(n.Out.Type, n.Out.Bound()))
			switch n.Kind {
			case NodeIf, NodeFor:
				fmt.Fprint(bw, ", style = filled, fillcolor = lightgrey")
			case NodeCall:
				fmt.Fprint(bw, ", style = dashed")
			}
			fmt.Fprintln(bw, "];")
			dotEdges(bw, g, n.OutRef(), &n.Out)
		},
	})

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotName(sg *SubGraph) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(sg.Name)
}

func dotEdges(w io.Writer, g *Graph, from OutRef, p *OutPort) {
	src := dotEndpoint(g, from.Owner, true)
	for _, t := range p.targets {
		fmt.Fprintf(w, "%s:O%d -> %s:I%d;\n", src, from.Index, dotEndpoint(g, t.Owner, false), t.Index)
	}
}

func dotEndpoint(g *Graph, id ID, isSrc bool) string {
	if sg := g.SubGraph(id); sg != nil {
		if isSrc {
			return dotName(sg) + "_in"
		}
		return dotName(sg) + "_out"
	}
	return fmt.Sprint(id)
}

func dotOutPorts(ports []OutPort) string {
	parts := make([]string, len(ports))
	for i := range ports {
		parts[i] = fmt.Sprintf("<O%d>%s", i, dotType(ports[i].Type, ports[i].Bound()))
	}
	return "{" + strings.Join(parts, "|") + "}"
}

func dotInPort(p *InPort, idx int) string {
	if p.lit != nil {
		return fmt.Sprintf("<I%d>%s", idx, dotEscape(p.lit.Value.String()))
	}
	return fmt.Sprintf("<I%d>%s", idx, dotType(p.Type, p.Bound()))
}

func dotType(t Type, bound bool) string {
	switch {
	case bound && t != TypeUnknown:
		return t.String()
	case bound:
		return "*"
	default:
		return ""
	}
}

func dotEscape(s string) string {
	return strings.NewReplacer(`"`, `\"`, "{", `\{`, "}", `\}`, "|", `\|`, "<", `\<`, ">", `\>`).Replace(s)
}
