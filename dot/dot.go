// Package dot renders session dataflow graphs and program transition FSMs
// as Graphviz "dot" text, satisfying spec §6's diagnostic-output
// requirement. Out of scope per spec §1 is pretty error reporting, not this
// — §6 explicitly calls for "a directed-graph textual description ...
// consumable by common graph renderers", so a plain dot writer (no
// graph-layout library in the retrieval pack covers this) is the grounded,
// minimal choice.
package dot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/program"
	"github.com/jabolina/calculus/session"
)

// Session renders one session definition's dataflow graph: nodes are
// processes, labelled arrows are channels annotated with their topology
// kind.
func Session(def session.Def) string {
	var b strings.Builder
	b.WriteString("digraph session {\n")
	for _, pd := range def.ProcessDefs {
		fmt.Fprintf(&b, "  p%d [label=%q];\n", pd.ID, fmt.Sprintf("P%d (%s)", pd.ID, pd.Kind.Kind))
	}
	for _, cd := range def.ChannelDefs {
		switch cd.Kind {
		case channel.Source:
			for _, c := range cd.Consumers {
				fmt.Fprintf(&b, "  p%d -> p%d [label=%q];\n", cd.Producers[0], c, fmt.Sprintf("c%d/%s", cd.ID, cd.Kind))
			}
		default:
			for _, p := range cd.Producers {
				fmt.Fprintf(&b, "  p%d -> p%d [label=%q];\n", p, cd.Consumers[0], fmt.Sprintf("c%d/%s", cd.ID, cd.Kind))
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// Program renders a program's mode FSM: nodes are modes, arrows are
// transitions.
func Program(def program.Def) string {
	var b strings.Builder
	b.WriteString("digraph program {\n")

	names := make([]string, 0, len(def.Modes))
	for name := range def.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		shape := "ellipse"
		if name == def.Initial {
			shape = "doublecircle"
		}
		fmt.Fprintf(&b, "  %q [shape=%s];\n", name, shape)
	}

	transitionNames := make([]string, 0, len(def.Transitions))
	for name := range def.Transitions {
		transitionNames = append(transitionNames, name)
	}
	sort.Strings(transitionNames)
	for _, name := range transitionNames {
		t := def.Transitions[name]
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", t.SourceMode, t.TargetMode, t.Name)
	}

	b.WriteString("}\n")
	return b.String()
}
