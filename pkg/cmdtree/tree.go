// Package cmdtree defines the canonical command tree for the interactive
// shell: one declarative source for tab completion, ? help, and command
// resolution.
package cmdtree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

// Node defines a completion tree node with description, children, and
// optional dynamic values.
type Node struct {
	Desc      string
	Children  map[string]*Node
	DynamicFn func(l *ltm.LTM) []string
}

// Candidate holds a command name and its description for display.
type Candidate struct {
	Name string
	Desc string
}

func nodeNames(l *ltm.LTM) []string {
	if l == nil {
		return nil
	}
	nodes := l.Nodes()
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func poolNames(l *ltm.LTM) []string {
	if l == nil {
		return nil
	}
	pools := l.Pools()
	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, p.Name)
	}
	return names
}

func virtualNames(l *ltm.LTM) []string {
	if l == nil {
		return nil
	}
	vss := l.VirtualServers()
	names := make([]string, 0, len(vss))
	for _, vs := range vss {
		names = append(names, vs.Name)
	}
	return names
}

func ruleNames(l *ltm.LTM) []string {
	if l == nil {
		return nil
	}
	rules := l.Rules()
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	return names
}

func sslProfileNames(l *ltm.LTM) []string {
	if l == nil {
		return nil
	}
	profs := l.SSLProfiles()
	names := make([]string, 0, len(profs))
	for _, p := range profs {
		names = append(names, p.Name)
	}
	return names
}

func monitorNames(l *ltm.LTM) []string {
	if l == nil {
		return nil
	}
	mons := l.Monitors()
	names := make([]string, 0, len(mons))
	for _, m := range mons {
		names = append(names, m.Name)
	}
	return names
}

// ShellTree defines tab completion for the interactive shell.
var ShellTree = map[string]*Node{
	"show": {Desc: "Show information", Children: map[string]*Node{
		"chains": {Desc: "Show resolved virtual-server chains"},
		"virtual-servers": {Desc: "Show virtual servers [name]",
			DynamicFn: virtualNames},
		"pools": {Desc: "Show pools [name]",
			DynamicFn: poolNames, Children: map[string]*Node{
				"members": {Desc: "Show resolved pool members"},
			}},
		"nodes": {Desc: "Show nodes [name]",
			DynamicFn: nodeNames},
		"rules": {Desc: "Show iRules [name]",
			DynamicFn: ruleNames},
		"ssl-profiles": {Desc: "Show client-ssl profiles [name]",
			DynamicFn: sslProfileNames},
		"monitors": {Desc: "Show health monitors [name]",
			DynamicFn: monitorNames},
		"config": {Desc: "Show the active configuration tree"},
	}},
	"reload": {Desc: "Reload the configuration dump"},
	"quit":   {Desc: "Exit shell"},
	"exit":   {Desc: "Exit shell"},
}

// --- Helper functions ---

// KeysFromTree returns a sorted list of keys from a Node map.
func KeysFromTree(tree map[string]*Node) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HelpCandidates returns Candidates from a tree's children for help display.
func HelpCandidates(tree map[string]*Node) []Candidate {
	candidates := make([]Candidate, 0, len(tree))
	for name, node := range tree {
		candidates = append(candidates, Candidate{Name: name, Desc: node.Desc})
	}
	return candidates
}

// CompleteFromTree walks the tree to find completion candidates for the
// given words and partial.
func CompleteFromTree(tree map[string]*Node, words []string, partial string, l *ltm.LTM) []string {
	current := tree
	var currentNode *Node
	dynamicConsumed := false
	for _, w := range words {
		dynamicConsumed = false
		node, ok := current[w]
		if !ok {
			// Word not in static children — if parent has DynamicFn,
			// treat as a dynamic value and stay at same children level.
			if currentNode != nil && currentNode.DynamicFn != nil {
				dynamicConsumed = true
				continue
			}
			return nil
		}
		currentNode = node
		if node.Children == nil {
			if node.DynamicFn != nil && l != nil {
				return FilterPrefix(node.DynamicFn(l), partial)
			}
			return nil
		}
		current = node.Children
	}
	candidates := KeysOf(current)
	if !dynamicConsumed && currentNode != nil && currentNode.DynamicFn != nil && l != nil {
		candidates = append(candidates, currentNode.DynamicFn(l)...)
	}
	return FilterPrefix(candidates, partial)
}

// CompleteFromTreeWithDesc walks the tree returning name+description pairs.
func CompleteFromTreeWithDesc(tree map[string]*Node, words []string, partial string, l *ltm.LTM) []Candidate {
	current := tree
	var currentNode *Node
	dynamicConsumed := false
	for _, w := range words {
		dynamicConsumed = false
		node, ok := current[w]
		if !ok {
			// Word not in static children — if parent has DynamicFn,
			// treat as a dynamic value and stay at same children level.
			if currentNode != nil && currentNode.DynamicFn != nil {
				dynamicConsumed = true
				continue
			}
			return nil
		}
		currentNode = node
		if node.Children == nil {
			if node.DynamicFn != nil && l != nil {
				var candidates []Candidate
				for _, name := range node.DynamicFn(l) {
					if strings.HasPrefix(name, partial) {
						candidates = append(candidates, Candidate{Name: name, Desc: "(configured)"})
					}
				}
				return candidates
			}
			return nil
		}
		current = node.Children
	}

	var candidates []Candidate
	for name, node := range current {
		if strings.HasPrefix(name, partial) {
			candidates = append(candidates, Candidate{Name: name, Desc: node.Desc})
		}
	}
	if !dynamicConsumed && currentNode != nil && currentNode.DynamicFn != nil && l != nil {
		for _, name := range currentNode.DynamicFn(l) {
			if strings.HasPrefix(name, partial) {
				candidates = append(candidates, Candidate{Name: name, Desc: "(configured)"})
			}
		}
	}
	return candidates
}

// WriteHelp prints aligned completion candidates to w.
// The entire output is built as a single string and written in one call
// so that readline's wrapWriter triggers only one Refresh cycle.
func WriteHelp(w io.Writer, candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	maxWidth := 20
	for _, c := range candidates {
		if len(c.Name)+2 > maxWidth {
			maxWidth = len(c.Name) + 2
		}
	}
	var sb strings.Builder
	sb.WriteString("Possible completions:\n")
	for _, c := range candidates {
		if c.Desc != "" {
			fmt.Fprintf(&sb, "  %-*s %s\n", maxWidth, c.Name, c.Desc)
		} else {
			fmt.Fprintf(&sb, "  %s\n", c.Name)
		}
	}
	io.WriteString(w, sb.String())
}

// CommonPrefix returns the longest shared prefix among the given strings.
func CommonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// KeysOf returns an unsorted list of keys from a Node map.
func KeysOf(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// FilterPrefix returns only items that start with the given prefix.
func FilterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		return items
	}
	var result []string
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			result = append(result, item)
		}
	}
	return result
}
