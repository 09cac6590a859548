package cli

import (
	"strings"

	"github.com/veepee-oss/f5-reader/pkg/cmdtree"
	"github.com/veepee-oss/f5-reader/pkg/store"
)

// completer implements readline.AutoCompleter over the shell command tree.
// Dynamic candidates (pool names, node names, ...) come from the active
// configuration at completion time.
type completer struct {
	store *store.Store
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	words := strings.Fields(text)
	partial := ""
	if len(words) > 0 && !strings.HasSuffix(text, " ") {
		partial = words[len(words)-1]
		words = words[:len(words)-1]
	}

	candidates := cmdtree.CompleteFromTree(cmdtree.ShellTree, words, partial, c.store.LTM())
	if len(candidates) == 0 {
		return nil, 0
	}

	out := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, []rune(cand[len(partial):]+" "))
	}
	return out, len(partial)
}
