// Package cli implements the interactive shell over a loaded
// configuration dump.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/veepee-oss/f5-reader/pkg/cmdtree"
	"github.com/veepee-oss/f5-reader/pkg/ltm"
	"github.com/veepee-oss/f5-reader/pkg/store"
)

// Shell is the interactive command-line interface.
type Shell struct {
	rl       *readline.Instance
	store    *store.Store
	hostname string
	username string
}

// New creates a new shell over the given store.
func New(st *store.Store) *Shell {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "f5reader"
	}
	username := os.Getenv("USER")
	if username == "" {
		username = "root"
	}

	return &Shell{
		store:    st,
		hostname: hostname,
		username: username,
	}
}

// Run starts the interactive loop.
func (s *Shell) Run() error {
	var err error
	s.rl, err = readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     "/tmp/f5reader_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &completer{store: s.store},
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer s.rl.Close()

	fmt.Println("f5reader - BigIP configuration dump browser")
	fmt.Println("Type '?' for help")
	fmt.Println()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.dispatch(line); err != nil {
			if err == errExit {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

var errExit = fmt.Errorf("exit")

func (s *Shell) dispatch(line string) error {
	if strings.HasSuffix(line, "?") {
		s.showHelp(strings.Fields(strings.TrimSuffix(line, "?")))
		return nil
	}

	parts := strings.Fields(line)
	switch parts[0] {
	case "show":
		return s.handleShow(parts[1:])

	case "reload":
		if err := s.store.Load(); err != nil {
			return err
		}
		fmt.Printf("configuration reloaded (generation %d)\n", s.store.Generation())
		return nil

	case "quit", "exit":
		return errExit

	case "help":
		s.showHelp(nil)
		return nil

	default:
		return fmt.Errorf("unknown command: %s", parts[0])
	}
}

func (s *Shell) showHelp(words []string) {
	candidates := cmdtree.CompleteFromTreeWithDesc(cmdtree.ShellTree, words, "", s.store.LTM())
	if len(candidates) == 0 {
		fmt.Println("no completions")
		return
	}
	cmdtree.WriteHelp(os.Stdout, candidates)
}

// view returns the active query layer or an error before the first load.
func (s *Shell) view() (*ltm.LTM, error) {
	l := s.store.LTM()
	if l == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	return l, nil
}

func (s *Shell) handleShow(args []string) error {
	if len(args) == 0 {
		s.showHelp([]string{"show"})
		return nil
	}

	l, err := s.view()
	if err != nil {
		return err
	}

	switch args[0] {
	case "chains":
		return s.showChains(l)
	case "virtual-servers":
		return s.showVirtualServers(l, args[1:])
	case "pools":
		return s.showPools(l, args[1:])
	case "nodes":
		return s.showNodes(l, args[1:])
	case "rules":
		return s.showRules(l, args[1:])
	case "ssl-profiles":
		return s.showSSLProfiles(l, args[1:])
	case "monitors":
		return s.showMonitors(l, args[1:])
	case "config":
		fmt.Print(l.Tree().Format())
		return nil
	default:
		return fmt.Errorf("unknown show target: %s", args[0])
	}
}

func (s *Shell) showChains(l *ltm.LTM) error {
	chains, err := l.Chains()
	if err != nil {
		return err
	}
	for _, c := range chains {
		fmt.Printf("Virtual server: %s", c.Name)
		if c.Partition != "" {
			fmt.Printf(" (partition %s)", c.Partition)
		}
		fmt.Println()
		fmt.Printf("  VIP: %s", c.VIP)
		if c.Port != "" {
			fmt.Printf(":%s", c.Port)
		}
		fmt.Println()
		if c.PoolName != "" {
			fmt.Printf("  Pool: %s\n", c.PoolName)
		}
		for _, m := range c.Nodes {
			fmt.Printf("    %s:%s", m.Address, m.Port)
			if m.Description != "" {
				fmt.Printf("  %s", m.Description)
			}
			fmt.Println()
		}
		if c.SSLProfile != "" {
			fmt.Printf("  SSL profile: %s (cert %s)\n", c.SSLProfile, c.Certificate)
		}
		if len(c.Rules) > 0 {
			fmt.Printf("  Rules: %d\n", len(c.Rules))
		}
		if c.PublicIP != "" {
			fmt.Printf("  Public IP: %s\n", c.PublicIP)
		}
		if len(c.FQDNs) > 0 {
			fmt.Printf("  FQDNs: %s\n", strings.Join(c.FQDNs, ", "))
		}
		fmt.Println()
	}
	return nil
}

func (s *Shell) showVirtualServers(l *ltm.LTM, args []string) error {
	if len(args) > 0 {
		vs := l.VirtualServer(args[0])
		if vs == nil {
			return fmt.Errorf("virtual server not found: %s", args[0])
		}
		fmt.Printf("Name:        %s\n", vs.Name)
		fmt.Printf("Destination: %s\n", vs.Destination)
		if vs.PoolName != "" {
			fmt.Printf("Pool:        %s\n", vs.PoolName)
		}
		if len(vs.RuleNames) > 0 {
			fmt.Printf("Rules:       %s\n", strings.Join(vs.RuleNames, ", "))
		}
		if len(vs.ProfileNames) > 0 {
			fmt.Printf("Profiles:    %s\n", strings.Join(vs.ProfileNames, ", "))
		}
		if vs.Description != "" {
			fmt.Printf("Description: %s\n", vs.Description)
		}
		return nil
	}

	for _, vs := range l.VirtualServers() {
		fmt.Printf("%-40s %-24s %s\n", vs.Name, vs.Destination, vs.PoolName)
	}
	return nil
}

func (s *Shell) showPools(l *ltm.LTM, args []string) error {
	if len(args) > 0 {
		name := args[0]
		p := l.Pool(name)
		if p == nil {
			return fmt.Errorf("pool not found: %s", name)
		}
		if len(args) > 1 && args[1] == "members" {
			members, err := l.PoolMembers(name)
			if err != nil {
				return err
			}
			for _, m := range members {
				fmt.Printf("%-40s %-18s %-6s %s\n", m.Name, m.Address, m.Port, m.Description)
			}
			return nil
		}
		fmt.Printf("Name:    %s\n", p.Name)
		if p.Monitor != "" {
			fmt.Printf("Monitor: %s\n", p.Monitor)
		}
		if p.LoadBalancingMode != "" {
			fmt.Printf("LB mode: %s\n", p.LoadBalancingMode)
		}
		for _, tok := range p.MemberTokens {
			fmt.Printf("  %s\n", tok)
		}
		return nil
	}

	for _, p := range l.Pools() {
		fmt.Printf("%-40s %3d members  %s\n", p.Name, len(p.MemberTokens), p.Monitor)
	}
	return nil
}

func (s *Shell) showNodes(l *ltm.LTM, args []string) error {
	if len(args) > 0 {
		n := l.Node(args[0])
		if n == nil {
			return fmt.Errorf("node not found: %s", args[0])
		}
		fmt.Printf("Name:        %s\n", n.Name)
		fmt.Printf("Address:     %s\n", n.Address)
		if n.RouteDomain != "" {
			fmt.Printf("Route domain: %s\n", n.RouteDomain)
		}
		if n.Description != "" {
			fmt.Printf("Description: %s\n", n.Description)
		}
		pools, err := l.PoolsForNode(args[0])
		if err != nil {
			return err
		}
		for _, p := range pools {
			fmt.Printf("  member of %s\n", p.Name)
		}
		return nil
	}

	for _, n := range l.Nodes() {
		fmt.Printf("%-40s %-18s %s\n", n.Name, n.Address, n.Description)
	}
	return nil
}

func (s *Shell) showRules(l *ltm.LTM, args []string) error {
	if len(args) > 0 {
		r := l.Rule(args[0])
		if r == nil {
			return fmt.Errorf("rule not found: %s", args[0])
		}
		fmt.Println(r.Body)
		return nil
	}

	for _, r := range l.Rules() {
		fmt.Printf("%-40s %4d lines\n", r.Name, strings.Count(r.Body, "\n")+1)
	}
	return nil
}

func (s *Shell) showSSLProfiles(l *ltm.LTM, args []string) error {
	if len(args) > 0 {
		p := l.SSLProfile(args[0])
		if p == nil {
			return fmt.Errorf("ssl profile not found: %s", args[0])
		}
		fmt.Printf("Name:  %s\n", p.Name)
		fmt.Printf("Cert:  %s\n", p.Cert)
		fmt.Printf("Key:   %s\n", p.Key)
		if p.Chain != "" {
			fmt.Printf("Chain: %s\n", p.Chain)
		}
		if p.DefaultsFrom != "" {
			fmt.Printf("Defaults from: %s\n", p.DefaultsFrom)
		}
		return nil
	}

	for _, p := range l.SSLProfiles() {
		fmt.Printf("%-40s %s\n", p.Name, p.Cert)
	}
	return nil
}

func (s *Shell) showMonitors(l *ltm.LTM, args []string) error {
	if len(args) > 0 {
		m := l.Monitor(args[0])
		if m == nil {
			return fmt.Errorf("monitor not found: %s", args[0])
		}
		fmt.Printf("Name: %s\n", m.Name)
		fmt.Printf("Type: %s\n", m.Type)
		if m.DefaultsFrom != "" {
			fmt.Printf("Defaults from: %s\n", m.DefaultsFrom)
		}
		return nil
	}

	for _, m := range l.Monitors() {
		fmt.Printf("%-40s %s\n", m.Name, m.Type)
	}
	return nil
}

func (s *Shell) prompt() string {
	return fmt.Sprintf("%s@%s> ", s.username, s.hostname)
}
