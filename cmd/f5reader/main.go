// f5reader reads an F5 BigIP configuration dump and reconstructs the
// virtual-server delivery chains: VIP, pool, member nodes, SSL profile
// and iRules.
//
// By default it renders the chains as semicolon-separated CSV on stdout.
// It can also enrich the chains with firewall NAT mappings and DNS
// names, export the full topology to SQLite, or open an interactive
// shell over the parsed tree.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/veepee-oss/f5-reader/pkg/cli"
	"github.com/veepee-oss/f5-reader/pkg/config"
	"github.com/veepee-oss/f5-reader/pkg/enrich"
	"github.com/veepee-oss/f5-reader/pkg/export"
	"github.com/veepee-oss/f5-reader/pkg/ltm"
	"github.com/veepee-oss/f5-reader/pkg/render"
	"github.com/veepee-oss/f5-reader/pkg/store"
)

func main() {
	csvPath := flag.String("csv", "", "write CSV to file instead of stdout")
	fwFile := flag.String("fw", "", "firewall dump for public IP resolution")
	dnsJSON := flag.String("dns-json", "", "JSON file with IP to FQDN mappings")
	pdnsAPI := flag.String("pdns-api", "", "PowerDNS API base URL for FQDN lookups")
	pdnsKey := flag.String("pdns-key", "", "PowerDNS API key")
	pdnsInsecure := flag.Bool("pdns-insecure", false, "skip TLS verification for the PowerDNS API")
	exportDB := flag.String("export", "", "export topology to a SQLite database file")
	shell := flag.Bool("shell", false, "open an interactive shell instead of rendering CSV")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <bigip.conf>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	dumpFile := flag.Arg(0)

	if err := run(dumpFile, *csvPath, *fwFile, *dnsJSON, *pdnsAPI, *pdnsKey, *pdnsInsecure, *exportDB, *shell); err != nil {
		fmt.Fprintf(os.Stderr, "f5reader: %v\n", err)
		os.Exit(1)
	}
}

func run(dumpFile, csvPath, fwFile, dnsJSON, pdnsAPI, pdnsKey string, pdnsInsecure bool, exportDB string, shell bool) error {
	if shell {
		st := store.New(dumpFile)
		if err := st.Load(); err != nil {
			return err
		}
		return cli.New(st).Run()
	}

	tree, err := config.ParseFile(dumpFile)
	if err != nil {
		return err
	}
	l := ltm.New(tree)

	chains, err := l.Chains()
	if err != nil {
		return err
	}
	slog.Debug("chains resolved", "count", len(chains))

	if fwFile != "" {
		if err := enrich.PublicIPs(fwFile, chains); err != nil {
			return fmt.Errorf("firewall enrichment: %w", err)
		}
	}
	if r := resolver(dnsJSON, pdnsAPI, pdnsKey, pdnsInsecure); r != nil {
		enrich.FQDNs(r, chains)
	}

	if exportDB != "" {
		if err := export.SQLite(context.Background(), exportDB, l, chains); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		slog.Info("topology exported", "path", exportDB)
	}

	out := os.Stdout
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return render.CSV(out, chains)
}

func resolver(dnsJSON, pdnsAPI, pdnsKey string, pdnsInsecure bool) enrich.Resolver {
	if dnsJSON != "" {
		return &enrich.FileResolver{Path: dnsJSON}
	}
	if pdnsAPI != "" {
		return &enrich.PowerDNSResolver{
			BaseURL:  pdnsAPI,
			APIKey:   pdnsKey,
			Insecure: pdnsInsecure,
		}
	}
	return nil
}
