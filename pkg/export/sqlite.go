// Package export writes the reconstructed topology to a SQLite file for
// ad-hoc querying and diffing between configuration dumps.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	name        TEXT PRIMARY KEY,
	partition   TEXT,
	address     TEXT,
	route_domain TEXT,
	description TEXT,
	state       TEXT
);
CREATE TABLE IF NOT EXISTS pools (
	name                TEXT PRIMARY KEY,
	monitor             TEXT,
	load_balancing_mode TEXT,
	description         TEXT
);
CREATE TABLE IF NOT EXISTS pool_members (
	pool        TEXT,
	token       TEXT,
	node        TEXT,
	address     TEXT,
	port        TEXT,
	description TEXT,
	state       TEXT,
	PRIMARY KEY (pool, token)
);
CREATE TABLE IF NOT EXISTS virtual_servers (
	name        TEXT PRIMARY KEY,
	partition   TEXT,
	destination TEXT,
	pool        TEXT,
	ip_protocol TEXT,
	description TEXT
);
CREATE TABLE IF NOT EXISTS vserver_rules (
	vserver  TEXT,
	position INTEGER,
	rule     TEXT,
	PRIMARY KEY (vserver, position)
);
CREATE TABLE IF NOT EXISTS chains (
	name        TEXT PRIMARY KEY,
	partition   TEXT,
	vip         TEXT,
	port        TEXT,
	pool        TEXT,
	ssl_profile TEXT,
	certificate TEXT,
	public_ip   TEXT,
	fqdns       TEXT
);
`

// SQLite writes the full topology into the SQLite database at path,
// creating it when missing. All writes happen in one transaction. Pass
// chains to persist enriched records; nil builds them from l.
func SQLite(ctx context.Context, path string, l *ltm.LTM, chains []*ltm.Chain) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if chains == nil {
		chains, err = l.Chains()
		if err != nil {
			return err
		}
	}
	if err := fill(ctx, tx, l, chains); err != nil {
		return err
	}
	return tx.Commit()
}

func fill(ctx context.Context, tx *sql.Tx, l *ltm.LTM, chains []*ltm.Chain) error {
	for _, n := range l.Nodes() {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO nodes VALUES (?, ?, ?, ?, ?, ?)`,
			n.Name, n.Partition, n.Address, n.RouteDomain, n.Description, n.State)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.Name, err)
		}
	}

	for _, p := range l.Pools() {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO pools VALUES (?, ?, ?, ?)`,
			p.Name, p.Monitor, p.LoadBalancingMode, p.Description)
		if err != nil {
			return fmt.Errorf("insert pool %s: %w", p.Name, err)
		}
		members, err := l.PoolMembers(p.Name)
		if err != nil {
			return err
		}
		for _, m := range members {
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO pool_members VALUES (?, ?, ?, ?, ?, ?, ?)`,
				p.Name, m.Token, m.Name, m.Address, m.Port, m.Description, m.State)
			if err != nil {
				return fmt.Errorf("insert member %s of %s: %w", m.Token, p.Name, err)
			}
		}
	}

	for _, vs := range l.VirtualServers() {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO virtual_servers VALUES (?, ?, ?, ?, ?, ?)`,
			vs.Name, vs.Partition, vs.Destination, vs.PoolName, vs.IPProtocol, vs.Description)
		if err != nil {
			return fmt.Errorf("insert virtual server %s: %w", vs.Name, err)
		}
		for i, rule := range vs.RuleNames {
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO vserver_rules VALUES (?, ?, ?)`,
				vs.Name, i, rule)
			if err != nil {
				return fmt.Errorf("insert rule %s of %s: %w", rule, vs.Name, err)
			}
		}
	}

	for _, c := range chains {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO chains VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Name, c.Partition, c.VIP, c.Port, c.PoolName, c.SSLProfile,
			c.Certificate, c.PublicIP, strings.Join(c.FQDNs, ","))
		if err != nil {
			return fmt.Errorf("insert chain %s: %w", c.Name, err)
		}
	}

	return nil
}
