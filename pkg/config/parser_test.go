package config

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSingleBlock(t *testing.T) {
	tree, err := ParseString("k {\n    a b\n}\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v := tree.Path("k", "a")
	if v == nil {
		t.Fatal("k.a not found")
	}
	if s, ok := v.Scalar(); !ok || s != "b" {
		t.Errorf("k.a = %q, %v; want \"b\", true", s, ok)
	}
}

func TestParseNesting(t *testing.T) {
	const depth = 12
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString(strings.Repeat(" ", i))
		b.WriteString("level {\n")
	}
	b.WriteString("leaf 1\n")
	for i := depth - 1; i >= 0; i-- {
		b.WriteString(strings.Repeat(" ", i))
		b.WriteString("}\n")
	}

	tree, err := ParseString(b.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cur := tree.Root()
	for i := 0; i < depth; i++ {
		cur = cur.Get("level")
		if cur == nil {
			t.Fatalf("missing mapping at depth %d", i+1)
		}
		if cur.Kind() != Mapping {
			t.Fatalf("depth %d: kind = %v, want mapping", i+1, cur.Kind())
		}
	}
	if cur.Get("leaf").Text() != "1" {
		t.Errorf("leaf = %q, want \"1\"", cur.Get("leaf").Text())
	}
}

func TestParsePathTokens(t *testing.T) {
	input := `ltm node /Common/web1 {
    address 10.0.0.1
}
ltm node /Common/web2 {
    address 10.0.0.2
}
`
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	nodes := tree.Path("ltm", "node")
	if nodes == nil {
		t.Fatal("ltm.node not found")
	}
	keys := nodes.Keys()
	if len(keys) != 2 || keys[0] != "/Common/web1" || keys[1] != "/Common/web2" {
		t.Errorf("node keys = %v", keys)
	}
	if got := nodes.Path("/Common/web2", "address").Text(); got != "10.0.0.2" {
		t.Errorf("web2 address = %q", got)
	}
}

func TestParseEmptyBlock(t *testing.T) {
	tree, err := ParseString("ltm pool /Common/p {\n    members { }\n}\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	members := tree.Path("ltm", "pool", "/Common/p", "members")
	if members == nil {
		t.Fatal("members not found")
	}
	if members.Kind() != Mapping || members.Len() != 0 {
		t.Errorf("members kind=%v len=%d, want empty mapping", members.Kind(), members.Len())
	}
}

func TestParseKeyWithoutValue(t *testing.T) {
	tree, err := ParseString("blk {\n    enabled\n    mode standard\n}\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v := tree.Path("blk", "enabled")
	if v == nil {
		t.Fatal("enabled not found")
	}
	if _, ok := v.Scalar(); ok {
		t.Error("enabled should have no value token")
	}
}

func TestParseAnonymousList(t *testing.T) {
	input := `sys crypto cert /Common/default.crt {
    cert-validators {
        {
            issuer ca-one
        }
        {
            issuer ca-two
        }
    }
}
`
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v := tree.Path("sys", "crypto", "cert", "/Common/default.crt", "cert-validators")
	if v == nil {
		t.Fatal("cert-validators not found")
	}
	if v.Kind() != Sequence {
		t.Fatalf("kind = %v, want sequence", v.Kind())
	}
	items := v.Seq()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if got := items[1].Get("issuer").Text(); got != "ca-two" {
		t.Errorf("second issuer = %q", got)
	}
}

func TestParseMultilineQuoted(t *testing.T) {
	input := "sys global-settings {\n" +
		"    remote-users-banner \"first line\n" +
		"with an escaped \\\" quote\n" +
		"last line\"\n" +
		"    hostname lb1\n" +
		"}\n"
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "\"first line\nwith an escaped \\\" quote\nlast line\""
	if got := tree.Path("sys", "global-settings", "remote-users-banner").Text(); got != want {
		t.Errorf("banner = %q, want %q", got, want)
	}
	if got := tree.Path("sys", "global-settings", "hostname").Text(); got != "lb1" {
		t.Errorf("hostname = %q, parser lost sync after quoted field", got)
	}
}

func TestParseSingleLineQuoted(t *testing.T) {
	tree, err := ParseString("blk {\n    description \"a b c\"\n}\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := tree.Path("blk", "description").Text(); got != "\"a b c\"" {
		t.Errorf("description = %q", got)
	}
}

func TestParseRuleVerbatim(t *testing.T) {
	input := `ltm rule /Common/redirect {
when HTTP_REQUEST {
    if { [HTTP::host] eq "example.com" } {
        HTTP::redirect "https://example.org"
    }
}
}
ltm node /Common/n1 {
    address 10.0.0.1
}
`
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rule := tree.Path("ltm", "rule", "/Common/redirect")
	if rule == nil {
		t.Fatal("rule not found")
	}
	if rule.Kind() != Raw {
		t.Fatalf("kind = %v, want raw", rule.Kind())
	}
	body := rule.Raw()
	if !strings.Contains(body, `if { [HTTP::host] eq "example.com" } {`) {
		t.Errorf("rule body not captured verbatim:\n%s", body)
	}
	if strings.Contains(body, "address") {
		t.Error("rule capture ran past its closing brace")
	}
	// The node after the rule must still parse.
	if got := tree.Path("ltm", "node", "/Common/n1", "address").Text(); got != "10.0.0.1" {
		t.Errorf("node after rule = %q", got)
	}
}

func TestParseDuplicatePlaceholderDropped(t *testing.T) {
	input := `ltm pool /Common/p {
    members {
        /Common/web1:80 {
            address 10.0.0.1
        }
    }
}
ltm pool /Common/p {
    members none
}
`
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	members := tree.Path("ltm", "pool", "/Common/p", "members")
	if members.Kind() != Mapping {
		t.Fatalf("members kind = %v, want mapping (first definition kept)", members.Kind())
	}
	if members.Get("/Common/web1:80") == nil {
		t.Error("first definition's member lost")
	}
}

func TestParseDuplicateRealRedefinitionWins(t *testing.T) {
	input := `blk a {
    x 1
}
blk a {
    x 2
}
`
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := tree.Path("blk", "a", "x").Text(); got != "2" {
		t.Errorf("x = %q, want \"2\"", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unterminated block", "ltm node /Common/n {\n    address 10.0.0.1\n", ErrUnterminatedBlock},
		{"unterminated field", "blk {\n    description \"never closed\n", ErrUnterminatedField},
		{"unterminated rule", "ltm rule /Common/r {\nwhen HTTP_REQUEST {\n", ErrUnterminatedRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Errorf("err = %T, want *SyntaxError", err)
			}
		})
	}
}

func TestParseStrayCloseBrace(t *testing.T) {
	_, err := ParseString("}\n")
	if err == nil {
		t.Fatal("expected error for stray '}'")
	}
}

func TestDecodeFallback(t *testing.T) {
	// 0xe9 is é in ISO 8859-1 and invalid UTF-8 on its own.
	text, err := Decode([]byte("description caf\xe9\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(text, "café") {
		t.Errorf("text = %q, want ISO 8859-1 fallback", text)
	}

	text, err = Decode([]byte("plain utf-8 café\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(text, "café") {
		t.Errorf("text = %q", text)
	}
}

func TestFormatRoundTrips(t *testing.T) {
	input := `ltm node /Common/n1 {
    address 10.0.0.1
}
`
	tree, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out := tree.Format()
	again, err := ParseString(out)
	if err != nil {
		t.Fatalf("reparse formatted output: %v\n%s", err, out)
	}
	if got := again.Path("ltm", "node", "/Common/n1", "address").Text(); got != "10.0.0.1" {
		t.Errorf("address after round trip = %q", got)
	}
}
