package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/multisig"
	"github.com/iov-one/mvault/mvtest"
	"github.com/iov-one/mvault/mvtest/assert"
	"github.com/iov-one/mvault/store"
)

func testVault(t *testing.T) (*multisig.Vault, map[string]mvault.Address) {
	t.Helper()

	names := map[string]mvault.Address{
		"alice": mvtest.SequenceAddress(1),
		"bob":   mvtest.SequenceAddress(2),
		"carol": mvtest.SequenceAddress(3),
		"dave":  mvtest.SequenceAddress(100),
	}
	registry, err := multisig.NewRegistry([]mvault.Address{
		names["alice"], names["bob"], names["carol"],
	}, 2)
	assert.Nil(t, err)

	vault, err := multisig.NewVault(store.MemStore(), registry, mvtest.SequenceAddress(200))
	assert.Nil(t, err)
	return vault, names
}

func TestScriptFlow(t *testing.T) {
	vault, names := testVault(t)

	script := `
# fund the vault, then pay dave out of it
deposit alice 1000 IOV
submit alice dave 100 IOV
confirm 0 alice
confirm 0 bob
balance
count
`
	var out bytes.Buffer
	err := run(vault, names, strings.NewReader(script), &out)
	assert.Nil(t, err)

	want := []string{
		"action 0 submitted",
		"action 0 has 1 confirmations",
		"action 0 has 2 confirmations",
		"vault holds 900 IOV",
		"1 actions",
	}
	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, want, got)
}

func TestScriptReportsErrorsAndContinues(t *testing.T) {
	vault, names := testVault(t)

	script := `
deposit alice 1000 IOV
submit mallory dave 100 IOV
count
`
	var out bytes.Buffer
	err := run(vault, names, strings.NewReader(script), &out)
	assert.Nil(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, 2, len(lines))
	if !strings.HasPrefix(lines[0], "error:") {
		t.Fatalf("want an error line, got %q", lines[0])
	}
	assert.Equal(t, "0 actions", lines[1])
}

func TestConfirmationsCommandUsesNames(t *testing.T) {
	vault, names := testVault(t)

	script := `
deposit alice 10 IOV
submit alice dave 100 IOV
confirm 0 carol
confirmations 0
`
	var out bytes.Buffer
	err := run(vault, names, strings.NewReader(script), &out)
	assert.Nil(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "carol", lines[len(lines)-1])
}
