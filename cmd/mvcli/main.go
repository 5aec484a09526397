// Command mvcli drives a multisig vault from a script. It is meant for
// demos and manual testing: the vault lives in memory only.
//
// The vault setup (owners, quorum, funding) is read from a TOML file. The
// script is a sequence of line commands read from a file or stdin:
//
//	deposit <principal> <amount>
//	submit <owner> <destination> <amount>
//	confirm <id> <owner>
//	execute <id> <owner>
//	balance
//	confirmations <id>
//	count
//
// Principals can be referenced by their configured name or by a raw hex
// address. Amounts use the human readable coin format, e.g. "100 IOV".
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/iov-one/mvault"
	"github.com/iov-one/mvault/coin"
	"github.com/iov-one/mvault/errors"
	"github.com/iov-one/mvault/multisig"
	"github.com/iov-one/mvault/store"
)

type ownerConf struct {
	Name    string `toml:"name"`
	Address string `toml:"address"`
}

type config struct {
	Quorum  int         `toml:"quorum"`
	Address string      `toml:"address"`
	Funding string      `toml:"funding"`
	Owners  []ownerConf `toml:"owner"`
}

func main() {
	confFl := flag.String("config", "vault.toml", "Path of the vault configuration file.")
	scriptFl := flag.String("script", "-", "Path of the command script, - for stdin.")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	var conf config
	if _, err := toml.DecodeFile(*confFl, &conf); err != nil {
		fail(errors.Wrap(err, "cannot load configuration"))
	}

	vault, names, err := buildVault(conf, logger)
	if err != nil {
		fail(err)
	}

	input := os.Stdin
	if *scriptFl != "-" {
		fl, err := os.Open(*scriptFl)
		if err != nil {
			fail(errors.Wrap(err, "cannot open script"))
		}
		defer fl.Close()
		input = fl
	}

	if err := run(vault, names, input, os.Stdout); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "mvcli: %s\n", err)
	os.Exit(1)
}

// buildVault constructs the vault from the configuration and returns it
// together with the name to address mapping for principal resolution.
func buildVault(conf config, logger *zap.Logger) (*multisig.Vault, map[string]mvault.Address, error) {
	names := make(map[string]mvault.Address, len(conf.Owners))
	owners := make([]mvault.Address, 0, len(conf.Owners))
	for _, o := range conf.Owners {
		addr, err := mvault.ParseAddress(o.Address)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "owner %q", o.Name)
		}
		names[o.Name] = addr
		owners = append(owners, addr)
	}

	registry, err := multisig.NewRegistry(owners, conf.Quorum)
	if err != nil {
		return nil, nil, err
	}

	addr, err := mvault.ParseAddress(conf.Address)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault address")
	}

	vault, err := multisig.NewVault(store.MemStore(), registry, addr,
		multisig.WithEmitter(multisig.NewLogEmitter(logger)))
	if err != nil {
		return nil, nil, err
	}

	if conf.Funding != "" {
		funding, err := coin.ParseHumanFormat(conf.Funding)
		if err != nil {
			return nil, nil, errors.Wrap(err, "funding")
		}
		if err := vault.Deposit(addr, funding); err != nil {
			return nil, nil, err
		}
	}
	return vault, names, nil
}

// run executes the script line by line. A failing command does not stop
// the script, its error is printed instead - failures like an insufficient
// approval count are part of normal vault operation.
func run(vault *multisig.Vault, names map[string]mvault.Address, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := command(vault, names, line, out); err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
	}
	return scanner.Err()
}

func command(vault *multisig.Vault, names map[string]mvault.Address, line string, out io.Writer) error {
	args := strings.Fields(line)
	switch cmd := args[0]; cmd {
	case "deposit":
		if len(args) != 4 {
			return errors.Wrap(errors.ErrInput, "usage: deposit <principal> <amount>")
		}
		sender, err := resolve(names, args[1])
		if err != nil {
			return err
		}
		amount, err := coin.ParseHumanFormat(strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		return vault.Deposit(sender, amount)

	case "submit":
		if len(args) != 5 {
			return errors.Wrap(errors.ErrInput, "usage: submit <owner> <destination> <amount>")
		}
		caller, err := resolve(names, args[1])
		if err != nil {
			return err
		}
		dest, err := resolve(names, args[2])
		if err != nil {
			return err
		}
		amount, err := coin.ParseHumanFormat(strings.Join(args[3:], " "))
		if err != nil {
			return err
		}
		id, err := vault.Submit(caller, dest, amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "action %d submitted\n", id)
		return nil

	case "confirm":
		id, caller, err := idAndPrincipal(names, args)
		if err != nil {
			return err
		}
		count, err := vault.Confirm(id, caller)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "action %d has %d confirmations\n", id, count)
		return nil

	case "execute":
		id, caller, err := idAndPrincipal(names, args)
		if err != nil {
			return err
		}
		if err := vault.Execute(id, caller); err != nil {
			return err
		}
		action, err := vault.Action(id)
		if err != nil {
			return err
		}
		if action.Executed {
			fmt.Fprintf(out, "action %d executed\n", id)
		} else {
			fmt.Fprintf(out, "action %d still pending, transfer failed\n", id)
		}
		return nil

	case "balance":
		balance, err := vault.Balance()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "vault holds %s\n", balance)
		return nil

	case "confirmations":
		if len(args) != 2 {
			return errors.Wrap(errors.ErrInput, "usage: confirmations <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrInput, "invalid action id")
		}
		approvers, err := vault.ConfirmationsOf(id)
		if err != nil {
			return err
		}
		for _, a := range approvers {
			fmt.Fprintf(out, "%s\n", principalName(names, a))
		}
		return nil

	case "count":
		fmt.Fprintf(out, "%d actions\n", vault.TransactionCount())
		return nil

	default:
		return errors.Wrapf(errors.ErrInput, "unknown command %q", cmd)
	}
}

func idAndPrincipal(names map[string]mvault.Address, args []string) (int64, mvault.Address, error) {
	if len(args) != 3 {
		return 0, nil, errors.Wrapf(errors.ErrInput, "usage: %s <id> <owner>", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, nil, errors.Wrap(errors.ErrInput, "invalid action id")
	}
	caller, err := resolve(names, args[2])
	if err != nil {
		return 0, nil, err
	}
	return id, caller, nil
}

// resolve maps a configured owner name or a hex string to an address.
func resolve(names map[string]mvault.Address, principal string) (mvault.Address, error) {
	if addr, ok := names[principal]; ok {
		return addr, nil
	}
	return mvault.ParseAddress(principal)
}

// principalName returns the configured name of an address if known, the
// hex representation otherwise.
func principalName(names map[string]mvault.Address, addr mvault.Address) string {
	for name, a := range names {
		if a.Equals(addr) {
			return name
		}
	}
	return addr.String()
}
