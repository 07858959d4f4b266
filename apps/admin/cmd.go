package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/darasa/apps/shared"
	"github.com/trezcool/darasa/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateFunc      = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sql.DB
	engine string
	svcs   *shared.Services
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]                     - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL [-admin]      - create a user; the password is prompted next")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                    - reset a user's password; the password is prompted next")
	fmt.Fprintln(cli.out, "  importcourse -file COURSE.yaml                - create a course from a YAML document")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(cli.out)
	return fset
}

// parse parses args into fset; help requests and parse errors both print the usage.
func parse(fset *flag.FlagSet, args []string) error {
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) promptPassword(fset *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		fset.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		cmd := cli.newFlagSet("adduser")
		name := cmd.String("name", "", "The user's full name.")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		isAdmin := cmd.Bool("admin", false, "Grant the admin role.")
		if err := parse(cmd, args[2:]); err != nil {
			return err
		}
		if *name == "" || *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(cmd)
		if err != nil {
			return err
		}
		return cli.addUser(*name, *email, pwd, *isAdmin)

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := parse(cmd, args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(cmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*email, pwd)

	case "importcourse":
		cmd := cli.newFlagSet("importcourse")
		file := cmd.String("file", "", "Path of the YAML course document.")
		if err := parse(cmd, args[2:]); err != nil {
			return err
		}
		if *file == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.importCourse(*file)

	default:
		cli.printUsage()
		return errHelp
	}
}
