package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	registry *approval.Registry
	session  *session.Service
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  pending - list the accounts waiting for an approval")
	fmt.Fprintln(cli.out, "  approved - list the approved accounts")
	fmt.Fprintln(cli.out, "  approve -email EMAIL - approve a pending account")
	fmt.Fprintln(cli.out, "  reject -email EMAIL - reject a pending account")
	fmt.Fprintln(cli.out, "  login -email EMAIL - sign this device in as the admin")
	fmt.Fprintln(cli.out, "  logout - sign this device out")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a password (ADMINPASSWORDHASH)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	approveCmd := flag.NewFlagSet("approve", flag.ExitOnError)
	approveEmail := approveCmd.String("email", "", "The email of the pending account.")

	rejectCmd := flag.NewFlagSet("reject", flag.ExitOnError)
	rejectEmail := rejectCmd.String("email", "", "The email of the pending account.")

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "The admin email. The password will be prompted next.")

	switch args[1] {
	case "pending":
		return cli.listPending(ctx)
	case "approved":
		return cli.listApproved(ctx)
	case "approve":
		if err := approveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveEmail == "" {
			approveCmd.Usage()
			return errHelp
		}
		return cli.decide(ctx, *approveEmail, approval.Approved)
	case "reject":
		if err := rejectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rejectEmail == "" {
			rejectCmd.Usage()
			return errHelp
		}
		return cli.decide(ctx, *rejectEmail, approval.Rejected)
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, pwd)
	case "logout":
		return cli.session.Signout(ctx)
	case "hashpassword":
		pwd, err := cli.readPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			return errHelp
		}
		return cli.hashPassword(pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) listPending(ctx context.Context) error {
	pending := cli.registry.ListPending(ctx)
	if len(pending) == 0 {
		fmt.Fprintln(cli.out, "no pending approvals")
		return nil
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tROLE\tREQUESTED")
	for _, rec := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.Email, rec.Role, core.DateOf(rec.RequestedAt))
	}
	return w.Flush()
}

func (cli *commandLine) listApproved(ctx context.Context) error {
	for _, email := range cli.registry.ListApproved(ctx) {
		fmt.Fprintln(cli.out, email)
	}
	return nil
}

func (cli *commandLine) decide(ctx context.Context, email string, decision approval.Decision) error {
	if _, ok := cli.registry.Pending(ctx, email); !ok && decision == approval.Rejected {
		return fmt.Errorf("%s: no pending approval", email)
	}

	var err error
	if decision == approval.Approved {
		err = cli.registry.Approve(ctx, email)
	} else {
		err = cli.registry.Reject(ctx, email)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s\n", core.CleanString(email, true /* lower */), decision)
	return nil
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	claims, err := cli.session.AdminLogin(ctx, email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "signed in as %s\n", claims.Email)
	return nil
}

func (cli *commandLine) hashPassword(pwd string) error {
	hash, err := session.HashPassword(pwd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(hash))
	return nil
}
