package main

import (
	"context"
	"fmt"

	"github.com/trezcool/campuscopilot/core/user"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flagSet("login")
	email := fs.String("email", "", "The account email. The password will be prompted next.")
	role := fs.String("role", user.RoleStudent, "The account role: student or admin.")
	demo := fs.String("demo", "", "Sign in with the demo account of this role.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var creds user.Credentials
	if *demo != "" {
		c, ok := cli.session.DemoCredentials()[*demo]
		if !ok {
			fs.Usage()
			return errHelp
		}
		creds = c
	} else {
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			fs.Usage()
			return errHelp
		}
		creds = user.Credentials{Email: *email, Password: pwd, Role: *role}
	}

	usr, err := cli.session.Login(ctx, creds)
	if err != nil {
		return err
	}
	if usr == nil {
		return errLoginRefused
	}
	fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", usr.Name, usr.Role)
	return nil
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	fs := cli.flagSet("register")
	name := fs.String("name", "", "Full name.")
	email := fs.String("email", "", "Email. The password will be prompted next.")
	college := fs.String("college", "", "College or university.")
	year := fs.Int("year", 1, "Year of study.")
	role := fs.String("role", user.RoleStudent, "Account role: student or admin.")
	department := fs.String("department", "", "Department.")
	studentID := fs.String("studentid", "", "Student ID.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	confirm, err := cli.promptPassword("Confirm password:")
	if err != nil {
		return err
	}

	id, err := cli.session.Register(ctx, user.NewUser{
		Name:            *name,
		Email:           *email,
		Password:        pwd,
		PasswordConfirm: confirm,
		College:         *college,
		Year:            *year,
		Role:            *role,
		Department:      *department,
		StudentID:       *studentID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Registered %s as %s (%s)\n", *email, id.Role, id.UID)
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	if err := cli.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	usr := cli.session.CurrentUser(ctx)
	if usr == nil {
		return errNotSignedIn
	}
	printUser(cli.out, *usr)
	return nil
}

func (cli *commandLine) profile(ctx context.Context, args []string) error {
	fs := cli.flagSet("profile")
	name := fs.String("name", "", "Full name.")
	college := fs.String("college", "", "College or university.")
	year := fs.Int("year", 0, "Year of study.")
	department := fs.String("department", "", "Department.")
	studentID := fs.String("studentid", "", "Student ID.")
	avatar := fs.String("avatar", "", "Avatar URL.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var uu user.UpdateUser
	set := setFlags(fs)
	if set["name"] {
		uu.Name = name
	}
	if set["college"] {
		uu.College = college
	}
	if set["year"] {
		uu.Year = year
	}
	if set["department"] {
		uu.Department = department
	}
	if set["studentid"] {
		uu.StudentID = studentID
	}
	if set["avatar"] {
		uu.Avatar = avatar
	}

	usr, err := cli.session.UpdateProfile(ctx, uu)
	if err != nil {
		return err
	}
	printUser(cli.out, usr)
	return nil
}
