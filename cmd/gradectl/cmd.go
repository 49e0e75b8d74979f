package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/pkg/client"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api     *client.Client
	session *client.Session
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME            - sign in (password is prompted)")
	fmt.Fprintln(cli.out, "  logout                              - forget the stored token")
	fmt.Fprintln(cli.out, "  whoami                              - show the signed-in identity")
	fmt.Fprintln(cli.out, "  register -username USERNAME         - create an account and sign in")
	fmt.Fprintln(cli.out, "  grades [-own] [-student S] [-test T] - list grades")
	fmt.Fprintln(cli.out, "  grade-add -value V [-student ID]    - record a grade")
	fmt.Fprintln(cli.out, "  grade-rm -id ID                     - delete a grade")
	fmt.Fprintln(cli.out, "  tests [-name N]                     - list tests")
	fmt.Fprintln(cli.out, "  users [-q Q]                        - list users (admin)")
	fmt.Fprintln(cli.out, "  roles -username U [-set R1,R2]      - show or replace roles (admin)")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// pageFlags holds -page, -size, -sort and -desc
type pageFlags struct {
	page int
	size int
	sort string
	desc bool
}

func (p *pageFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&p.page, "page", 0, "page number (0-based)")
	fs.IntVar(&p.size, "size", 20, "page size")
	fs.StringVar(&p.sort, "sort", "", "sort field")
	fs.BoolVar(&p.desc, "desc", false, "sort descending")
}

func (p *pageFlags) options() client.PageOptions {
	var state client.SortState
	if p.sort != "" {
		state.Toggle(p.sort)
		if p.desc {
			state.Toggle(p.sort)
		}
	}
	state.Page = p.page
	return client.PageOptions{Size: p.size}.WithSort(state)
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "logout":
		if err := cli.api.Logout(cli.session); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Signed out")
		return nil
	case "whoami":
		return cli.whoami()
	case "register":
		return cli.register(ctx, rest)
	case "grades":
		return cli.grades(ctx, rest)
	case "grade-add":
		return cli.gradeAdd(ctx, rest)
	case "grade-rm":
		return cli.gradeRemove(ctx, rest)
	case "tests":
		return cli.tests(ctx, rest)
	case "users":
		return cli.users(ctx, rest)
	case "roles":
		return cli.roles(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	username := fs.String("username", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return errHelp
	}

	password, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}
	if password == "" {
		fs.Usage()
		return errHelp
	}

	resp, err := cli.api.Login(ctx, cli.session, *username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Signed in as %s %v\n", resp.Username, resp.Roles)
	return nil
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("register")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return errHelp
	}

	password, err := cli.readPassword("Choose password:")
	if err != nil {
		return err
	}

	resp, err := cli.api.Register(ctx, cli.session, &models.RegisterRequest{
		Username:  *username,
		Password:  password,
		Email:     optional(*email),
		FirstName: optional(*firstName),
		LastName:  optional(*lastName),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Registered and signed in as %s\n", resp.Username)
	return nil
}

func (cli *commandLine) whoami() error {
	id, ok := cli.session.Identity()
	if !ok {
		fmt.Fprintln(cli.out, "Not signed in")
		return nil
	}
	state := "valid"
	if !cli.session.IsAuthenticated() {
		state = "expired"
	}
	fmt.Fprintf(cli.out, "%s %v admin=%t token=%s\n", id.Username, id.Roles, id.IsAdmin(), state)
	return nil
}

func (cli *commandLine) grades(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("grades")
	var page pageFlags
	page.register(fs)
	own := fs.Bool("own", false, "only my grades")
	authored := fs.Bool("authored", false, "with -own: grades I recorded (admins)")
	student := fs.String("student", "", "student username contains")
	test := fs.String("test", "", "test name contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := client.GradeListOptions{
		PageOptions:     page.options(),
		StudentUsername: *student,
		TestName:        *test,
	}

	var (
		result *models.Page[models.GradeView]
		err    error
	)
	if *own {
		result, err = cli.api.ListOwnGradeViews(ctx, cli.session, opts, *authored)
	} else {
		result, err = cli.api.ListGradeViews(ctx, cli.session, opts)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTUDENT\tTEST\tVALUE\tWEIGHT\tCREATED")
	for _, g := range result.Content {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			g.ID, g.StudentUsername, deref(g.TestName), g.Value, g.Weight, g.CreatedOn.Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "page %d/%d, %d grades\n", result.Number+1, max(result.TotalPages, 1), result.TotalElements)
	return nil
}

func (cli *commandLine) gradeAdd(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("grade-add")
	value := fs.Float64("value", -1, "grade value")
	weight := fs.Float64("weight", 0, "weight (default 1)")
	student := fs.String("student", "", "student id (admins)")
	test := fs.String("test", "", "test id")
	comment := fs.String("comment", "", "comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *value < 0 {
		fs.Usage()
		return errHelp
	}

	req := &models.CreateGradeRequest{
		StudentID: optional(*student),
		TestID:    optional(*test),
		Value:     value,
		Comment:   optional(*comment),
	}
	if *weight > 0 {
		req.Weight = weight
	}

	grade, err := cli.api.CreateGrade(ctx, cli.session, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Created grade %s (%.2f x %.2f)\n", grade.ID, grade.Value, grade.Weight)
	return nil
}

func (cli *commandLine) gradeRemove(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("grade-rm")
	id := fs.String("id", "", "grade id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}

	if err := cli.api.DeleteGrade(ctx, cli.session, *id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deleted grade %s\n", *id)
	return nil
}

func (cli *commandLine) tests(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("tests")
	var page pageFlags
	page.register(fs)
	name := fs.String("name", "", "name contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := cli.api.ListTests(ctx, cli.session, client.TestListOptions{PageOptions: page.options(), Name: *name})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDATE")
	for _, t := range result.Content {
		date := ""
		if t.Date != nil {
			date = t.Date.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, date)
	}
	return tw.Flush()
}

func (cli *commandLine) users(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("users")
	var page pageFlags
	page.register(fs)
	query := fs.String("q", "", "username, name or email contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := cli.api.ListUsers(ctx, cli.session, client.UserListOptions{PageOptions: page.options(), Query: *query})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tACTIVE\tROLES")
	for _, u := range result.Content {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", u.Username, u.Active, strings.Join(u.Roles, ","))
	}
	return tw.Flush()
}

func (cli *commandLine) roles(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("roles")
	username := fs.String("username", "", "username")
	set := fs.String("set", "", "comma separated roles replacing the current set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return errHelp
	}

	var (
		user *models.User
		err  error
	)
	if *set == "" {
		user, err = cli.api.GetUser(ctx, cli.session, *username)
	} else {
		user, err = cli.api.UpdateRoles(ctx, cli.session, *username, strings.Split(*set, ","))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s\n", user.Username, strings.Join(user.Roles, ","))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
