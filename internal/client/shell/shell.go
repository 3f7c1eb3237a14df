// Package shell is the interactive front end: a line-oriented REPL over the
// session store and the cached todo and task collections.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/taskdock/internal/client/cache"
	"github.com/atinyakov/taskdock/internal/client/gateway"
	"github.com/atinyakov/taskdock/internal/client/session"
	"github.com/atinyakov/taskdock/internal/models"
	"github.com/atinyakov/taskdock/internal/validation"
)

const prompt = "taskdock> "

// Deps are the services the shell drives.
type Deps struct {
	Session *session.Store
	API     *gateway.Client
	Todos   *cache.Collection[models.Todo]
	Tasks   *cache.Collection[models.Task]
	Log     *zap.Logger
	// Notices, when set, are printed before each prompt.
	Notices *Notices
	// Now defaults to time.Now.
	Now func() time.Time
}

// Shell reads commands from in and writes results to out.
type Shell struct {
	Deps
	scanner  *bufio.Scanner
	out      io.Writer
	commands map[string]command
}

type command struct {
	usage string
	help  string
	// auth gates the command on a logged-in session.
	auth bool
	run  func(ctx context.Context, args []string) error
}

var errUsage = errors.New("usage")

// New creates a Shell.
func New(d Deps, in io.Reader, out io.Writer) *Shell {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Shell{Deps: d, scanner: bufio.NewScanner(in), out: out}
	s.commands = map[string]command{
		"help":      {"help", "list commands", false, s.help},
		"register":  {"register <email> <password> <name>", "create an account", false, s.register},
		"login":     {"login <email> <password>", "start a session", false, s.login},
		"logout":    {"logout", "end the session", false, s.logout},
		"whoami":    {"whoami", "show the logged-in user", false, s.whoami},
		"todos":     {"todos [search] [status=all|completed|pending]", "list todos", true, s.listTodos},
		"tasks":     {"tasks [search] [status=...] [type=work|personal|urgent|low-priority]", "list tasks", true, s.listTasks},
		"add-todo":  {"add-todo", "create a todo", true, s.addTodo},
		"add-task":  {"add-task", "create a task", true, s.addTask},
		"edit-todo": {"edit-todo <id>", "edit a todo", true, s.editTodo},
		"edit-task": {"edit-task <id>", "edit a task", true, s.editTask},
		"done":      {"done <todo|task> <id>", "mark completed", true, s.setCompleted(true)},
		"undo":      {"undo <todo|task> <id>", "mark pending", true, s.setCompleted(false)},
		"toggle":    {"toggle <todo|task> <id>", "flip completion", true, s.toggle},
		"delete":    {"delete <todo|task> <id>", "delete an entry", true, s.remove},
		"refresh":   {"refresh", "refetch todos and tasks", true, s.refresh},
		"stats":     {"stats", "summarize todos and tasks", true, s.stats},
		"export":    {"export <todos|tasks> <excel|pdf> [path]", "download an export", true, s.export},
	}
	return s
}

// Load waits for both collections to be fresh.
func (s *Shell) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Todos.Await(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Tasks.Await(ctx)
		return err
	})
	return g.Wait()
}

// Run reads commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		for _, msg := range s.Notices.drain() {
			fmt.Fprintln(s.out, msg)
		}
		fmt.Fprint(s.out, prompt)
		if !s.scanner.Scan() {
			return s.scanner.Err()
		}
		if quit := s.Exec(ctx, s.scanner.Text()); quit {
			return nil
		}
	}
	return ctx.Err()
}

// Exec runs one command line. It reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args := strings.Fields(strings.TrimSpace(line))
	if len(args) == 0 {
		return false
	}
	if args[0] == "exit" || args[0] == "quit" {
		fmt.Fprintln(s.out, "Bye")
		return true
	}

	cmd, ok := s.commands[args[0]]
	if !ok {
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
		return false
	}
	if cmd.auth {
		if _, err := s.Session.RequireSession(ctx); err != nil {
			s.report(err)
			return false
		}
	}
	if err := cmd.run(ctx, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(s.out, "Usage:", cmd.usage)
			return false
		}
		s.Log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		s.report(err)
	}
	return false
}

func (s *Shell) report(err error) {
	var (
		me *cache.MutationError
		ve *validation.Error
		ne *gateway.NetworkError
	)
	switch {
	case errors.As(err, &me):
		fmt.Fprintln(s.out, "Error:", me.Message)
	case errors.As(err, &ve):
		fmt.Fprintln(s.out, "Invalid input:")
		for _, p := range ve.Problems {
			fmt.Fprintln(s.out, "  -", p)
		}
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Fprintln(s.out, "Please log in first.")
	case errors.As(err, &ne):
		fmt.Fprintln(s.out, "Network error:", ne.Err)
	default:
		fmt.Fprintln(s.out, "Error:", err)
	}
}

// ask prints label and reads one line. current, when set, is shown and
// kept on empty input.
func (s *Shell) ask(label, current string) string {
	if current != "" {
		fmt.Fprintf(s.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(s.out, "%s: ", label)
	}
	if !s.scanner.Scan() {
		return current
	}
	v := strings.TrimSpace(s.scanner.Text())
	if v == "" {
		return current
	}
	return v
}

func (s *Shell) help(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(s.out, "Available commands:")
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(s.out, "  %-70s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(s.out, "  %-70s %s\n", "exit", "leave the shell")
	return nil
}

func (s *Shell) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	if s.ask("Confirm password", "") != args[1] {
		return &validation.Error{
			Schema:   validation.AuthRegister,
			Problems: []validation.Problem{{Path: "confirmPassword", Message: "Passwords don't match"}},
		}
	}
	if err := s.Session.Register(ctx, args[0], args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Registered. You can now log in.")
	return nil
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	u, err := s.Session.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Welcome, %s!\n", u.Name)
	// warm the caches in the background
	s.Todos.Read()
	s.Tasks.Read()
	return nil
}

func (s *Shell) logout(ctx context.Context, _ []string) error {
	if err := s.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Logged out")
	return nil
}

func (s *Shell) whoami(ctx context.Context, _ []string) error {
	u, err := s.Session.Current(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(s.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(s.out, "%s <%s>\n", u.Name, u.Email)
	return nil
}

func (s *Shell) refresh(ctx context.Context, _ []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Todos.Refresh(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Tasks.Refresh(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Refreshed")
	return nil
}

func (s *Shell) export(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errUsage
	}
	var kind gateway.Kind
	switch args[0] {
	case "todo", "todos":
		kind = gateway.Todos
	case "task", "tasks":
		kind = gateway.Tasks
	default:
		return errUsage
	}
	f, err := gateway.ParseFormat(args[1])
	if err != nil {
		return err
	}
	path := kind.Name + f.Ext()
	if len(args) == 3 {
		path = args[2]
	}
	n, err := s.API.ExportFile(ctx, kind, f, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Exported %d bytes to %s\n", n, path)
	return nil
}
