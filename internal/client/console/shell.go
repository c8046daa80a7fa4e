package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/PlantCare/internal/client/api"
)

const helpText = `Available commands:
  register | login | logout | me | update-me | delete-me
  plants | plant <id> | add-plant | edit-plant <id> | delete-plant <id>
  logs | plant-logs <plant-id> | add-log <plant-id> | edit-log <id> | delete-log <id>
  summary <plant-id> [days] [threshold] | templates | users
  help | exit`

// Shell is the interactive command loop.
type Shell struct {
	// Client calls the API with the user session.
	Client *api.Client
	// Service calls the API with the service credential. Optional.
	Service *api.Client
	Prompt  *Prompter
	Out     io.Writer
}

// Run reads commands until "exit" or end of input.
func (s *Shell) Run(ctx context.Context) {
	for {
		fmt.Fprint(s.Out, "plantcare> ")
		line, ok := s.Prompt.Line()
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if !s.Exec(ctx, args) {
			return
		}
	}
}

// Exec runs one command and reports whether the shell should continue.
func (s *Shell) Exec(ctx context.Context, args []string) bool {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.Out, helpText)
	case "exit", "quit":
		fmt.Fprintln(s.Out, "Bye")
		return false

	case "register":
		res, err := s.Client.Register(ctx, api.RegisterRequest{
			Username:    s.Prompt.Ask("Username"),
			Email:       s.Prompt.Ask("Email (optional)"),
			Password:    s.Prompt.Ask("Password"),
			DisplayName: s.Prompt.Ask("Display name (optional)"),
		})
		s.done(err, "Registered and logged in as %s", username(res))
	case "login":
		res, err := s.Client.Login(ctx, s.Prompt.Ask("Username"), s.Prompt.Ask("Password"))
		s.done(err, "Logged in as %s", username(res))
	case "logout":
		s.done(s.Client.Logout(ctx), "Logged out")
	case "me":
		u, err := s.Client.Me(ctx)
		s.show(u, err)
	case "update-me":
		u, err := s.Client.UpdateMe(ctx, s.Prompt.UserPatch())
		s.show(u, err)
	case "delete-me":
		if !s.Prompt.Confirm("Delete your account with all plants and logs?") {
			fmt.Fprintln(s.Out, "Cancelled")
			break
		}
		s.done(s.Client.DeleteMe(ctx), "Account deleted")

	case "plants":
		plants, err := s.Client.ListPlants(ctx)
		s.show(plants, err)
	case "plant":
		if id, ok := s.id(args, "plant <id>"); ok {
			p, err := s.Client.GetPlant(ctx, id)
			s.show(p, err)
		}
	case "add-plant":
		p, err := s.Client.CreatePlant(ctx, s.Prompt.PlantInput())
		s.show(p, err)
	case "edit-plant":
		if id, ok := s.id(args, "edit-plant <id>"); ok {
			p, err := s.Client.UpdatePlant(ctx, id, s.Prompt.PlantPatch())
			s.show(p, err)
		}
	case "delete-plant":
		if id, ok := s.id(args, "delete-plant <id>"); ok {
			if !s.Prompt.Confirm(fmt.Sprintf("Delete plant %d and all its logs?", id)) {
				fmt.Fprintln(s.Out, "Cancelled")
				break
			}
			s.done(s.Client.DeletePlant(ctx, id), "Plant %d deleted", id)
		}

	case "logs":
		logs, err := s.Client.ListLogs(ctx)
		s.show(logs, err)
	case "plant-logs":
		if id, ok := s.id(args, "plant-logs <plant-id>"); ok {
			logs, err := s.Client.ListPlantLogs(ctx, id)
			s.show(logs, err)
		}
	case "add-log":
		if id, ok := s.id(args, "add-log <plant-id>"); ok {
			in, err := s.Prompt.LogInput(id)
			if err != nil {
				PrintError(s.Out, err)
				break
			}
			l, err := s.Client.CreateLog(ctx, in)
			s.show(l, err)
		}
	case "edit-log":
		if id, ok := s.id(args, "edit-log <id>"); ok {
			patch, err := s.Prompt.LogPatch()
			if err != nil {
				PrintError(s.Out, err)
				break
			}
			l, err := s.Client.UpdateLog(ctx, id, patch)
			s.show(l, err)
		}
	case "delete-log":
		if id, ok := s.id(args, "delete-log <id>"); ok {
			s.done(s.Client.DeleteLog(ctx, id), "Log %d deleted", id)
		}
	case "summary":
		id, ok := s.id(args, "summary <plant-id> [days] [threshold]")
		if !ok {
			break
		}
		days, threshold := optInt(args, 2), optInt(args, 3)
		sum, err := s.Client.PlantSummary(ctx, id, days, threshold)
		s.show(sum, err)

	case "templates":
		t, err := s.Client.CareTemplates(ctx)
		s.show(t, err)
	case "users":
		if s.Service == nil {
			fmt.Fprintln(s.Out, "❌ Error: service credential is not configured")
			break
		}
		users, err := s.Service.ListUsers(ctx)
		s.show(users, err)

	default:
		fmt.Fprintln(s.Out, "Unknown command. Type 'help' for a list of commands.")
	}
	return true
}

func (s *Shell) show(v any, err error) {
	if err != nil {
		PrintError(s.Out, err)
		return
	}
	PrintJSON(s.Out, v)
}

func (s *Shell) done(err error, format string, args ...any) {
	if err != nil {
		PrintError(s.Out, err)
		return
	}
	PrintSuccess(s.Out, format, args...)
}

func (s *Shell) id(args []string, usage string) (int64, bool) {
	if len(args) < 2 {
		fmt.Fprintf(s.Out, "Usage: %s\n", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(s.Out, "❌ Error: %q is not a valid id\n", args[1])
		return 0, false
	}
	return id, true
}

func optInt(args []string, i int) int {
	if len(args) <= i {
		return 0
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0
	}
	return v
}

func username(res *api.AuthResponse) string {
	if res == nil {
		return ""
	}
	return res.User.Username
}
