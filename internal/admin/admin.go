// Package admin is the operator command set: catalog entry and API token
// issuing. Commands arrive as argument lists, either from the command line
// or one per line from an interactive session.
package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/grading"
	"github.com/shrimpsizemoose/appello/internal/models"
)

// TokenIssuer hands out API tokens. The redis-backed app.TokenManager is the
// production implementation.
type TokenIssuer interface {
	FetchOrCreateToken(ctx context.Context, role models.Role, user string) (*models.TokenInfo, bool, error)
}

type Admin struct {
	engine *grading.Engine
	tokens TokenIssuer
	out    io.Writer
}

// New builds the command set. tokens may be nil when no auth redis is
// configured; the token command then reports an error.
func New(engine *grading.Engine, tokens TokenIssuer, out io.Writer) *Admin {
	return &Admin{
		engine: engine,
		tokens: tokens,
		out:    out,
	}
}

type commandHandler func(ctx context.Context, args []string) error

func (a *Admin) route(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"professor": a.handleProfessor,
		"student":   a.handleStudent,
		"course":    a.handleCourse,
		"enroll":    a.handleEnroll,
		"exam":      a.handleExam,
		"token":     a.handleToken,
		"help":      a.handleHelp,
	}
	handler, found := commands[cmd]
	return handler, found
}

// Run executes one command.
func (a *Admin) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.handleHelp(ctx, nil)
	}

	handler, ok := a.route(args[0])
	if !ok {
		return fmt.Errorf("unknown command: %s (try help)", args[0])
	}
	return handler(ctx, args[1:])
}

// Serve reads commands line by line until in is exhausted or ctx is done.
// A failing command is reported and the session goes on.
func (a *Admin) Serve(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := a.Run(ctx, strings.Fields(line)); err != nil {
			logger.Error.Printf("Command error: %v", err)
			a.printf("Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (a *Admin) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
