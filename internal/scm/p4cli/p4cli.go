// Package p4cli implements the scm contract by driving the Perforce command
// line client.
package p4cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/codecollab/reviewd/internal/scm"
)

// Conflict markers in submit output. A submit failing with one of these means
// the change raced a concurrent submission and must be resolved.
var conflictMarkers = []string{
	"out of date files must be resolved or reverted",
	"Merges still pending",
	"must resolve",
}

// Client runs p4 commands against a configured server.
type Client struct {
	// Binary is the p4 executable, "p4" by default.
	Binary string
	// Port is the P4PORT server address.
	Port string
	// User is the P4USER account the service operates as.
	User string

	logger *zap.SugaredLogger
}

// New creates a p4 CLI client.
func New(port, user string, logger *zap.SugaredLogger) *Client {
	return &Client{
		Binary: "p4",
		Port:   port,
		User:   user,
		logger: logger,
	}
}

// Commit submits the pending change.
func (c *Client) Commit(ctx context.Context, spec scm.CommitSpec) error {
	args := []string{"submit", "-c", spec.ChangeID}
	if spec.Description != "" {
		args = append(args, "-d", spec.Description)
	}
	if spec.FixStatus != "" {
		args = append(args, "-s", spec.FixStatus)
	}

	if len(spec.Jobs) > 0 {
		for _, job := range spec.Jobs {
			if err := c.run(ctx, "fix", "-c", spec.ChangeID, job); err != nil {
				return err
			}
		}
	}

	user := c.User
	if spec.CreditAuthor {
		// Submit keeps the change owner as author; nothing to override.
		user = ""
	}
	if err := c.runAs(ctx, user, args...); err != nil {
		var cmdErr *scm.CommandError
		if errors.As(err, &cmdErr) && isConflict(cmdErr.Message) {
			return &scm.ConflictError{ChangeID: spec.ChangeID, Err: cmdErr}
		}
		return err
	}
	return nil
}

// FixesForChange returns job ids already attached to the change.
func (c *Client) FixesForChange(ctx context.Context, changeID string) ([]string, error) {
	out, err := c.output(ctx, "fixes", "-c", changeID)
	if err != nil {
		return nil, err
	}

	// Each line reads "jobNNNNNN fixed by change NNN on ...".
	var jobs []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.HasPrefix(fields[0], "job") {
			jobs = append(jobs, fields[0])
		}
	}
	return jobs, nil
}

// Cleanup reverts pending work left behind after a successful commit.
func (c *Client) Cleanup(ctx context.Context, spec scm.CleanupSpec) error {
	if spec.Reopen {
		return c.run(ctx, "reopen", "-c", "default", "//...")
	}
	return c.run(ctx, "revert", "-c", spec.ChangeID, "//...")
}

func (c *Client) run(ctx context.Context, args ...string) error {
	return c.runAs(ctx, c.User, args...)
}

func (c *Client) runAs(ctx context.Context, user string, args ...string) error {
	_, err := c.outputAs(ctx, user, args...)
	return err
}

func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	return c.outputAs(ctx, c.User, args...)
}

func (c *Client) outputAs(ctx context.Context, user string, args ...string) (string, error) {
	full := []string{"-p", c.Port}
	if user != "" {
		full = append(full, "-u", user)
	}
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, c.Binary, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debugw("running p4 command", "args", args)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		return "", &scm.CommandError{
			Message: fmt.Sprintf("p4 %s: %s", args[0], msg),
			Err:     err,
		}
	}
	return stdout.String(), nil
}

func isConflict(message string) bool {
	for _, marker := range conflictMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
