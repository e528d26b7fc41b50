package biometric

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// PromptEnv carries the prompt text to the verify command.
const PromptEnv = "EVENTHUB_BIOMETRIC_PROMPT"

// CommandPlatform asks OS tools such as fprintd. Each command is an argv;
// exit status 0 means yes, any other exit status means no. A command that
// cannot be started is an error. An empty command means no.
type CommandPlatform struct {
	HardwareCommand []string
	EnrolledCommand []string
	VerifyCommand   []string
	Types           []Type
}

var _ Platform = (*CommandPlatform)(nil)

func (p *CommandPlatform) HasHardware(ctx context.Context) (bool, error) {
	return run(ctx, p.HardwareCommand, nil)
}

func (p *CommandPlatform) IsEnrolled(ctx context.Context) (bool, error) {
	return run(ctx, p.EnrolledCommand, nil)
}

func (p *CommandPlatform) SupportedTypes(context.Context) ([]Type, error) {
	return p.Types, nil
}

func (p *CommandPlatform) Authenticate(ctx context.Context, prompt string) (bool, error) {
	return run(ctx, p.VerifyCommand, []string{PromptEnv + "=" + prompt})
}

func run(ctx context.Context, argv []string, env []string) (bool, error) {
	if len(argv) == 0 {
		return false, nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return false, nil
	}

	return false, fmt.Errorf("running %s: %w", argv[0], err)
}
