// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repl implements the interactive shell: line editing, the
// model round trip (print prompt, copy to clipboard, collect the
// pasted response up to the sentinel line), and human-readable
// reporting. All state changes go through the orchestrator facade.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/mesh-intelligence/atelier/pkg/orchestrator"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Config holds REPL configuration.
type Config struct {
	Orc       *orchestrator.Orchestrator
	Clipboard bool // copy rendered prompts to the system clipboard
}

// CommandHandler handles a specific command. args is the input line
// with the command word removed.
type CommandHandler func(args string) error

// REPL is the interactive shell.
type REPL struct {
	orc      *orchestrator.Orchestrator
	useClip  bool
	rl       *readline.Instance
	commands map[string]CommandHandler
}

// New creates a REPL over an orchestrator.
func New(cfg *Config) (*REPL, error) {
	if cfg.Orc == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	r := &REPL{
		orc:      cfg.Orc,
		useClip:  cfg.Clipboard,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the shell loop and blocks until exit.
func (r *REPL) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("atelier> "),
		HistoryFile:       "",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

func (r *REPL) processInput(line string) error {
	word, args, _ := strings.Cut(line, " ")
	if handler, ok := r.commands[word]; ok {
		return handler(strings.TrimSpace(args))
	}
	fmt.Printf("%s unknown command %q; type 'help' for the list.\n", yellow("Note:"), word)
	return nil
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit

	r.commands["plan"] = r.cmdPlan
	r.commands["specify"] = r.cmdSpecify
	r.commands["code"] = r.cmdCode
	r.commands["refine"] = r.cmdRefine
	r.commands["generate_readme"] = r.cmdReadme
	r.commands["sync"] = r.cmdSync

	r.commands["show_plan"] = r.cmdShowPlan
	r.commands["show_spec"] = r.cmdShowSpec
	r.commands["show_code"] = r.cmdShowCode
}

func (r *REPL) printWelcome() {
	bold := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", bold("atelier"))
	if r.orc.Resumed() {
		fmt.Printf("Resumed project from %s\n", r.orc.StatePath())
	} else {
		fmt.Println("No existing project found; a new one will be created.")
		fmt.Println("Type 'plan <your project idea>' to start.")
	}
	fmt.Println("Type 'help' for available commands, 'exit' to quit.")
	fmt.Println()
}

func (r *REPL) cmdHelp(string) error {
	fmt.Print(`
Available commands:
  plan <description>          Create (or replace) the project plan
  specify <Milestone-ID>      Specify every task in a milestone
  code <Task-ID>              Generate the file set for a task
  refine <Task-ID> <text>     Rework a task's code per an instruction
  generate_readme             Produce a README from plan and specs
  sync <Task-ID|all>          Write project files to disk
  show_plan                   Display the current plan
  show_spec <Milestone-ID>    Display a milestone's specifications
  show_code <Task-ID>         Display a task's files
  exit                        Quit

Each round-trip command prints a prompt for your model. Paste the JSON
reply back, then finish with a line containing only: ` + r.orc.Sentinel() + "\n\n")
	return nil
}

func (r *REPL) cmdExit(string) error {
	fmt.Printf("%s Goodbye!\n", green("✓"))
	return io.EOF
}

func (r *REPL) cmdPlan(args string) error {
	if args == "" {
		return fmt.Errorf("usage: plan <description>")
	}
	return r.roundTrip(orchestrator.CmdPlan, "", args)
}

func (r *REPL) cmdSpecify(args string) error {
	if args == "" {
		return fmt.Errorf("usage: specify <Milestone-ID>")
	}
	return r.roundTrip(orchestrator.CmdSpecify, args, "")
}

func (r *REPL) cmdCode(args string) error {
	if args == "" {
		return fmt.Errorf("usage: code <Task-ID>")
	}
	return r.roundTrip(orchestrator.CmdCode, args, "")
}

func (r *REPL) cmdRefine(args string) error {
	id, instruction, _ := strings.Cut(args, " ")
	instruction = strings.TrimSpace(instruction)
	if id == "" || instruction == "" {
		return fmt.Errorf("usage: refine <Task-ID> <instruction>")
	}
	return r.roundTrip(orchestrator.CmdRefine, id, instruction)
}

func (r *REPL) cmdReadme(string) error {
	return r.roundTrip(orchestrator.CmdReadme, "", "")
}

// roundTrip drives one model exchange: render the prompt, hand it to
// the operator, collect the pasted response, and apply it.
func (r *REPL) roundTrip(cmd orchestrator.Command, targetID, instruction string) error {
	prompt, err := r.orc.BuildPrompt(cmd, targetID, instruction)
	if err != nil {
		return err
	}

	fmt.Println("\n--- PROMPT FOR MANUAL EXECUTION ---")
	fmt.Println(prompt)
	fmt.Println("-----------------------------------")
	if r.useClip {
		if err := clipboard.WriteAll(prompt); err != nil {
			fmt.Printf("%s could not copy to clipboard: %v\n", yellow("Note:"), err)
		} else {
			fmt.Println("Prompt copied to your clipboard.")
		}
	}

	fmt.Printf("Paste the model's JSON reply, then a line with only %q:\n", r.orc.Sentinel())
	raw, ok := collectPayload(r.rl.Readline, r.orc.Sentinel())
	if !ok || strings.TrimSpace(raw) == "" {
		fmt.Printf("%s no response received; command aborted.\n", yellow("Note:"))
		return nil
	}

	res, err := r.orc.Apply(cmd, targetID, raw)
	if res.Message != "" {
		fmt.Printf("%s %s\n", yellow("[model]"), res.Message)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s state updated and saved to %s\n", green("✓"), r.orc.StatePath())
	if len(res.Grown) > 0 {
		fmt.Printf("%s specification added tasks beyond the plan: %s\n",
			yellow("Note:"), strings.Join(res.Grown, ", "))
	}
	if dirty := r.orc.Project().DirtyTasks(); len(dirty) > 0 {
		fmt.Printf("Dirty tasks: %s (run 'sync all' to write them)\n", strings.Join(dirty, ", "))
	}
	return nil
}

// collectPayload reads lines until the sentinel line, EOF, or an
// interrupt. ok is false when the operator aborted.
func collectPayload(next func() (string, error), sentinel string) (string, bool) {
	var lines []string
	for {
		line, err := next()
		if err != nil {
			if err == io.EOF {
				// EOF also terminates a paste, matching the sentinel.
				return strings.Join(lines, "\n"), true
			}
			return "", false
		}
		if strings.TrimSpace(line) == sentinel {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
}

func (r *REPL) cmdSync(args string) error {
	if args == "" {
		return fmt.Errorf("usage: sync <Task-ID|all>")
	}
	if strings.EqualFold(args, orchestrator.ScopeAll) {
		fmt.Println("This will make the output directory an exact mirror of project state,")
		fmt.Println("deleting any files the state no longer declares.")
		if !r.confirm("Proceed? (y/N): ") {
			fmt.Println("Sync canceled.")
			return nil
		}
		args = orchestrator.ScopeAll
	}

	report, err := r.orc.Sync(args)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func printReport(report orchestrator.SyncReport) {
	for _, p := range report.Written {
		fmt.Printf("  %s %s\n", green("wrote"), p)
	}
	for _, p := range report.Deleted {
		fmt.Printf("  %s %s\n", red("deleted"), p)
	}
	for _, f := range report.Failed {
		fmt.Printf("  %s %s: %v\n", red("failed"), f.Path, f.Err)
	}
	fmt.Printf("%d written, %d deleted, %d unchanged, %d failed\n",
		len(report.Written), len(report.Deleted), len(report.Skipped), len(report.Failed))
}

func (r *REPL) confirm(prompt string) bool {
	r.rl.SetPrompt(prompt)
	defer r.rl.SetPrompt(cyan("atelier> "))
	line, err := r.rl.Readline()
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func (r *REPL) cmdShowPlan(string) error {
	out, err := r.orc.PlanOutline()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func (r *REPL) cmdShowSpec(args string) error {
	if args == "" {
		return fmt.Errorf("usage: show_spec <Milestone-ID>")
	}
	out, err := r.orc.SpecText(args)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func (r *REPL) cmdShowCode(args string) error {
	if args == "" {
		return fmt.Errorf("usage: show_code <Task-ID>")
	}
	code, err := r.orc.CodeListing(args)
	if err != nil {
		return err
	}
	for _, f := range code.Files {
		fmt.Printf("%s\n", cyan("--- "+f.Path+" ---"))
		fmt.Println(f.Content)
	}
	if len(code.Dependencies) > 0 {
		fmt.Printf("dependencies: %s\n", strings.Join(code.Dependencies, ", "))
	}
	return nil
}
