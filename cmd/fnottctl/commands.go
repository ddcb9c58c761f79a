package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/fnottd/internal/ctrl"
)

func init() {
	rootCmd.AddCommand(listCmd, pauseCmd, unpauseCmd, quitCmd, dismissCmd, dismissAllCmd, actionsCmd, dismissDefaultCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, entries, err := client().Do(ctrl.Request{Cmd: ctrl.CmdList})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no active notifications")
			return nil
		}
		fmt.Printf("%s active notification%s:\n", humanize.Comma(int64(len(entries))), plural(len(entries)))
		for _, e := range entries {
			fmt.Printf("  %6d  %s\n", e.ID, e.Summary)
		}
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop displaying new notifications until unpause",
	RunE:  simpleCommand(ctrl.CmdPause),
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume displaying notifications",
	RunE:  simpleCommand(ctrl.CmdUnpause),
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask fnottd to exit",
	RunE:  simpleCommand(ctrl.CmdQuit),
}

var dismissAllCmd = &cobra.Command{
	Use:   "dismiss-all",
	Short: "Dismiss every active notification",
	RunE:  simpleCommand(ctrl.CmdDismissAll),
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [id]",
	Short: "Dismiss a notification by id (0 dismisses the topmost)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  idCommand(ctrl.CmdDismissByID),
}

var actionsCmd = &cobra.Command{
	Use:   "actions [id]",
	Short: "Request action selection for a notification (0 targets the topmost)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  idCommand(ctrl.CmdActionsByID),
}

var dismissDefaultCmd = &cobra.Command{
	Use:   "dismiss-default [id]",
	Short: "Dismiss a notification, invoking its default action first (0 targets the topmost)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  idCommand(ctrl.CmdDismissWithDefaultActionByID),
}

func simpleCommand(cmd ctrl.Command) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		result, _, err := client().Do(ctrl.Request{Cmd: cmd})
		if err != nil {
			return err
		}
		if result != ctrl.ResultOK {
			fail("fnottd: %s", resultName(result))
		}
		return nil
	}
}

func idCommand(cmd ctrl.Command) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		var id uint32
		if len(args) == 1 {
			n, err := parseID(args[0])
			if err != nil {
				return err
			}
			id = n
		}
		result, _, err := client().Do(ctrl.Request{Cmd: cmd, ID: id})
		if err != nil {
			return err
		}
		if result != ctrl.ResultOK {
			fail("fnottd: %s", resultName(result))
		}
		return nil
	}
}

func parseID(s string) (uint32, error) {
	var n uint32
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, fmt.Errorf("invalid notification id %q: %w", s, err)
	}
	return n, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
