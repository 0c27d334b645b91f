package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jun/smartdoorlock/internal/rtdb"
	"github.com/spf13/cobra"
)

// getCmd reads a database path
var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Read a database path",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

// setCmd writes a JSON value to a database path
var setCmd = &cobra.Command{
	Use:     "set <path> <json>",
	Short:   "Write a JSON value to a database path",
	Example: `  doorlock set /door/locked true
  doorlock set /door '{"locked":false,"battery":87}'`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

// watchCmd streams changes under a database path
var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Print every change under a database path until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runGet(cmd *cobra.Command, args []string) error {
	svc, err := startServices(cmd.Context(), nil)
	if err != nil {
		return err
	}
	res, err := svc.DB.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	rtdb.PrintResult(cmd.OutOrStdout(), res)
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	if !json.Valid([]byte(args[1])) {
		return fmt.Errorf("value is not valid JSON: %s", args[1])
	}
	svc, err := startServices(cmd.Context(), nil)
	if err != nil {
		return err
	}
	res, err := svc.DB.Set(cmd.Context(), args[0], json.RawMessage(args[1]))
	if err != nil {
		return err
	}
	rtdb.PrintResult(cmd.OutOrStdout(), res)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := startServices(ctx, nil)
	if err != nil {
		return err
	}
	err = svc.DB.Stream(ctx, args[0], func(ev rtdb.StreamEvent) {
		printEvent(cmd.OutOrStdout(), ev)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printEvent(w io.Writer, ev rtdb.StreamEvent) {
	fmt.Fprintf(w, "Event: %s\n", ev.Event)
	rtdb.PrintResult(w, ev.Result)
}
