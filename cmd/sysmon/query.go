package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidytray/pkg/monitor/output"
	"github.com/jamesainslie/tidytray/pkg/monitor/server"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
)

const queryTimeout = 10 * time.Second

var queryFormat string

// newQueries returns the query backend. Tests replace it.
var newQueries = func() server.Queries { return sysinfo.New() }

var (
	disksCmd = &cobra.Command{
		Use:   "disks",
		Short: "List mounted disks with total and free space",
		Args:  cobra.NoArgs,
		RunE: query(func(ctx context.Context, q server.Queries, r *output.Report) error {
			disks, err := q.Disks(ctx)
			if disks == nil {
				disks = []sysinfo.Disk{}
			}
			r.Disks = disks
			return err
		}),
	}

	tempsCmd = &cobra.Command{
		Use:     "temps",
		Aliases: []string{"temperatures"},
		Short:   "List temperature sensors",
		Args:    cobra.NoArgs,
		RunE: query(func(ctx context.Context, q server.Queries, r *output.Report) error {
			temps, err := q.Temperatures(ctx)
			if temps == nil {
				temps = []sysinfo.Temperature{}
			}
			r.Temperatures = temps
			return err
		}),
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show platform and memory totals",
		Args:  cobra.NoArgs,
		RunE: query(func(ctx context.Context, q server.Queries, r *output.Report) error {
			info, err := q.System(ctx)
			if err != nil {
				return err
			}
			r.System = &info
			return nil
		}),
	}
)

func init() {
	for _, c := range []*cobra.Command{disksCmd, tempsCmd, infoCmd} {
		c.Flags().StringVarP(&queryFormat, "format", "f", "pretty",
			"output format ("+strings.Join(output.Available(), "|")+")")
		rootCmd.AddCommand(c)
	}
}

// query wraps fill in a RunE that formats the report it produces.
func query(fill func(context.Context, server.Queries, *output.Report) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		formatter, err := output.Get(queryFormat)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
		defer cancel()

		var report output.Report
		if err := fill(ctx, newQueries(), &report); err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		var buf bytes.Buffer
		if err := formatter.Format(&buf, &report); err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
}
