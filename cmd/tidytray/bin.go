package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidytray/pkg/tidytray/recyclebin"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

var sizeBytes bool

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the recycle bin size",
	Args:  cobra.NoArgs,
	RunE:  runSize,
}

var emptyCmd = &cobra.Command{
	Use:   "empty",
	Short: "Empty the recycle bin",
	Long:  `Permanently delete everything in the recycle bin. There is no confirmation.`,
	Args:  cobra.NoArgs,
	RunE:  runEmpty,
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the recycle bin in the file manager",
	Args:  cobra.NoArgs,
	RunE:  runOpen,
}

var putCmd = &cobra.Command{
	Use:   "put <path>...",
	Short: "Move files to the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPut,
}

func init() {
	sizeCmd.Flags().BoolVarP(&sizeBytes, "bytes", "b", false, "print the size in bytes")
	rootCmd.AddCommand(sizeCmd, emptyCmd, openCmd, putCmd)
}

// binContext bounds one-shot bin commands.
func binContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Minute)
}

func runSize(cmd *cobra.Command, args []string) error {
	bin, err := recyclebin.Default(cfg.Bin.Path)
	if err != nil {
		return err
	}
	ctx, cancel := binContext(cmd.Context())
	defer cancel()

	size, err := bin.Size(ctx)
	if err != nil {
		return err
	}
	if sizeBytes {
		fmt.Fprintln(cmd.OutOrStdout(), size)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), types.FormatSize(size))
	return nil
}

func runEmpty(cmd *cobra.Command, args []string) error {
	bin, err := recyclebin.Default(cfg.Bin.Path)
	if err != nil {
		return err
	}
	ctx, cancel := binContext(cmd.Context())
	defer cancel()

	if err := bin.Empty(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Recycle bin emptied")
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	bin, err := recyclebin.Default(cfg.Bin.Path)
	if err != nil {
		return err
	}
	ctx, cancel := binContext(cmd.Context())
	defer cancel()
	return bin.Open(ctx)
}

func runPut(cmd *cobra.Command, args []string) error {
	bin, err := recyclebin.Default(cfg.Bin.Path)
	if err != nil {
		return err
	}
	putter, ok := bin.(recyclebin.Putter)
	if !ok {
		return recyclebin.ErrUnsupported
	}

	var errs []error
	for _, path := range args {
		if err := putter.Put(path); err != nil {
			printError("%v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
