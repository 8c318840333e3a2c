/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/state"
	"github.com/spf13/cobra"
	"io"
	"path/filepath"
)

var optLedgerPath string

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect or edit the record of files fixed with --incremental",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the inputs recorded by incremental runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		l, err := state.OpenLedger(optLedgerPath, false)
		if err != nil {
			return err
		}
		defer l.Close()
		return listLedger(cmd.OutOrStdout(), l)
	},
}

var ledgerForgetCmd = &cobra.Command{
	Use:   "forget FILE...",
	Short: "Forget inputs so the next incremental run fixes them again",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		l, err := state.OpenLedger(optLedgerPath, false)
		if err != nil {
			return err
		}
		defer l.Close()
		return forgetLedger(cmd.OutOrStdout(), l, args)
	},
}

func listLedger(w io.Writer, l *state.Ledger) error {
	entries, err := l.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s -> %s (%s points, %s)\n", e.Input, e.Output,
			humanize.Comma(int64(e.Points)), humanize.Time(e.ProcessedAt))
	}
	fmt.Fprintf(w, "%d entries\n", len(entries))
	return nil
}

func forgetLedger(w io.Writer, l *state.Ledger, inputs []string) error {
	for _, input := range inputs {
		e, err := l.Lookup(input)
		if err != nil {
			return err
		}
		if e == nil {
			fmt.Fprintf(w, "%s: not recorded\n", input)
			continue
		}
		if err := l.Forget(input); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: forgotten\n", input)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerListCmd, ledgerForgetCmd)

	ledgerCmd.PersistentFlags().StringVar(&optLedgerPath, "ledger",
		filepath.Join(params.DatadirRoot, params.LedgerDBName), "Ledger database")
}
