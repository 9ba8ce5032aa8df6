package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company <ticker>",
	Short: "Show the graph node of a company",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompany,
}

var companyUpsertCmd = &cobra.Command{
	Use:   "upsert <company.json>",
	Short: "Merge a company with its sector and industry into the graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompanyUpsert,
}

func init() {
	companyCmd.AddCommand(companyUpsertCmd)
}

func runCompany(cmd *cobra.Command, args []string) error {
	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	company, err := f.GetCompany(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("no company with ticker %q", args[0])
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), company)
	}
	printCompany(cmd.OutOrStdout(), company)
	return nil
}

func runCompanyUpsert(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return helper.NewError("read company", err)
	}

	company := model.Company{}
	err = json.Unmarshal(data, &company)
	if err != nil {
		return helper.NewError("decode company", err)
	}
	err = company.Validate()
	if err != nil {
		return err
	}

	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	err = f.UpsertCompany(cmd.Context(), company)
	if err != nil {
		return err
	}

	okColor.Fprintf(cmd.OutOrStdout(), "Upserted %s\n", company.Ticker)
	return nil
}
