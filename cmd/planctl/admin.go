package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	adminPageArg  int
	adminLimitArg int
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations (requires the admin role)",
}

var adminPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List all plans across commuters",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v1/admin/plans?page=%d&limit=%d", adminPageArg, adminLimitArg)
		raw, err := callAPI("GET", path, nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate plan statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("GET", "/api/v1/admin/plans/stats", nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

func init() {
	adminPlansCmd.Flags().IntVar(&adminPageArg, "page", 1, "Page number")
	adminPlansCmd.Flags().IntVar(&adminLimitArg, "limit", 20, "Page size")

	adminCmd.AddCommand(adminPlansCmd, adminStatsCmd)
	rootCmd.AddCommand(adminCmd)
}
