package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	originArg      string
	destinationArg string
	cityArg        string
	sortByArg      string
	orderArg       string
	pageArg        int
	limitArg       int
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and inspect trip plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Request route options for a commute",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("POST", "/api/v1/plans", map[string]string{
			"origin":      originArg,
			"destination": destinationArg,
			"city":        cityArg,
		})
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your trip plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("/api/v1/plans?page=%d&limit=%d", pageArg, limitArg)
		raw, err := callAPI("GET", path, nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

var planGetCmd = &cobra.Command{
	Use:   "get <plan-id>",
	Short: "Show a single trip plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("GET", "/api/v1/plans/"+args[0], nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

var planRoutesCmd = &cobra.Command{
	Use:   "routes <plan-id>",
	Short: "Show a plan's routes ranked by duration, cost or co2",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if sortByArg != "" {
			q.Set("sort_by", sortByArg)
		}
		if orderArg != "" {
			q.Set("order", orderArg)
		}
		path := "/api/v1/plans/" + args[0] + "/routes"
		if enc := q.Encode(); enc != "" {
			path += "?" + enc
		}
		raw, err := callAPI("GET", path, nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

var planArchiveCmd = &cobra.Command{
	Use:   "archive <plan-id>",
	Short: "Archive a trip plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("POST", "/api/v1/plans/"+args[0]+"/archive", nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest locations matching a partial address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("q", args[0])
		if cityArg != "" {
			q.Set("city", cityArg)
		}
		raw, err := callAPI("GET", "/api/v1/locations/suggest?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil
	},
}

func init() {
	planCreateCmd.Flags().StringVarP(&originArg, "origin", "o", "", "Origin address or landmark")
	planCreateCmd.Flags().StringVarP(&destinationArg, "destination", "d", "", "Destination address or landmark")
	planCreateCmd.Flags().StringVarP(&cityArg, "city", "c", "", "City the trip happens in")
	planCreateCmd.MarkFlagRequired("origin")
	planCreateCmd.MarkFlagRequired("destination")
	planCreateCmd.MarkFlagRequired("city")

	planListCmd.Flags().IntVar(&pageArg, "page", 1, "Page number")
	planListCmd.Flags().IntVar(&limitArg, "limit", 20, "Page size")

	planRoutesCmd.Flags().StringVar(&sortByArg, "sort-by", "", "Sort key: duration, cost or co2")
	planRoutesCmd.Flags().StringVar(&orderArg, "order", "", "Sort order: asc or desc")

	suggestCmd.Flags().StringVarP(&cityArg, "city", "c", "", "City to scope suggestions to")

	planCmd.AddCommand(planCreateCmd, planListCmd, planGetCmd, planRoutesCmd, planArchiveCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(suggestCmd)
}
