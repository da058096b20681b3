package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewTechniciansCommand creates the technicians command group
func NewTechniciansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "technicians",
		Aliases: []string{"technician", "tech"},
		Short:   "Manage portal technicians",
		Long:    "List and inspect the technicians of a ServiceDesk Plus portal",
	}

	cmd.AddCommand(newTechniciansListCommand())
	cmd.AddCommand(newTechniciansGetCommand())

	return cmd
}

func newTechniciansListCommand() *cobra.Command {
	var (
		allPages bool
		rowCount int
		filters  []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List technicians",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRowCount(rowCount); err != nil {
				return err
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			listInfo := sdp.NewListInfo().WithRowCount(rowCount)

			if len(filters) > 0 {
				criteria, err := parseFilters(filters)
				if err != nil {
					return err
				}

				listInfo = listInfo.WithCriteria(criteria...)
			}

			ctx := context.Background()

			var (
				technicians []sdp.Technician
				hasMore     bool
			)

			if allPages {
				technicians, err = sdp.FetchAllRows(ctx, client.Technicians().List, listInfo, nil)
				if err != nil {
					return fmt.Errorf("failed to list technicians: %w", err)
				}
			} else {
				page, err := client.Technicians().List(ctx, listInfo)
				if err != nil {
					return fmt.Errorf("failed to list technicians: %w", err)
				}

				technicians = page.Items
				hasMore = page.ListInfo.HasMoreRows
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(technicians)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(technicians)
			default:
				if len(technicians) == 0 {
					fmt.Println("No technicians found")
					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Email", "Department", "Phone", "VIP")

				for _, technician := range technicians {
					vip := ""
					if technician.IsVIPUser {
						vip = "yes"
					}

					_ = table.Append(
						technician.ID,
						technician.Name,
						technician.EmailID,
						formatNamed(technician.Department),
						technician.Phone,
						vip,
					)
				}

				_ = table.Render()

				if hasMore {
					fmt.Println("\nMore rows available. Use --all to fetch every page.")
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&rowCount, "row-count", 100, "rows per page (max 100)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as field:condition:value, repeatable (prefix or: for OR)")

	return cmd
}

func newTechniciansGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TECHNICIAN_ID",
		Short: "Get technician details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			technician, err := client.Technicians().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get technician: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(technician)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(technician)
			default:
				fmt.Printf("Technician: %s\n", technician.ID)
				fmt.Printf("  Name: %s\n", technician.Name)
				fmt.Printf("  Email: %s\n", technician.EmailID)
				fmt.Printf("  Department: %s\n", formatNamed(technician.Department))
				fmt.Printf("  Phone: %s\n", technician.Phone)
				fmt.Printf("  Mobile: %s\n", technician.Mobile)
				fmt.Printf("  Employee ID: %s\n", technician.EmployeeID)
				fmt.Printf("  VIP: %v\n", technician.IsVIPUser)
				fmt.Printf("  Login Enabled: %v\n", technician.LoginEnabled)
			}

			return nil
		},
	}
}
