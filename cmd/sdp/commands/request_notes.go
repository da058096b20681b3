package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newRequestsNotesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "Manage request notes",
		Long:    "List, view, add, update and delete the notes of a request",
	}

	cmd.AddCommand(newNotesListCommand())
	cmd.AddCommand(newNotesGetCommand())
	cmd.AddCommand(newNotesAddCommand())
	cmd.AddCommand(newNotesUpdateCommand())
	cmd.AddCommand(newNotesDeleteCommand())

	return cmd
}

func newNotesListCommand() *cobra.Command {
	var (
		allPages bool
		rowCount int
	)

	cmd := &cobra.Command{
		Use:   "list REQUEST_ID",
		Short: "List notes on a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]

			if err := validateRowCount(rowCount); err != nil {
				return err
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			listInfo := sdp.NewListInfo().WithRowCount(rowCount)

			var (
				notes   []sdp.Note
				hasMore bool
			)

			if allPages {
				fetch := func(ctx context.Context, li *sdp.ListInfo) (*sdp.NoteList, error) {
					return client.Requests().Notes().List(ctx, requestID, li)
				}

				notes, err = sdp.FetchAllRows(ctx, fetch, listInfo, nil)
				if err != nil {
					return fmt.Errorf("failed to list notes: %w", err)
				}
			} else {
				page, err := client.Requests().Notes().List(ctx, requestID, listInfo)
				if err != nil {
					return fmt.Errorf("failed to list notes: %w", err)
				}

				notes = page.Items
				hasMore = page.ListInfo.HasMoreRows
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(notes)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(notes)
			default:
				if len(notes) == 0 {
					fmt.Println("No notes found")
					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Description", "Created By", "Created", "Visible To Requester")

				for _, note := range notes {
					_ = table.Append(
						note.ID,
						truncateSubject(note.Description),
						formatUser(note.CreatedBy),
						formatSDPTime(note.CreatedTime),
						fmt.Sprintf("%v", note.ShowToRequester),
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

	return cmd
}

func newNotesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get REQUEST_ID NOTE_ID",
		Short: "Get a note",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			note, err := client.Requests().Notes().Get(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(note)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(note)
			default:
				fmt.Printf("Note: %s\n", note.ID)
				fmt.Printf("  Created By: %s\n", formatUser(note.CreatedBy))
				fmt.Printf("  Created: %s\n", formatSDPTime(note.CreatedTime))
				fmt.Printf("  Visible To Requester: %v\n", note.ShowToRequester)
				fmt.Printf("  Notify Technician: %v\n", note.NotifyTechnician)
				fmt.Printf("  First Response: %v\n", note.MarkFirstResponse)
				fmt.Println()
				fmt.Println(note.Description)
			}

			return nil
		},
	}
}

func newNotesAddCommand() *cobra.Command {
	var (
		description     string
		showToRequester bool
		notifyTech      bool
		firstResponse   bool
	)

	cmd := &cobra.Command{
		Use:   "add REQUEST_ID",
		Short: "Add a note to a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			note, err := client.Requests().Notes().Create(ctx, args[0], &sdp.NoteInput{
				Description:       description,
				ShowToRequester:   showToRequester,
				NotifyTechnician:  notifyTech,
				MarkFirstResponse: firstResponse,
			})
			if err != nil {
				return fmt.Errorf("failed to add note: %w", err)
			}

			fmt.Printf("Successfully added note %s to request %s\n", note.ID, args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "note text (required)")
	cmd.Flags().BoolVar(&showToRequester, "show-to-requester", false, "make the note visible to the requester")
	cmd.Flags().BoolVar(&notifyTech, "notify-technician", false, "email the assigned technician")
	cmd.Flags().BoolVar(&firstResponse, "first-response", false, "mark the note as the first response")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newNotesUpdateCommand() *cobra.Command {
	var (
		description     string
		showToRequester bool
	)

	cmd := &cobra.Command{
		Use:   "update REQUEST_ID NOTE_ID",
		Short: "Update a note",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			note, err := client.Requests().Notes().Update(ctx, args[0], args[1], &sdp.NoteInput{
				Description:     description,
				ShowToRequester: showToRequester,
			})
			if err != nil {
				return fmt.Errorf("failed to update note: %w", err)
			}

			fmt.Printf("Successfully updated note %s\n", note.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new note text (required)")
	cmd.Flags().BoolVar(&showToRequester, "show-to-requester", false, "make the note visible to the requester")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newNotesDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete REQUEST_ID NOTE_ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Printf("Really delete note %s from request %s? (y/N): ", args[1], args[0])

				var response string
				_, _ = fmt.Scanln(&response)

				if response != "y" && response != "Y" {
					fmt.Println("Cancelled")
					return nil
				}
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			err = client.Requests().Notes().Delete(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete note: %w", err)
			}

			fmt.Printf("Successfully deleted note %s\n", args[1])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
