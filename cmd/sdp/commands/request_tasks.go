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

func newRequestsTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage request tasks",
		Long:    "List, view, add, update and delete the tasks of a request",
	}

	cmd.AddCommand(newTasksListCommand())
	cmd.AddCommand(newTasksGetCommand())
	cmd.AddCommand(newTasksAddCommand())
	cmd.AddCommand(newTasksUpdateCommand())
	cmd.AddCommand(newTasksDeleteCommand())

	return cmd
}

func newTasksListCommand() *cobra.Command {
	var (
		allPages bool
		rowCount int
	)

	cmd := &cobra.Command{
		Use:   "list REQUEST_ID",
		Short: "List tasks on a request",
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
				tasks   []sdp.Task
				hasMore bool
			)

			if allPages {
				fetch := func(ctx context.Context, li *sdp.ListInfo) (*sdp.TaskList, error) {
					return client.Requests().Tasks().List(ctx, requestID, li)
				}

				tasks, err = sdp.FetchAllRows(ctx, fetch, listInfo, nil)
				if err != nil {
					return fmt.Errorf("failed to list tasks: %w", err)
				}
			} else {
				page, err := client.Requests().Tasks().List(ctx, requestID, listInfo)
				if err != nil {
					return fmt.Errorf("failed to list tasks: %w", err)
				}

				tasks = page.Items
				hasMore = page.ListInfo.HasMoreRows
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(tasks)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(tasks)
			default:
				if len(tasks) == 0 {
					fmt.Println("No tasks found")
					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Title", "Status", "Owner", "Done", "Created")

				for _, task := range tasks {
					_ = table.Append(
						task.ID,
						truncateSubject(task.Title),
						formatNamed(task.Status),
						formatUser(task.Owner),
						fmt.Sprintf("%d%%", task.PercentageCompletion),
						formatSDPTime(task.CreatedTime),
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

func newTasksGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get REQUEST_ID TASK_ID",
		Short: "Get a task",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			task, err := client.Requests().Tasks().Get(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get task: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(task)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(task)
			default:
				printTaskDetails(task)
			}

			return nil
		},
	}
}

func printTaskDetails(task *sdp.Task) {
	fmt.Printf("Task: %s\n", task.ID)
	fmt.Printf("  Title: %s\n", task.Title)
	fmt.Printf("  Status: %s\n", formatNamed(task.Status))
	fmt.Printf("  Priority: %s\n", formatNamed(task.Priority))
	fmt.Printf("  Owner: %s\n", formatUser(task.Owner))
	fmt.Printf("  Group: %s\n", formatNamed(task.Group))
	fmt.Printf("  Completion: %d%%\n", task.PercentageCompletion)
	fmt.Println()

	fmt.Println("Timeline:")
	fmt.Printf("  Created: %s\n", formatSDPTime(task.CreatedTime))
	fmt.Printf("  Scheduled Start: %s\n", formatSDPTime(task.ScheduledStartTime))
	fmt.Printf("  Scheduled End: %s\n", formatSDPTime(task.ScheduledEndTime))
	fmt.Printf("  Actual Start: %s\n", formatSDPTime(task.ActualStartTime))
	fmt.Printf("  Actual End: %s\n", formatSDPTime(task.ActualEndTime))

	if task.Description != "" {
		fmt.Println()
		fmt.Println("Description:")
		fmt.Printf("  %s\n", task.Description)
	}
}

func newTasksAddCommand() *cobra.Command {
	var (
		title       string
		description string
		owner       string
		group       string
		status      string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "add REQUEST_ID",
		Short: "Add a task to a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			input := &sdp.TaskInput{
				Title:       title,
				Description: description,
			}

			if owner != "" {
				input.Owner = &sdp.User{Name: owner}
			}

			if group != "" {
				input.Group = sdp.NamedRef(group)
			}

			if status != "" {
				input.Status = sdp.NamedRef(status)
			}

			if priority != "" {
				input.Priority = sdp.NamedRef(priority)
			}

			ctx := context.Background()

			task, err := client.Requests().Tasks().Create(ctx, args[0], input)
			if err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}

			fmt.Printf("Successfully added task %s to request %s\n", task.ID, args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "task title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&owner, "owner", "", "technician owning the task")
	cmd.Flags().StringVarP(&group, "group", "g", "", "support group name")
	cmd.Flags().StringVar(&status, "status", "", "task status name")
	cmd.Flags().StringVar(&priority, "priority", "", "task priority name")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTasksUpdateCommand() *cobra.Command {
	var (
		title      string
		status     string
		owner      string
		percentage int
	)

	cmd := &cobra.Command{
		Use:   "update REQUEST_ID TASK_ID",
		Short: "Update a task",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			input := &sdp.TaskInput{
				Title:                title,
				PercentageCompletion: percentage,
			}

			if status != "" {
				input.Status = sdp.NamedRef(status)
			}

			if owner != "" {
				input.Owner = &sdp.User{Name: owner}
			}

			ctx := context.Background()

			task, err := client.Requests().Tasks().Update(ctx, args[0], args[1], input)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}

			fmt.Printf("Successfully updated task %s\n", task.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new task title")
	cmd.Flags().StringVar(&status, "status", "", "new task status name")
	cmd.Flags().StringVar(&owner, "owner", "", "technician owning the task")
	cmd.Flags().IntVar(&percentage, "percent", 0, "completion percentage")

	return cmd
}

func newTasksDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete REQUEST_ID TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Printf("Really delete task %s from request %s? (y/N): ", args[1], args[0])

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

			err = client.Requests().Tasks().Delete(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}

			fmt.Printf("Successfully deleted task %s\n", args[1])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
