package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewRequestsCommand creates the requests command group
func NewRequestsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"request", "req"},
		Short:   "Manage service desk requests",
		Long:    "Create, view, search and act on ServiceDesk Plus requests",
	}

	cmd.AddCommand(newRequestsListCommand())
	cmd.AddCommand(newRequestsGetCommand())
	cmd.AddCommand(newRequestsSearchCommand())
	cmd.AddCommand(newRequestsCreateCommand())
	cmd.AddCommand(newRequestsUpdateCommand())
	cmd.AddCommand(newRequestsDeleteCommand())
	cmd.AddCommand(newRequestsCloseCommand())
	cmd.AddCommand(newRequestsPickupCommand())
	cmd.AddCommand(newRequestsAssignCommand())
	cmd.AddCommand(newRequestsOnHoldCommand())
	cmd.AddCommand(newRequestsResolveCommand())
	cmd.AddCommand(newRequestsNotesCommand())
	cmd.AddCommand(newRequestsTasksCommand())

	return cmd
}

func newRequestsListCommand() *cobra.Command {
	var (
		allPages   bool
		rowCount   int
		startIndex int
		filters    []string
		fields     []string
		sortField  string
		sortOrder  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests",
		Long:  "List service desk requests with optional filtering and sorting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRowCount(rowCount); err != nil {
				return err
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			listInfo := sdp.NewListInfo().WithRowCount(rowCount).WithStartIndex(startIndex)

			if len(filters) > 0 {
				criteria, err := parseFilters(filters)
				if err != nil {
					return err
				}

				listInfo = listInfo.WithCriteria(criteria...)
			}

			if len(fields) > 0 {
				listInfo = listInfo.WithFields(fields...)
			}

			if sortField != "" {
				listInfo = listInfo.WithSort(sortField, sortOrder)
			}

			ctx := context.Background()

			var (
				requests []sdp.Request
				hasMore  bool
			)

			if allPages {
				requests, err = sdp.FetchAllRows(ctx, client.Requests().List, listInfo, nil)
				if err != nil {
					return fmt.Errorf("failed to list requests: %w", err)
				}
			} else {
				page, err := client.Requests().List(ctx, listInfo)
				if err != nil {
					return fmt.Errorf("failed to list requests: %w", err)
				}

				requests = page.Items
				hasMore = page.ListInfo.HasMoreRows
			}

			return outputRequestList(requests, hasMore)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&rowCount, "row-count", 100, "rows per page (max 100)")
	cmd.Flags().IntVar(&startIndex, "start-index", 1, "1-based index of the first row")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as field:condition:value, repeatable (prefix or: for OR)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields, comma separated")
	cmd.Flags().StringVar(&sortField, "sort", "", "field to sort by, e.g. created_time")
	cmd.Flags().StringVar(&sortOrder, "order", "asc", "sort order (asc or desc)")

	return cmd
}

func newRequestsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get REQUEST_ID",
		Short: "Get request details",
		Long:  "Display detailed information about a specific request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request, err := client.Requests().Get(ctx, requestID)
			if err != nil {
				return fmt.Errorf("failed to get request: %w", err)
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(request)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(request)
			default:
				printRequestDetails(request)
			}

			return nil
		},
	}
}

func printRequestDetails(request *sdp.Request) {
	fmt.Printf("Request: %s\n", request.ID)
	fmt.Printf("  Subject: %s\n", request.Subject)
	fmt.Printf("  Status: %s\n", formatNamed(request.Status))
	fmt.Printf("  Priority: %s\n", formatNamed(request.Priority))
	fmt.Printf("  Urgency: %s\n", formatNamed(request.Urgency))
	fmt.Println()

	fmt.Println("People:")
	fmt.Printf("  Requester: %s\n", formatUser(request.Requester))
	fmt.Printf("  Technician: %s\n", formatUser(request.Technician))
	fmt.Printf("  Group: %s\n", formatNamed(request.Group))
	fmt.Println()

	fmt.Println("Classification:")
	fmt.Printf("  Template: %s\n", formatNamed(request.Template))
	fmt.Printf("  Category: %s\n", formatNamed(request.Category))
	fmt.Printf("  Subcategory: %s\n", formatNamed(request.Subcategory))
	fmt.Printf("  Site: %s\n", formatNamed(request.Site))
	fmt.Println()

	fmt.Println("Timeline:")
	fmt.Printf("  Created: %s\n", formatSDPTime(request.CreatedTime))
	fmt.Printf("  Due By: %s\n", formatSDPTime(request.DueByTime))
	fmt.Printf("  Resolved: %s\n", formatSDPTime(request.ResolvedTime))
	fmt.Printf("  Completed: %s\n", formatSDPTime(request.CompletedTime))

	if request.OnHoldScheduler != nil && request.OnHoldScheduler.ScheduledTime != nil {
		fmt.Printf("  On Hold Until: %s\n", formatSDPTime(request.OnHoldScheduler.ScheduledTime))
	}

	if request.Resolution != nil && request.Resolution.Content != "" {
		fmt.Println()
		fmt.Println("Resolution:")
		fmt.Printf("  %s\n", request.Resolution.Content)
	}

	if request.Description != "" {
		fmt.Println()
		fmt.Println("Description:")
		fmt.Printf("  %s\n", request.Description)
	}

	fmt.Println()
	fmt.Printf("  Has Notes: %v\n", request.HasNotes)
	fmt.Printf("  Service Request: %v\n", request.IsServiceRequest)
}

func newRequestsSearchCommand() *cobra.Command {
	var (
		filters []string
		fields  []string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search requests",
		Long:  "Search requests by field criteria, optionally projecting a subset of fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(filters) == 0 {
				return ErrFilterRequired
			}

			criteria, err := parseFilters(filters)
			if err != nil {
				return err
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			results, err := client.Requests().Search(ctx, criteria, fields...)
			if err != nil {
				return fmt.Errorf("failed to search requests: %w", err)
			}

			return outputRequestList(results.Items, results.ListInfo.HasMoreRows)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as field:condition:value, repeatable (prefix or: for OR)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields, comma separated")

	return cmd
}

// outputRequestList renders a slice of requests in the configured format.
func outputRequestList(requests []sdp.Request, hasMore bool) error {
	output := viper.GetString("output")
	switch output {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(requests)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(requests)
	default:
		if len(requests) == 0 {
			fmt.Println("No requests found")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Subject", "Status", "Priority", "Requester", "Technician", "Created")

		for _, request := range requests {
			_ = table.Append(
				request.ID,
				truncateSubject(request.Subject),
				formatNamed(request.Status),
				formatNamed(request.Priority),
				formatUser(request.Requester),
				formatUser(request.Technician),
				formatSDPTime(request.CreatedTime),
			)
		}

		_ = table.Render()

		if hasMore {
			fmt.Println("\nMore rows available. Use --all to fetch every page.")
		}
	}

	return nil
}

//nolint:funlen // flag wiring dominates the length
func newRequestsCreateCommand() *cobra.Command {
	var (
		subject        string
		description    string
		requesterEmail string
		requesterName  string
		priority       string
		urgency        string
		group          string
		category       string
		subcategory    string
		site           string
		template       string
		technician     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a request",
		Long:  "Create a new service desk request",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			input := &sdp.RequestCreate{
				Subject:     subject,
				Description: description,
			}

			if requesterEmail != "" || requesterName != "" {
				input.Requester = &sdp.User{Name: requesterName, EmailID: requesterEmail}
			}

			if priority != "" {
				input.Priority = sdp.NamedRef(priority)
			}

			if urgency != "" {
				input.Urgency = sdp.NamedRef(urgency)
			}

			if group != "" {
				input.Group = sdp.NamedRef(group)
			}

			if category != "" {
				input.Category = sdp.NamedRef(category)
			}

			if subcategory != "" {
				input.Subcategory = sdp.NamedRef(subcategory)
			}

			if site != "" {
				input.Site = sdp.NamedRef(site)
			}

			if template != "" {
				input.Template = sdp.NamedRef(template)
			}

			if technician != "" {
				input.Technician = &sdp.User{Name: technician}
			}

			ctx := context.Background()

			created, err := client.Requests().Create(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(created)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(created)
			default:
				fmt.Printf("Successfully created request '%s' with ID %s\n", created.Subject, created.ID)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "request subject (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "request description, HTML allowed")
	cmd.Flags().StringVar(&requesterEmail, "requester-email", "", "requester email address")
	cmd.Flags().StringVar(&requesterName, "requester-name", "", "requester display name")
	cmd.Flags().StringVar(&priority, "priority", "", "priority name, e.g. High")
	cmd.Flags().StringVar(&urgency, "urgency", "", "urgency name")
	cmd.Flags().StringVar(&group, "group", "", "support group name")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory name")
	cmd.Flags().StringVar(&site, "site", "", "site name")
	cmd.Flags().StringVar(&template, "template", "", "request template name")
	cmd.Flags().StringVar(&technician, "technician", "", "technician to assign on creation")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

//nolint:funlen // flag wiring dominates the length
func newRequestsUpdateCommand() *cobra.Command {
	var (
		subject     string
		description string
		status      string
		priority    string
		urgency     string
		group       string
		category    string
		subcategory string
		technician  string
	)

	cmd := &cobra.Command{
		Use:   "update REQUEST_ID",
		Short: "Update a request",
		Long:  "Update fields on an existing request, only changed fields are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]

			update := &sdp.RequestUpdate{}
			changed := false

			if cmd.Flags().Changed("subject") {
				update.Subject = &subject
				changed = true
			}

			if cmd.Flags().Changed("description") {
				update.Description = &description
				changed = true
			}

			if status != "" {
				update.Status = sdp.NamedRef(status)
				changed = true
			}

			if priority != "" {
				update.Priority = sdp.NamedRef(priority)
				changed = true
			}

			if urgency != "" {
				update.Urgency = sdp.NamedRef(urgency)
				changed = true
			}

			if group != "" {
				update.Group = sdp.NamedRef(group)
				changed = true
			}

			if category != "" {
				update.Category = sdp.NamedRef(category)
				changed = true
			}

			if subcategory != "" {
				update.Subcategory = sdp.NamedRef(subcategory)
				changed = true
			}

			if technician != "" {
				update.Technician = &sdp.User{Name: technician}
				changed = true
			}

			if !changed {
				return ErrNothingToUpdate
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			updated, err := client.Requests().Update(ctx, requestID, update)
			if err != nil {
				return fmt.Errorf("failed to update request: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(updated)
			case "yaml":
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(updated)
			default:
				fmt.Printf("Successfully updated request %s\n", updated.ID)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "new subject")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status name")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority name")
	cmd.Flags().StringVar(&urgency, "urgency", "", "new urgency name")
	cmd.Flags().StringVar(&group, "group", "", "new support group name")
	cmd.Flags().StringVar(&category, "category", "", "new category name")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "new subcategory name")
	cmd.Flags().StringVar(&technician, "technician", "", "technician to assign")

	return cmd
}

func newRequestsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete REQUEST_ID",
		Short: "Delete a request",
		Long:  "Move a request to the recycle bin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]

			if !force {
				fmt.Printf("Really delete request %s? (y/N): ", requestID)

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

			err = client.Requests().Delete(ctx, requestID)
			if err != nil {
				return fmt.Errorf("failed to delete request: %w", err)
			}

			fmt.Printf("Successfully deleted request %s\n", requestID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newRequestsCloseCommand() *cobra.Command {
	var (
		comment     string
		closureCode string
		ack         bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "close REQUEST_ID...",
		Short: "Close one or more requests",
		Long:  "Close requests with closure information; multiple IDs close concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			input := &sdp.CloseInput{
				ClosureInfo: sdp.ClosureInfo{
					ClosureComments:        comment,
					RequesterAckResolution: ack,
				},
			}

			if closureCode != "" {
				input.ClosureInfo.ClosureCode = sdp.NamedRef(closureCode)
			}

			ctx := context.Background()

			if len(args) == 1 {
				err := client.Requests().Close(ctx, args[0], input)
				if err != nil {
					return fmt.Errorf("failed to close request: %w", err)
				}

				fmt.Printf("Successfully closed request %s\n", args[0])

				return nil
			}

			return closeRequestBatch(ctx, client, args, input, concurrency)
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "c", "", "closure comments")
	cmd.Flags().StringVar(&closureCode, "closure-code", "", "closure code name, e.g. Success")
	cmd.Flags().BoolVar(&ack, "ack", false, "record requester acknowledgement of the resolution")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel closes when passing multiple IDs (0 uses the default)")

	return cmd
}

// closeRequestBatch closes several requests concurrently and reports the
// outcome of each one.
func closeRequestBatch(ctx context.Context, client sdp.Client, requestIDs []string, input *sdp.CloseInput, concurrency int) error {
	builder := sdp.NewBatchBuilder()
	for _, requestID := range requestIDs {
		builder.AddCloseRequest(requestID, requestID, input)
	}

	executor := sdp.NewBatchExecutor(client, concurrency)

	results, err := executor.Execute(ctx, builder.Build())
	if err != nil {
		return fmt.Errorf("failed to execute batch close: %w", err)
	}

	failed := 0

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Request", "Result", "Duration", "Error")

	for _, result := range results {
		errText := ""
		outcome := "closed"

		if !result.Success {
			failed++
			outcome = "failed"

			if result.Error != nil {
				errText = result.Error.Error()
			}
		}

		_ = table.Append(result.ID, outcome, result.Duration.Round(time.Millisecond).String(), errText)
	}

	_ = table.Render()

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchCloseFailed, failed, len(results))
	}

	fmt.Printf("Successfully closed %d requests\n", len(results))

	return nil
}

func newRequestsPickupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pickup REQUEST_ID",
		Short: "Pick up a request",
		Long:  "Assign a request to the technician owning the OAuth client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request, err := client.Requests().Pickup(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to pick up request: %w", err)
			}

			fmt.Printf("Successfully picked up request %s", request.ID)

			if request.Technician != nil {
				fmt.Printf(" (now assigned to %s)", formatUser(request.Technician))
			}

			fmt.Println()

			return nil
		},
	}
}

func newRequestsAssignCommand() *cobra.Command {
	var (
		technician      string
		technicianEmail string
		group           string
	)

	cmd := &cobra.Command{
		Use:   "assign REQUEST_ID",
		Short: "Assign a request",
		Long:  "Assign a request to a technician, a group, or both",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if technician == "" && technicianEmail == "" && group == "" {
				return ErrAssigneeRequired
			}

			input := &sdp.AssignInput{}

			if technician != "" || technicianEmail != "" {
				input.Technician = &sdp.User{Name: technician, EmailID: technicianEmail}
			}

			if group != "" {
				input.Group = sdp.NamedRef(group)
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			err = client.Requests().Assign(ctx, args[0], input)
			if err != nil {
				return fmt.Errorf("failed to assign request: %w", err)
			}

			fmt.Printf("Successfully assigned request %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&technician, "technician", "", "technician display name")
	cmd.Flags().StringVar(&technicianEmail, "technician-email", "", "technician email address")
	cmd.Flags().StringVarP(&group, "group", "g", "", "support group name")

	return cmd
}

func newRequestsOnHoldCommand() *cobra.Command {
	var (
		resumeTime   string
		comment      string
		resumeStatus string
	)

	cmd := &cobra.Command{
		Use:   "onhold REQUEST_ID",
		Short: "Place a request on hold",
		Long:  "Place a request on hold, optionally scheduling an automatic resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, err := parseResumeTime(resumeTime)
			if err != nil {
				return err
			}

			// The provider only carries scheduler comments alongside a
			// scheduled time, so warn rather than drop silently.
			if comment != "" && resume == nil {
				fmt.Println("Warning: --comment is only sent together with --resume-time and will be ignored")
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request, err := client.Requests().PlaceOnHold(ctx, args[0], sdp.OnHoldOptions{
				ResumeTime:   resume,
				Comment:      comment,
				ResumeStatus: resumeStatus,
			})
			if err != nil {
				return fmt.Errorf("failed to place request on hold: %w", err)
			}

			fmt.Printf("Successfully placed request %s on hold", request.ID)

			if resume != nil {
				fmt.Printf(" until %s", resume.Format(time.RFC3339))
			}

			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&resumeTime, "resume-time", "", "when to automatically resume, RFC3339")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "scheduler comment, requires --resume-time")
	cmd.Flags().StringVar(&resumeStatus, "resume-status", "", "status to resume to (defaults to Open)")

	return cmd
}

func newRequestsResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve REQUEST_ID RESOLUTION...",
		Short: "Resolve a request",
		Long:  "Record resolution content and move a request to the Resolved status",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // ID plus at least one resolution word
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]
			resolution := strings.Join(args[1:], " ")

			if strings.TrimSpace(resolution) == "" {
				return ErrResolutionRequired
			}

			client, err := CreateClientWithPortal(cmd.Flag("portal").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request, err := client.Requests().Resolve(ctx, requestID, resolution)
			if err != nil {
				return fmt.Errorf("failed to resolve request: %w", err)
			}

			fmt.Printf("Successfully resolved request %s\n", request.ID)

			return nil
		},
	}

	return cmd
}
