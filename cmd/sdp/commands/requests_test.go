package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/sdp-client/cmd/sdp/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewRequestsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewRequestsCommand()
	assert.Equal(t, "requests", cmd.Use)
	assert.Equal(t, []string{"request", "req"}, cmd.Aliases)
	assert.Equal(t, "Manage service desk requests", cmd.Short)
	assert.Equal(t, "Create, view, search and act on ServiceDesk Plus requests", cmd.Long)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 13)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "search")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "update")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "close")
	assert.Contains(t, commandNames, "pickup")
	assert.Contains(t, commandNames, "assign")
	assert.Contains(t, commandNames, "onhold")
	assert.Contains(t, commandNames, "resolve")
	assert.Contains(t, commandNames, "notes")
	assert.Contains(t, commandNames, "tasks")
}

func TestRequestsListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "list")
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "List requests", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	// Check flags
	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("row-count"))
	assert.NotNil(t, cmd.Flags().Lookup("start-index"))
	assert.NotNil(t, cmd.Flags().Lookup("filter"))
	assert.NotNil(t, cmd.Flags().Lookup("fields"))
	assert.NotNil(t, cmd.Flags().Lookup("sort"))
	assert.NotNil(t, cmd.Flags().Lookup("order"))

	// Check flag defaults
	allFlag := cmd.Flags().Lookup("all")
	assert.Equal(t, "false", allFlag.DefValue)

	rowCountFlag := cmd.Flags().Lookup("row-count")
	assert.Equal(t, "100", rowCountFlag.DefValue)

	startIndexFlag := cmd.Flags().Lookup("start-index")
	assert.Equal(t, "1", startIndexFlag.DefValue)

	orderFlag := cmd.Flags().Lookup("order")
	assert.Equal(t, "asc", orderFlag.DefValue)
}

func TestRequestsGetCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "get")
	assert.Equal(t, "get REQUEST_ID", cmd.Use)
	assert.Equal(t, "Get request details", cmd.Short)
	assert.Equal(t, "Display detailed information about a specific request", cmd.Long)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestRequestsSearchCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "search")
	assert.Equal(t, "search", cmd.Use)
	assert.Equal(t, "Search requests", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("filter"))
	assert.NotNil(t, cmd.Flags().Lookup("fields"))
}

func TestRequestsCreateCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "create")
	assert.Equal(t, "create", cmd.Use)
	assert.Equal(t, "Create a request", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	// Check all flags exist
	flags := []string{
		"subject", "description", "requester-email", "requester-name",
		"priority", "urgency", "group", "category", "subcategory",
		"site", "template", "technician",
	}

	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}

	subjectFlag := cmd.Flags().Lookup("subject")
	assert.Equal(t, "s", subjectFlag.Shorthand)
}

func TestRequestsUpdateCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "update")
	assert.Equal(t, "update REQUEST_ID", cmd.Use)
	assert.Equal(t, "Update a request", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	flags := []string{
		"subject", "description", "status", "priority", "urgency",
		"group", "category", "subcategory", "technician",
	}

	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}
}

func TestRequestsDeleteCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "delete")
	assert.Equal(t, "delete REQUEST_ID", cmd.Use)
	assert.Equal(t, "Delete a request", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	// Check force flag
	forceFlag := cmd.Flags().Lookup("force")
	assert.NotNil(t, forceFlag)
	assert.Equal(t, "f", forceFlag.Shorthand)
	assert.Equal(t, "false", forceFlag.DefValue)
}

func TestRequestsCloseCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "close")
	assert.Equal(t, "close REQUEST_ID...", cmd.Use)
	assert.Equal(t, "Close one or more requests", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("comment"))
	assert.NotNil(t, cmd.Flags().Lookup("closure-code"))
	assert.NotNil(t, cmd.Flags().Lookup("ack"))
	assert.NotNil(t, cmd.Flags().Lookup("concurrency"))

	ackFlag := cmd.Flags().Lookup("ack")
	assert.Equal(t, "false", ackFlag.DefValue)

	concurrencyFlag := cmd.Flags().Lookup("concurrency")
	assert.Equal(t, "0", concurrencyFlag.DefValue)
}

func TestRequestsPickupCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "pickup")
	assert.Equal(t, "pickup REQUEST_ID", cmd.Use)
	assert.Equal(t, "Pick up a request", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestRequestsAssignCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "assign")
	assert.Equal(t, "assign REQUEST_ID", cmd.Use)
	assert.Equal(t, "Assign a request", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("technician"))
	assert.NotNil(t, cmd.Flags().Lookup("technician-email"))
	assert.NotNil(t, cmd.Flags().Lookup("group"))
}

func TestRequestsOnHoldCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "onhold")
	assert.Equal(t, "onhold REQUEST_ID", cmd.Use)
	assert.Equal(t, "Place a request on hold", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("resume-time"))
	assert.NotNil(t, cmd.Flags().Lookup("comment"))
	assert.NotNil(t, cmd.Flags().Lookup("resume-status"))
}

func TestRequestsResolveCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRequestsCommand()
	cmd := findSubcommand(root, "resolve")
	assert.Equal(t, "resolve REQUEST_ID RESOLUTION...", cmd.Use)
	assert.Equal(t, "Resolve a request", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}
