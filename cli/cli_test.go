package cli

import (
	"testing"

	"github.com/entigolabs/azure-fluent/common"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func flagNames(cmd *cli.Command) []string {
	return lo.FlatMap(cmd.Flags, func(flag cli.Flag, _ int) []string { return flag.Names()[:1] })
}

func TestCommands(t *testing.T) {
	app := newApp()
	assert.Equal(t, "armctl", app.Name)
	names := lo.Map(app.Commands, func(cmd *cli.Command, _ int) string { return cmd.Name })
	assert.Equal(t, []string{"list", "apply", "deploy", "logs", "sync-triggers", "delete", "version"}, names)
}

func TestCommandFlags(t *testing.T) {
	base := []string{"logging", "subscription-id", "resource-group"}
	tests := map[common.Command][]string{
		common.ListCommand:         append(base, "all"),
		common.ApplyCommand:        append(base, "config", "location"),
		common.DeployCommand:       append(base, "app", "war", "zip"),
		common.LogsCommand:         append(base, "app"),
		common.SyncTriggersCommand: append(base, "app"),
		common.DeleteCommand:       append(base, "kind", "name"),
	}
	app := newApp()
	for command, expected := range tests {
		t.Run(string(command), func(t *testing.T) {
			cmd, found := lo.Find(app.Commands, func(cmd *cli.Command) bool { return cmd.Name == string(command) })
			require.True(t, found)
			assert.Equal(t, expected, flagNames(cmd))
		})
	}
}
