package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Verify platform credentials and print the automation identity",
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	p, err := initPlatform(cmd.Context())
	if err != nil {
		return err
	}

	user := p.User()
	fmt.Printf("%s authenticated as %s (id %d)\n",
		color.GreenString("✓"), color.New(color.Bold).Sprint(user.Login), user.ID)
	return nil
}
