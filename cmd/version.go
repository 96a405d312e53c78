package cmd

import (
	"github.com/spf13/cobra"

	"github.com/assetbump/assetbump/pkg/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		version := buildinfo.BinaryVersion
		if module := buildinfo.ModuleVersion(); version == "dev" && module != "" {
			version = module
		}
		cmd.Printf("assetbump %s\n", version)
	},
}
